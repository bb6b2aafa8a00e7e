// Package timerwheel implements a hierarchical timer wheel: a stack of
// ring buffers of event lists running at increasingly coarse resolutions.
// An event too far out for the core wheel lands on an outer level; each
// rotation of a level promotes one slot's worth of events inward. All
// operations are constant time against the number of pending events.
package timerwheel

import (
	"math"

	"github.com/fixkme/evkit/errs"
)

type Tick = uint64

const (
	WidthBits = 8
	NumLevels = (64 + WidthBits - 1) / WidthBits
	MaxLevel  = NumLevels - 1
	NumSlots  = 1 << WidthBits
	Mask      = NumSlots - 1
)

type Wheel struct {
	now          [NumLevels]Tick
	ticksPending Tick
	slots        [NumLevels][NumSlots]slot
	advancing    bool
}

func New(now Tick) *Wheel {
	w := &Wheel{}
	for i := 0; i < NumLevels; i++ {
		w.now[i] = now >> (WidthBits * i)
	}
	return w
}

// Now is the externally observable tick of the core level.
func (w *Wheel) Now() Tick {
	return w.now[0]
}

func (w *Wheel) IsEmpty() bool {
	for i := 0; i < NumLevels; i++ {
		for j := 0; j < NumSlots; j++ {
			if !w.slots[i][j].isEmpty() {
				return false
			}
		}
	}
	return true
}

// Schedule lodges the event delta ticks from now. Delta must be non-zero.
// Scheduling an already active event relocates it.
func (w *Wheel) Schedule(e *Event, delta Tick) {
	if delta == 0 {
		panic("timerwheel: schedule with zero delta")
	}
	e.scheduledAt = w.now[0] + delta

	level := 0
	for delta >= NumSlots {
		// fold in the already-used part of this level's current slot
		delta = (delta + (w.now[level] & Mask)) >> WidthBits
		level++
	}
	idx := (w.now[level] + delta) & Mask
	e.relink(&w.slots[level][idx])
}

// ScheduleInRange lodges the event at the coarsest deadline within
// [start, end] ticks from now, minimizing rescheduling and promotion
// work. Requires 0 < start < end. If the event is already active with a
// remaining delay inside the range, nothing moves.
func (w *Wheel) ScheduleInRange(e *Event, start, end Tick) {
	if start == 0 || end <= start {
		panic("timerwheel: schedule range must satisfy 0 < start < end")
	}
	if e.IsActive() {
		current := e.scheduledAt - w.now[0]
		if current >= start && current <= end {
			return
		}
	}

	mask := ^Tick(0)
	for (start & mask) != (end & mask) {
		mask <<= WidthBits
	}

	delta := end & (mask >> WidthBits)
	w.Schedule(e, delta)
}

// Advance moves the clock by delta ticks, executing everything due at or
// before the new time. Events for tick X all fire before any event for
// tick X+1; intra-slot order is LIFO.
func (w *Wheel) Advance(delta Tick) {
	w.AdvanceN(delta, math.MaxUint64)
}

// AdvanceN is Advance with an execution budget. It returns false when the
// budget ran out; the caller must then call AdvanceN(0, ...) until it
// returns true. A zero delta is illegal otherwise.
//
// AdvanceN must not be called from inside an event callback.
func (w *Wheel) AdvanceN(delta Tick, maxExecute uint64) bool {
	if w.advancing {
		panic("timerwheel: advance from inside an event callback")
	}
	w.advancing = true
	defer func() { w.advancing = false }()
	return w.advance(delta, &maxExecute, 0)
}

func (w *Wheel) advance(delta Tick, maxExecute *uint64, level int) bool {
	if w.ticksPending != 0 {
		if level == 0 {
			w.ticksPending += delta
		}

		now := w.now[level]
		if !w.processCurrentSlot(now, maxExecute, level) {
			return false
		}

		if level == 0 {
			delta = w.ticksPending - 1
			w.ticksPending = 0
		} else {
			return true
		}
	} else if delta == 0 {
		panic("timerwheel: advance by zero ticks")
	}

	for delta > 0 {
		delta--
		w.now[level]++
		now := w.now[level]
		if !w.processCurrentSlot(now, maxExecute, level) {
			w.ticksPending = delta + 1
			return false
		}
	}
	return true
}

func (w *Wheel) processCurrentSlot(now Tick, maxExecute *uint64, level int) bool {
	idx := now & Mask
	s := &w.slots[level][idx]
	if idx == 0 && level < MaxLevel {
		// a full rotation completed, pull down one outer slot first
		if !w.advance(1, maxExecute, level+1) {
			return false
		}
	}

	for !s.isEmpty() {
		e := s.pop()
		if level > 0 && w.now[0] < e.scheduledAt {
			// promoted but not yet due, re-lodge at the residual delta
			w.Schedule(e, e.scheduledAt-w.now[0])
			continue
		}
		e.h.Execute()
		*maxExecute--
		if *maxExecute == 0 {
			return false
		}
	}
	return true
}

// Cancel fires OnCancel on every remaining event and empties the wheel.
func (w *Wheel) Cancel(err *errs.Error) {
	for i := 0; i < NumLevels; i++ {
		for j := 0; j < NumSlots; j++ {
			w.slots[i][j].cancel(err)
		}
	}
}

// Abort fires OnAbort on every remaining event and empties the wheel.
func (w *Wheel) Abort() {
	for i := 0; i < NumLevels; i++ {
		for j := 0; j < NumSlots; j++ {
			w.slots[i][j].abort()
		}
	}
}

// TicksToNextEvent returns the smallest delay, bounded by max, at which
// the wheel is guaranteed to have work; 0 when work is already pending.
func (w *Wheel) TicksToNextEvent(max Tick) Tick {
	return w.ticksToNext(max, 0)
}

func (w *Wheel) ticksToNext(max Tick, level int) Tick {
	if w.ticksPending != 0 {
		return 0
	}

	now := w.now[0]
	min := max
	for i := 0; i < NumSlots; i++ {
		idx := (w.now[level] + Tick(i) + 1) & Mask
		found := false
		for e := w.slots[level][idx].events; e != nil; e = e.next {
			if d := e.scheduledAt - now; d < min {
				min = d
			}
			found = true
		}
		if found {
			return min
		}
	}

	if level < MaxLevel {
		return w.ticksToNext(max, level+1)
	}
	return max
}
