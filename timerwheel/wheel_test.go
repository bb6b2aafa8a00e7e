package timerwheel

import (
	"testing"

	"github.com/fixkme/evkit/errs"
)

func recordEvent(fired *[]Tick, id Tick) *Event {
	return NewEvent(HandlerFunc(func() {
		*fired = append(*fired, id)
	}))
}

func TestAdvanceOrdering(t *testing.T) {
	w := New(0)
	var fired []Tick
	w.Schedule(recordEvent(&fired, 300), 300)
	w.Schedule(recordEvent(&fired, 500), 500)
	w.Schedule(recordEvent(&fired, 501), 500)
	w.Advance(1000)

	if len(fired) != 3 {
		t.Fatalf("fired %d events, want 3", len(fired))
	}
	if fired[0] != 300 {
		t.Fatalf("first fired %d, want 300", fired[0])
	}
	// the two 500s come after, in either order
	if fired[1] == 300 || fired[2] == 300 {
		t.Fatalf("300 fired more than once: %v", fired)
	}
}

func TestAdvanceOrderingNonDecreasing(t *testing.T) {
	w := New(0)
	deltas := []Tick{7, 3, 255, 256, 257, 1000, 65536, 70000, 2, 2}
	var firedAt []Tick
	var sum Tick
	for _, d := range deltas {
		d := d
		w.Schedule(NewEvent(HandlerFunc(func() {
			firedAt = append(firedAt, d)
		})), d)
		sum += d
	}
	w.Advance(sum)

	if len(firedAt) != len(deltas) {
		t.Fatalf("fired %d events, want %d", len(firedAt), len(deltas))
	}
	for i := 1; i < len(firedAt); i++ {
		if firedAt[i] < firedAt[i-1] {
			t.Fatalf("out of order at %d: %v", i, firedAt)
		}
	}
}

func TestDeepLevelPromotion(t *testing.T) {
	w := New(0)
	fired := false
	w.Schedule(NewEvent(HandlerFunc(func() { fired = true })), 300000)

	w.Advance(299999)
	if fired {
		t.Fatalf("event fired one tick early")
	}
	w.Advance(1)
	if !fired {
		t.Fatalf("event did not fire at its tick")
	}
	if !w.IsEmpty() {
		t.Fatalf("wheel not empty after firing")
	}
}

func TestLiveness(t *testing.T) {
	w := New(12345)
	count := 0
	deltas := []Tick{1, 2, 255, 256, 65535, 65536, 1 << 20}
	for _, d := range deltas {
		w.Schedule(NewEvent(HandlerFunc(func() { count++ })), d)
	}
	w.Advance(1 << 20)
	if count != len(deltas) {
		t.Fatalf("fired %d events, want %d", count, len(deltas))
	}
	if !w.IsEmpty() {
		t.Fatalf("events remain past their ticks")
	}
}

func TestEventCancel(t *testing.T) {
	w := New(0)
	fired := false
	e := NewEvent(HandlerFunc(func() { fired = true }))
	w.Schedule(e, 100)
	if !e.IsActive() {
		t.Fatalf("scheduled event not active")
	}
	e.Cancel()
	if e.IsActive() {
		t.Fatalf("cancelled event still active")
	}
	w.Advance(1000)
	if fired {
		t.Fatalf("cancelled event fired")
	}
}

type countingHandler struct {
	executed  int
	cancelled int
	aborted   int
	lastErr   *errs.Error
}

func (h *countingHandler) Execute()               { h.executed++ }
func (h *countingHandler) OnCancel(e *errs.Error) { h.cancelled++; h.lastErr = e }
func (h *countingHandler) OnAbort()               { h.aborted++ }

func TestWheelCancel(t *testing.T) {
	w := New(0)
	h1 := &countingHandler{}
	h2 := &countingHandler{}
	w.Schedule(NewEvent(h1), 10)
	w.Schedule(NewEvent(h2), 1<<30)

	werr := errs.MkGeneralError(7, "teardown", "test")
	w.Cancel(werr)

	if h1.cancelled != 1 || h2.cancelled != 1 {
		t.Fatalf("cancel counts %d/%d, want 1/1", h1.cancelled, h2.cancelled)
	}
	if h1.lastErr == nil || h1.lastErr.Code() != 7 {
		t.Fatalf("cancel error not delivered")
	}
	if h1.lastErr == werr {
		t.Fatalf("cancel must deliver a copy of the error")
	}
	if !w.IsEmpty() {
		t.Fatalf("wheel not empty after cancel")
	}
	w.Advance(1 << 31)
	if h1.executed != 0 || h2.executed != 0 {
		t.Fatalf("cancelled events executed")
	}
}

func TestWheelAbort(t *testing.T) {
	w := New(0)
	h := &countingHandler{}
	w.Schedule(NewEvent(h), 5000)
	w.Abort()
	if h.aborted != 1 || h.cancelled != 0 {
		t.Fatalf("abort counts %d/%d", h.aborted, h.cancelled)
	}
	if !w.IsEmpty() {
		t.Fatalf("wheel not empty after abort")
	}
}

func TestMaxExecuteThrottle(t *testing.T) {
	w := New(0)
	count := 0
	for i := 0; i < 10; i++ {
		w.Schedule(NewEvent(HandlerFunc(func() { count++ })), 3)
	}

	done := w.AdvanceN(5, 4)
	if done {
		t.Fatalf("advance finished despite the budget")
	}
	if count != 4 {
		t.Fatalf("executed %d, want 4", count)
	}
	for !w.AdvanceN(0, 4) {
	}
	if count != 10 {
		t.Fatalf("executed %d after resume, want 10", count)
	}
	if w.Now() != 5 {
		t.Fatalf("clock at %d, want 5", w.Now())
	}
}

func TestScheduleInRange(t *testing.T) {
	w := New(0)
	e := NewEvent(HandlerFunc(func() {}))
	w.ScheduleInRange(e, 100, 200)
	at := e.ScheduledAt()
	if at < 100 || at > 200 {
		t.Fatalf("scheduled at %d, want within [100, 200]", at)
	}

	// already inside the range: no move
	w.ScheduleInRange(e, 50, 300)
	if e.ScheduledAt() != at {
		t.Fatalf("event moved although inside range")
	}

	// outside the range: relocate
	w.ScheduleInRange(e, 1000, 2000)
	at = e.ScheduledAt()
	if at < 1000 || at > 2000 {
		t.Fatalf("relocated to %d, want within [1000, 2000]", at)
	}
}

func TestTicksToNextEvent(t *testing.T) {
	w := New(0)
	if got := w.TicksToNextEvent(5000); got != 5000 {
		t.Fatalf("empty wheel: got %d, want max", got)
	}

	w.Schedule(NewEvent(HandlerFunc(func() {})), 42)
	if got := w.TicksToNextEvent(5000); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}

	w2 := New(0)
	w2.Schedule(NewEvent(HandlerFunc(func() {})), 70000)
	if got := w2.TicksToNextEvent(1 << 30); got > 70000 {
		t.Fatalf("outer level event: got %d, want <= 70000", got)
	}
}

func TestRescheduleFromCallback(t *testing.T) {
	w := New(0)
	count := 0
	var e *Event
	e = NewEvent(HandlerFunc(func() {
		count++
		if count < 3 {
			w.Schedule(e, 10)
		}
	}))
	w.Schedule(e, 10)
	w.Advance(100)
	if count != 3 {
		t.Fatalf("periodic event fired %d times, want 3", count)
	}
}

func TestScheduleZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("schedule with zero delta did not panic")
		}
	}()
	w := New(0)
	w.Schedule(NewEvent(HandlerFunc(func() {})), 0)
}
