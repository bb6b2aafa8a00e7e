package timerwheel

import "github.com/fixkme/evkit/errs"

// Handler receives the lifecycle callbacks of a scheduled event.
type Handler interface {
	// Execute fires when the wheel reaches the event's tick.
	Execute()
	// OnCancel fires when the whole wheel is cancelled with an error.
	OnCancel(err *errs.Error)
	// OnAbort fires when the whole wheel is aborted.
	OnAbort()
}

// HandlerFunc adapts an execute-only callback.
type HandlerFunc func()

func (f HandlerFunc) Execute()             { f() }
func (f HandlerFunc) OnCancel(*errs.Error) {}
func (f HandlerFunc) OnAbort()             {}

// Event is a node lodged in at most one wheel slot at a time.
type Event struct {
	h           Handler
	scheduledAt Tick
	slot        *slot
	prev, next  *Event
}

func NewEvent(h Handler) *Event {
	return &Event{h: h}
}

func (e *Event) IsActive() bool {
	return e.slot != nil
}

func (e *Event) ScheduledAt() Tick {
	return e.scheduledAt
}

// Cancel unlinks the event without firing any callback.
func (e *Event) Cancel() {
	e.relink(nil)
}

func (e *Event) relink(s *slot) {
	if e.slot == s {
		return
	}
	if e.slot != nil {
		if e.prev != nil {
			e.prev.next = e.next
		}
		if e.next != nil {
			e.next.prev = e.prev
		}
		if e.slot.events == e {
			e.slot.events = e.next
		}
		e.prev = nil
		e.next = nil
		e.slot = nil
	}
	if s != nil {
		s.push(e)
	}
}

type slot struct {
	events *Event
}

// push inserts at the head, so intra-slot order is LIFO.
func (s *slot) push(e *Event) {
	e.slot = s
	e.prev = nil
	e.next = s.events
	if s.events != nil {
		s.events.prev = e
	}
	s.events = e
}

func (s *slot) pop() *Event {
	e := s.events
	s.events = e.next
	if s.events != nil {
		s.events.prev = nil
	}
	e.next = nil
	e.slot = nil
	return e
}

func (s *slot) isEmpty() bool {
	return s.events == nil
}

func (s *slot) abort() {
	for !s.isEmpty() {
		s.pop().h.OnAbort()
	}
}

func (s *slot) cancel(err *errs.Error) {
	for !s.isEmpty() {
		s.pop().h.OnCancel(err.Clone())
	}
}
