package event

import (
	"github.com/fixkme/evkit/errs"
	"github.com/fixkme/evkit/timerwheel"
)

// TimerHandler fires with a nil error on expiry, or with the wheel's
// cancellation error.
type TimerHandler func(err *errs.Error)

// timerEvent adapts a TimerHandler to the wheel's event hooks. The
// callback fires at most once.
type timerEvent struct {
	ev       *timerwheel.Event
	callback TimerHandler
}

func newTimerEvent(cb TimerHandler) *timerEvent {
	te := &timerEvent{callback: cb}
	te.ev = timerwheel.NewEvent(te)
	return te
}

func (t *timerEvent) Execute() {
	if t.callback != nil {
		cb := t.callback
		t.callback = nil
		cb(nil)
	}
}

func (t *timerEvent) OnCancel(e *errs.Error) {
	if t.callback != nil {
		cb := t.callback
		t.callback = nil
		cb(e)
	}
}

func (t *timerEvent) OnAbort() {}

func (t *timerEvent) isFired() bool { return t.callback == nil }

// TimerToken cancels a pending wheel timer. Token cancellation unlinks
// silently; the handler is never called.
type TimerToken struct {
	te *timerEvent
}

func (t *TimerToken) Cancel() {
	if t.te != nil {
		t.te.ev.Cancel()
		t.te = nil
	}
}

func (t *TimerToken) IsEmpty() bool { return t.te == nil }

func (t *TimerToken) IsFired() bool { return t.te != nil && t.te.isFired() }
