package event

import (
	"time"

	"github.com/fixkme/evkit/errs"
)

// asio reports cancelled waits as operation_aborted; keep the same code
// so reactor-surfaced errors stay in the boost category.
const ecOperationAborted = 125

// deadlineTimer keeps the loop's one-shot reactor timers. All access is
// confined to the loop goroutine; the runtime timer callback hops back
// through the remote queue.
type deadlineTimer struct {
	loop    *MessageLoop
	seq     int64
	entries map[int64]*deadlineEntry
}

type deadlineEntry struct {
	timer   *time.Timer
	handler TimerHandler
}

func newDeadlineTimer(loop *MessageLoop) *deadlineTimer {
	return &deadlineTimer{
		loop:    loop,
		entries: make(map[int64]*deadlineEntry),
	}
}

func (d *deadlineTimer) addTimer(handler TimerHandler, delay time.Duration) {
	d.seq++
	id := d.seq
	e := &deadlineEntry{handler: handler}
	d.entries[id] = e
	e.timer = time.AfterFunc(delay, func() {
		Dispatch(d.loop, func() {
			if _, ok := d.entries[id]; ok {
				delete(d.entries, id)
				handler(nil)
			}
		})
	})
}

func (d *deadlineTimer) addTimerAt(handler TimerHandler, tm time.Time) {
	d.addTimer(handler, time.Until(tm))
}

// cancelAll stops every armed timer and reports the abort through each
// handler on the normal queue.
func (d *deadlineTimer) cancelAll() {
	for id, e := range d.entries {
		e.timer.Stop()
		delete(d.entries, id)
		h := e.handler
		d.loop.Post(func() {
			h(errs.MkBoostError(ecOperationAborted, "operation aborted"))
		}, SeverityNormal)
	}
}
