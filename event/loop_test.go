package event

import (
	"testing"
	"time"

	"github.com/fixkme/evkit/errs"
	"github.com/fixkme/evkit/result"
)

func startLoop(t *testing.T) *MessageLoop {
	t.Helper()
	loop := NewMessageLoop()
	go loop.Run()
	t.Cleanup(func() {
		loop.Shutdown()
	})
	return loop
}

func TestLoopTimerFires(t *testing.T) {
	loop := startLoop(t)
	ch := make(chan *errs.Error, 1)
	start := time.Now()
	Dispatch(loop, func() {
		loop.AddTimerEvent(func(err *errs.Error) {
			ch <- err
		}, 50*time.Millisecond)
	})

	select {
	case err := <-ch:
		if err.Has() {
			t.Fatalf("timer delivered error: %s", err.Details())
		}
		if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
			t.Fatalf("timer fired after %v, want >= ~50ms", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timer never fired")
	}
}

func TestLoopTimerTokenCancel(t *testing.T) {
	loop := startLoop(t)
	fired := make(chan struct{}, 1)
	Dispatch(loop, func() {
		token := loop.AddTimerEvent(func(err *errs.Error) {
			fired <- struct{}{}
		}, 50*time.Millisecond)
		token.Cancel()
	})

	select {
	case <-fired:
		t.Fatalf("cancelled timer fired")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestLoopShutdownCancelsWheel(t *testing.T) {
	loop := NewMessageLoop()
	go loop.Run()

	ch := make(chan *errs.Error, 1)
	Dispatch(loop, func() {
		loop.AddTimerEvent(func(err *errs.Error) {
			ch <- err
		}, 10*time.Second)
	})
	// let the timer get lodged before shutting down
	time.Sleep(50 * time.Millisecond)
	loop.Shutdown()

	select {
	case err := <-ch:
		if !err.Has() || err.Code() != ErrEventLoopShutdown {
			t.Fatalf("got %v, want eventloop shutdown error", err)
		}
		if err.Category() != Cat() {
			t.Fatalf("wrong category %v", err.Category())
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pending timer not cancelled on shutdown")
	}
}

func TestRunAfter(t *testing.T) {
	loop := startLoop(t)
	ch := make(chan *errs.Error, 1)
	Dispatch(loop, func() {
		loop.RunAfter(func(err *errs.Error) {
			ch <- err
		}, 30*time.Millisecond)
	})

	select {
	case err := <-ch:
		if err.Has() {
			t.Fatalf("deadline timer delivered error: %s", err.Details())
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("deadline timer never fired")
	}
}

func TestDispatchInline(t *testing.T) {
	loop := startLoop(t)
	ch := make(chan bool, 1)
	Dispatch(loop, func() {
		if Current() != loop {
			ch <- false
			return
		}
		inline := false
		Dispatch(loop, func() { inline = true })
		ch <- inline
	})

	select {
	case ok := <-ch:
		if !ok {
			t.Fatalf("dispatch onto the current loop did not run inline")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatched handler never ran")
	}
}

func TestPostPriorityOrder(t *testing.T) {
	loop := startLoop(t)
	ch := make(chan []string, 1)
	Dispatch(loop, func() {
		var order []string
		loop.Post(func() { order = append(order, "normal") }, SeverityNormal)
		loop.Post(func() {
			order = append(order, "urgent")
		}, SeverityUrgent)
		loop.Post(func() {
			order = append(order, "critical")
			ch <- order
		}, SeverityCritical)
	})

	select {
	case order := <-ch:
		if len(order) != 2 || order[0] != "urgent" || order[1] != "critical" {
			t.Fatalf("drain order %v, want urgent before critical before normal", order)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("posted tasks never ran")
	}
}

// a continuation returning a timer-driven promise holds up the chain
// until the timer fires
func TestTimerDrivenInnerPromise(t *testing.T) {
	loop := startLoop(t)
	ch := make(chan time.Duration, 1)
	Dispatch(loop, func() {
		start := time.Now()
		p0 := MkResolvedPromise(1)
		p1 := ThenPromise(p0, func(r result.Result[int]) *Promise[string] {
			inner := NewPromise[string]()
			resolver := inner.GetResolver()
			loop.AddTimerEvent(func(err *errs.Error) {
				if err.Has() {
					resolver.Reject(err)
					return
				}
				resolver.Resolve("done")
			}, 100*time.Millisecond)
			return inner
		}, loop.Executor())
		p1.Then(func(r result.Result[string]) {
			ch <- time.Since(start)
		}, loop.Executor())
	})

	select {
	case elapsed := <-ch:
		if elapsed < 90*time.Millisecond {
			t.Fatalf("outer chain settled after %v, before the inner timer", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("outer chain never settled")
	}
}
