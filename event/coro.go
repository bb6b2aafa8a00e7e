package event

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fixkme/evkit/errs"
	"github.com/fixkme/evkit/result"
)

// coroKilled unwinds a coroutine goroutine whose frame was destroyed.
type coroKilled struct{}

// frame is the destructible handle of a running coroutine. A promise
// holding the frame destroys it on cancel, releasing the goroutine.
type frame struct {
	killed chan struct{}
	once   sync.Once
}

func newFrame() *frame {
	return &frame{killed: make(chan struct{})}
}

func (f *frame) destroy() {
	f.once.Do(func() { close(f.killed) })
}

var liveFrames atomic.Int64

// ActiveCoroutines reports how many coroutine frames are alive.
func ActiveCoroutines() int64 { return liveFrames.Load() }

// Coro is the in-body handle of a coroutine: the loop it resumes on and
// the frame that awaited promises may destroy.
type Coro struct {
	loop  *MessageLoop
	frame *frame
}

func (co *Coro) Loop() *MessageLoop { return co.loop }

// Async starts a coroutine driving a promise. The body runs eagerly on
// its own goroutine; returning a value resolves the promise, returning
// an error rejects it, and a panic rejects with a coroutine-exception
// error. The promise state holds the frame, so cancelling the promise
// releases the goroutine.
//
// The body runs off the loop goroutine: it must touch shared promises
// only through Await or Dispatch.
func Async[T any](loop *MessageLoop, body func(*Coro) (T, *errs.Error)) *Promise[T] {
	p := NewPromise[T]()
	fr := newFrame()
	p.s.frame = fr
	co := &Coro{loop: loop, frame: fr}
	liveFrames.Add(1)
	go func() {
		defer liveFrames.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(coroKilled); ok {
					return
				}
				Dispatch(loop, func() {
					p.Reject(Errf(ErrCoroutineException, "%v", r))
				})
			}
		}()
		v, err := body(co)
		Dispatch(loop, func() {
			if err.Has() {
				p.Reject(err)
			} else {
				p.Resolve(v)
			}
		})
	}()
	return p
}

// AsyncNotifier is Async for coroutines that carry no value.
func AsyncNotifier(loop *MessageLoop, body func(*Coro) *errs.Error) Notifier {
	n := NewNotifier()
	fr := newFrame()
	n.Promise.s.frame = fr
	co := &Coro{loop: loop, frame: fr}
	liveFrames.Add(1)
	go func() {
		defer liveFrames.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(coroKilled); ok {
					return
				}
				Dispatch(loop, func() {
					n.Reject(Errf(ErrCoroutineException, "%v", r))
				})
			}
		}()
		err := body(co)
		Dispatch(loop, func() {
			if err.Has() {
				n.Reject(err)
			} else {
				n.GetResolver().Resolve()
			}
		})
	}()
	return n
}

// Await suspends the coroutine until p settles; the continuation is
// posted through the coroutine's loop executor and the result handed
// back to the resumed frame. While suspended the frame is lodged in
// p's state, so cancelling p destroys the frame.
func Await[T any](co *Coro, p *Promise[T]) result.Result[T] {
	ch := make(chan result.Result[T], 1)
	Dispatch(co.loop, func() {
		prev := p.s.frame
		p.s.frame = co.frame
		p.Then(func(r result.Result[T]) {
			p.s.frame = prev
			ch <- r
		}, co.loop.Executor())
	})
	select {
	case r := <-ch:
		return r
	case <-co.frame.killed:
		panic(coroKilled{})
	}
}

// AwaitNotifier suspends until the notifier fires; nil means resolved.
func AwaitNotifier(co *Coro, n Notifier) *errs.Error {
	ch := make(chan *errs.Error, 1)
	Dispatch(co.loop, func() {
		prev := n.Promise.s.frame
		n.Promise.s.frame = co.frame
		n.Then(func(e *errs.Error) {
			n.Promise.s.frame = prev
			ch <- e
		}, co.loop.Executor())
	})
	select {
	case e := <-ch:
		return e
	case <-co.frame.killed:
		panic(coroKilled{})
	}
}

// Sleep parks the coroutine on a wheel timer for at least d.
func (co *Coro) Sleep(d time.Duration) *errs.Error {
	n := NewNotifier()
	resolver := n.GetResolver()
	Dispatch(co.loop, func() {
		co.loop.AddTimerEvent(func(err *errs.Error) {
			if err.Has() {
				resolver.Reject(err)
			} else {
				resolver.Resolve()
			}
		}, d)
	})
	return AwaitNotifier(co, n)
}
