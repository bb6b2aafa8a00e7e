package event

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fixkme/evkit/mlog"
	"github.com/fixkme/evkit/timerwheel"
	"github.com/fixkme/evkit/util"
	"github.com/rs/xid"
)

const (
	HeartbeatInterval = time.Millisecond
	TaskSchedInterval = 10 * time.Millisecond
	MinTimerDelay     = time.Millisecond

	remoteQueueSize = 10240
)

// 循环全局状态
const (
	LoopStateInit = iota
	LoopStateRunning
	LoopStateShutdown
)

var (
	loopsMu      sync.RWMutex
	runningLoops = make(map[int]*MessageLoop)
)

// Current returns the loop running on this goroutine, nil outside one.
func Current() *MessageLoop {
	gid := util.GoroutineID()
	loopsMu.RLock()
	l := runningLoops[gid]
	loopsMu.RUnlock()
	return l
}

// MessageLoop is a per-goroutine cooperative scheduler: three priority
// task queues, a timer wheel, reactor deadline timers, and a
// thread-safe remote queue. Everything except Dispatch and Shutdown is
// confined to the loop's own goroutine.
type MessageLoop struct {
	id    xid.ID
	state atomic.Int32

	urgent   *LocalExecutor
	critical *LocalExecutor
	normal   *LocalExecutor
	remote   chan func()

	wheel    *timerwheel.Wheel
	deadline *deadlineTimer

	quit chan struct{}
	now  time.Time
}

func NewMessageLoop() *MessageLoop {
	l := &MessageLoop{
		id:       xid.New(),
		urgent:   NewLocalExecutor(),
		critical: NewLocalExecutor(),
		normal:   NewLocalExecutor(),
		remote:   make(chan func(), remoteQueueSize),
		quit:     make(chan struct{}),
		now:      time.Now(),
	}
	l.wheel = timerwheel.New(uint64(l.now.UnixMilli()))
	l.deadline = newDeadlineTimer(l)
	return l
}

func (l *MessageLoop) ID() xid.ID { return l.id }

func (l *MessageLoop) State() int32 { return l.state.Load() }

func (l *MessageLoop) IsRunning() bool { return l.State() == LoopStateRunning }

func (l *MessageLoop) IsInLoopGoroutine() bool { return Current() == l }

func (l *MessageLoop) WallNow() time.Time { return time.Now() }

func (l *MessageLoop) NowUnix() int64 { return time.Now().UnixMilli() }

// Executor is the loop's default (normal severity) local executor.
func (l *MessageLoop) Executor() Executor { return l.normal }

type remoteExecutor struct {
	loop *MessageLoop
}

func (e remoteExecutor) Post(f func()) {
	e.loop.remote <- f
}

// RemoteExecutor may be posted to from any goroutine.
func (l *MessageLoop) RemoteExecutor() Executor { return remoteExecutor{loop: l} }

// Post enqueues onto one of the local queues. Loop goroutine only.
func (l *MessageLoop) Post(f func(), severity Severity) {
	switch severity {
	case SeverityUrgent:
		l.urgent.Post(f)
	case SeverityCritical:
		l.critical.Post(f)
	default:
		l.normal.Post(f)
	}
}

// Dispatch runs the handler inline when the caller is already on the
// target loop, otherwise hands it to the target's remote queue. Safe
// from any goroutine.
func Dispatch(target *MessageLoop, f func()) {
	if target.IsInLoopGoroutine() {
		f()
	} else {
		target.RemoteExecutor().Post(f)
	}
}

// Run drives the loop until Shutdown. The calling goroutine becomes the
// loop's thread; one goroutine can host at most one loop.
func (l *MessageLoop) Run() {
	if !l.state.CompareAndSwap(LoopStateInit, LoopStateRunning) {
		panic("event: message loop can only be run once")
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	gid := util.GoroutineID()
	loopsMu.Lock()
	if _, ok := runningLoops[gid]; ok {
		loopsMu.Unlock()
		panic("event: goroutine already hosts a message loop")
	}
	runningLoops[gid] = l
	loopsMu.Unlock()
	defer func() {
		loopsMu.Lock()
		delete(runningLoops, gid)
		loopsMu.Unlock()
	}()

	mlog.Infof("message loop %s running", l.id)

	heartbeat := time.NewTicker(HeartbeatInterval)
	defer heartbeat.Stop()
	sched := time.NewTicker(TaskSchedInterval)
	defer sched.Stop()

	l.now = time.Now()
	for {
		select {
		case <-l.quit:
			mlog.Infof("message loop %s stopped", l.id)
			return
		case <-heartbeat.C:
			l.onHeartbeat()
		case <-sched.C:
			l.runTasks()
		case f := <-l.remote:
			l.runOneTask(f)
		}
	}
}

// Shutdown is safe from any goroutine. The loop cancels its deadline
// timers, cancels the wheel with an eventloop-shutdown error, stops,
// and drains the task queues one last time.
func (l *MessageLoop) Shutdown() {
	Dispatch(l, func() {
		if !l.state.CompareAndSwap(LoopStateRunning, LoopStateShutdown) {
			return
		}
		l.deadline.cancelAll()
		l.wheel.Cancel(Err(ErrEventLoopShutdown))
		close(l.quit)
		l.runTasks()
	})
}

// onHeartbeat anchors wheel ticks to wall time: advance by the observed
// delta, clamped to at least one tick, even if the loop stalled.
func (l *MessageLoop) onHeartbeat() {
	now := time.Now()
	delta := now.Sub(l.now)
	if delta < HeartbeatInterval {
		delta = HeartbeatInterval
	}
	l.wheel.Advance(uint64(delta.Milliseconds()))
	l.now = now
}

// runTasks drains urgent, then critical, then normal. Everything due is
// collected first; a task posted by a running task waits for the next
// sched tick.
func (l *MessageLoop) runTasks() {
	n := l.urgent.Len() + l.critical.Len() + l.normal.Len()
	if n == 0 {
		return
	}
	tasks := make([]func(), 0, n)
	for _, ex := range []*LocalExecutor{l.urgent, l.critical, l.normal} {
		for !ex.Empty() {
			tasks = append(tasks, ex.Pop())
		}
	}
	for _, f := range tasks {
		l.runOneTask(f)
	}
}

func (l *MessageLoop) runOneTask(f func()) {
	defer func() {
		if r := recover(); r != nil {
			mlog.Errorf("message loop %s task panic: %v", l.id, r)
			panic(r)
		}
	}()
	f()
}

// RunAt arms a one-shot reactor timer for an absolute monotonic-ish
// deadline. Loop goroutine only.
func (l *MessageLoop) RunAt(handler TimerHandler, tm time.Time) {
	l.deadline.addTimerAt(handler, tm)
}

// RunAfter arms a one-shot reactor timer. Loop goroutine only.
func (l *MessageLoop) RunAfter(handler TimerHandler, delay time.Duration) {
	l.deadline.addTimer(handler, delay)
}

// AddTimerEvent lodges the handler in the timer wheel, to fire after
// delay (clamped to at least one tick). Loop goroutine only.
func (l *MessageLoop) AddTimerEvent(handler TimerHandler, delay time.Duration) *TimerToken {
	if delay < MinTimerDelay {
		delay = MinTimerDelay
	}
	te := newTimerEvent(handler)
	l.wheel.Schedule(te.ev, uint64(delay.Milliseconds()))
	return &TimerToken{te: te}
}

// AddTimerEventAt is AddTimerEvent against a wall-clock deadline.
func (l *MessageLoop) AddTimerEventAt(handler TimerHandler, ts time.Time) *TimerToken {
	delay := ts.Sub(l.WallNow())
	if delay <= 0 {
		delay = MinTimerDelay
	}
	return l.AddTimerEvent(handler, delay)
}
