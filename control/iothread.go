// Package control hosts message loops on dedicated OS threads.
package control

import (
	"sync/atomic"

	"github.com/fixkme/evkit/event"
)

// IOThread owns one goroutine-locked thread running a MessageLoop.
type IOThread struct {
	loop    atomic.Pointer[event.MessageLoop]
	running atomic.Bool
	done    chan struct{}
}

func NewIOThread() *IOThread {
	return &IOThread{}
}

// Run spawns the loop thread and returns once the loop is installed.
func (t *IOThread) Run() {
	t.done = make(chan struct{})
	ready := make(chan struct{})
	go func() {
		defer close(t.done)
		loop := event.NewMessageLoop()
		t.loop.Store(loop)
		t.running.Store(true)
		close(ready)
		loop.Run()
		t.running.Store(false)
	}()
	<-ready
}

// Shutdown is safe from any goroutine.
func (t *IOThread) Shutdown() {
	if !t.running.Load() {
		return
	}
	if loop := t.loop.Load(); loop != nil {
		loop.Shutdown()
	}
}

// Join blocks until the loop thread exits.
func (t *IOThread) Join() {
	<-t.done
}

func (t *IOThread) EventLoop() *event.MessageLoop {
	return t.loop.Load()
}

func (t *IOThread) Running() bool {
	return t.running.Load()
}

// IOThreadPool is a fixed set of loop threads.
type IOThreadPool struct {
	pool []*IOThread
}

func NewIOThreadPool(size int) *IOThreadPool {
	p := &IOThreadPool{pool: make([]*IOThread, size)}
	for i := range p.pool {
		p.pool[i] = NewIOThread()
	}
	return p
}

func (p *IOThreadPool) Run() {
	for _, t := range p.pool {
		t.Run()
	}
}

// Iterate dispatches the handler onto every loop in the pool.
func (p *IOThreadPool) Iterate(f func()) {
	for _, t := range p.pool {
		if loop := t.EventLoop(); loop != nil {
			event.Dispatch(loop, f)
		}
	}
}

func (p *IOThreadPool) Shutdown() {
	for _, t := range p.pool {
		t.Shutdown()
	}
}

func (p *IOThreadPool) JoinAll() {
	for _, t := range p.pool {
		t.Join()
	}
}

func (p *IOThreadPool) At(i int) *IOThread {
	if i < 0 || i >= len(p.pool) {
		return nil
	}
	return p.pool[i]
}

func (p *IOThreadPool) Size() int {
	return len(p.pool)
}
