package event

import "github.com/eapache/queue"

// Executor provides the execution environment for a callback. The
// implementation decides when the callback actually runs.
type Executor interface {
	Post(f func())
}

// InlineExecutor runs the callback in place.
type InlineExecutor struct{}

func (InlineExecutor) Post(f func()) { f() }

// LocalExecutor is a FIFO of handlers owned by one loop's goroutine.
// It is not safe for concurrent use.
type LocalExecutor struct {
	handlers *queue.Queue
}

func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{handlers: queue.New()}
}

func (e *LocalExecutor) Post(f func()) {
	e.handlers.Add(f)
}

func (e *LocalExecutor) Empty() bool {
	return e.handlers.Length() == 0
}

func (e *LocalExecutor) Len() int {
	return e.handlers.Length()
}

func (e *LocalExecutor) Pop() func() {
	return e.handlers.Remove().(func())
}
