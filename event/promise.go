package event

import (
	"github.com/fixkme/evkit/errs"
	"github.com/fixkme/evkit/result"
)

type PromiseStatus uint8

const (
	// initial state
	StatusInit PromiseStatus = iota
	// the outcome is known, the callback has not yet run through the executor
	StatusPreFulfilled
	// the callback has run in its executor
	StatusFulfilled
	// pre-rejected, pending like pre-fulfilled
	StatusPreRejected
	// rejected, the callback has run
	StatusRejected
	// cancelled, callback and storage purged
	StatusCancelled
)

// chainNode is what one promise state knows about its neighbors without
// knowing their value types. The strong back link anchors the chain from
// the tail; the forward link exists for cancellation walks and nested
// promise propagation.
type chainNode interface {
	nextNode() chainNode
	setNextNode(n chainNode)
	cancelNode()
}

type state[T any] struct {
	status   PromiseStatus
	storage  result.Result[T]
	callback func(result.Result[T])
	executor Executor

	prev chainNode
	next chainNode

	// dropped on cancel; posted trampolines bound through it go silent
	guard Guard

	// suspended coroutine frame, destroyed on cancel
	frame *frame
}

func newState[T any]() *state[T] {
	return &state[T]{}
}

func (s *state[T]) nextNode() chainNode     { return s.next }
func (s *state[T]) setNextNode(n chainNode) { s.next = n }

// watch makes s the downstream of other: s anchors other through the
// strong back link, other reaches s through the forward link.
func (s *state[T]) watch(other chainNode) {
	s.prev = other
	other.setNextNode(s)
}

func (s *state[T]) isPending() bool {
	return s.status == StatusPreFulfilled || s.status == StatusPreRejected
}

func (s *state[T]) isDone() bool {
	return s.status == StatusFulfilled || s.status == StatusRejected
}

func (s *state[T]) isSettled() bool {
	return s.status != StatusInit && s.status != StatusCancelled
}

func (s *state[T]) isSatisfied() bool {
	return s.status == StatusPreFulfilled || s.status == StatusFulfilled
}

func (s *state[T]) isUnsatisfied() bool {
	return s.status == StatusPreRejected || s.status == StatusRejected
}

func (s *state[T]) resolve(v T) bool {
	if s.status != StatusInit {
		return false
	}
	s.storage = result.Ok(v)
	s.status = StatusPreFulfilled
	s.tryInvokeCallback()
	return true
}

func (s *state[T]) reject(e *errs.Error) bool {
	if s.status != StatusInit {
		return false
	}
	s.storage = result.Err[T](e)
	s.status = StatusPreRejected
	s.tryInvokeCallback()
	return true
}

func (s *state[T]) set(r result.Result[T]) bool {
	if r.IsError() {
		return s.reject(r.PassError())
	}
	return s.resolve(r.PassResult())
}

// cancelNode purges one state. Terminal states are left alone.
func (s *state[T]) cancelNode() {
	switch s.status {
	case StatusInit, StatusPreFulfilled, StatusPreRejected:
		s.callback = nil
		s.storage.Clear()
		s.guard.Drop()
		if s.frame != nil {
			s.frame.destroy()
			s.frame = nil
		}
		s.status = StatusCancelled
	}
}

// cancelChain walks forward from n, cancelling every settleable state.
func cancelChain(n chainNode) {
	for c := n; c != nil; c = c.nextNode() {
		c.cancelNode()
	}
}

// addCallback installs the continuation; on a pre-settled state the
// trampoline is posted immediately.
func (s *state[T]) addCallback(cb func(result.Result[T]), executor Executor) {
	s.callback = cb
	s.executor = executor
	s.tryInvokeCallback()
}

func (s *state[T]) tryInvokeCallback() {
	if s.callback == nil || !s.isPending() {
		return
	}
	s.runInExecutor(BindWeak(&s.guard, s.trampoline))
}

// trampoline runs inside the executor: the status turns terminal first,
// so a callback inspecting its own promise always sees a settled state.
func (s *state[T]) trampoline() {
	switch s.status {
	case StatusPreFulfilled:
		s.status = StatusFulfilled
	case StatusPreRejected:
		s.status = StatusRejected
	default:
		return
	}
	cb := s.callback
	s.callback = nil
	cb(s.storage)
}

func (s *state[T]) runInExecutor(f func()) {
	if s.executor != nil {
		s.executor.Post(f)
	} else {
		f()
	}
}

// Promise is the owning handle of one promise state. A promise and its
// whole chain belong to a single loop's goroutine.
type Promise[T any] struct {
	s *state[T]
}

func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{s: newState[T]()}
}

func (p *Promise[T]) Resolve(v T) bool {
	return p.s.resolve(v)
}

func (p *Promise[T]) Reject(e *errs.Error) bool {
	return p.s.reject(e)
}

// Set settles from a Result: ok resolves, error rejects.
func (p *Promise[T]) Set(r result.Result[T]) bool {
	return p.s.set(r)
}

// Cancel walks the chain forward, cancelling every not-yet-terminal
// state. Idempotent.
func (p *Promise[T]) Cancel() {
	cancelChain(p.s)
}

func (p *Promise[T]) GetResolver() *Resolver[T] {
	return &Resolver[T]{s: p.s}
}

func (p *Promise[T]) Status() PromiseStatus { return p.s.status }
func (p *Promise[T]) IsEmpty() bool         { return p.s.status == StatusInit }
func (p *Promise[T]) IsPending() bool       { return p.s.isPending() }
func (p *Promise[T]) IsDone() bool          { return p.s.isDone() }
func (p *Promise[T]) IsSettled() bool       { return p.s.isSettled() }
func (p *Promise[T]) IsSatisfied() bool     { return p.s.isSatisfied() }
func (p *Promise[T]) IsUnsatisfied() bool   { return p.s.isUnsatisfied() }
func (p *Promise[T]) IsPreFulfilled() bool  { return p.s.status == StatusPreFulfilled }
func (p *Promise[T]) IsFulfilled() bool     { return p.s.status == StatusFulfilled }
func (p *Promise[T]) IsPreRejected() bool   { return p.s.status == StatusPreRejected }
func (p *Promise[T]) IsRejected() bool      { return p.s.status == StatusRejected }
func (p *Promise[T]) IsCancelled() bool     { return p.s.status == StatusCancelled }

func (p *Promise[T]) HasHandler() bool {
	return p.s.callback != nil
}

func (p *Promise[T]) GetExecutor() Executor {
	return p.s.executor
}

// Resolver settles a promise on behalf of a producer. Its inspectors
// report (value, ok); ok is false once the promise has been cancelled.
type Resolver[T any] struct {
	s *state[T]
}

func (r *Resolver[T]) Resolve(v T) bool {
	if r.s == nil {
		return false
	}
	return r.s.resolve(v)
}

func (r *Resolver[T]) Reject(e *errs.Error) bool {
	if r.s == nil {
		return false
	}
	return r.s.reject(e)
}

func (r *Resolver[T]) Set(res result.Result[T]) bool {
	if r.s == nil {
		return false
	}
	return r.s.set(res)
}

func (r *Resolver[T]) Cancel() {
	if r.s != nil {
		cancelChain(r.s)
	}
}

// Reset detaches the resolver from its promise.
func (r *Resolver[T]) Reset() {
	r.s = nil
}

func (r *Resolver[T]) IsExpired() bool {
	return r.s == nil || r.s.status == StatusCancelled
}

func (r *Resolver[T]) IsDone() (bool, bool) {
	if r.IsExpired() {
		return false, false
	}
	return r.s.isDone(), true
}

func (r *Resolver[T]) IsEmpty() (bool, bool) {
	if r.IsExpired() {
		return false, false
	}
	return r.s.status == StatusInit, true
}

func (r *Resolver[T]) IsSettled() (bool, bool) {
	if r.IsExpired() {
		return false, false
	}
	return r.s.isSettled(), true
}

func (r *Resolver[T]) IsSatisfied() (bool, bool) {
	if r.IsExpired() {
		return false, false
	}
	return r.s.isSatisfied(), true
}

func (r *Resolver[T]) IsUnsatisfied() (bool, bool) {
	if r.IsExpired() {
		return false, false
	}
	return r.s.isUnsatisfied(), true
}
