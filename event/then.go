package event

import (
	"github.com/fixkme/evkit/result"
)

// Then (the terminal form) installs a continuation that consumes the
// outcome. Nothing can be chained after it.
func (p *Promise[T]) Then(f func(result.Result[T]), executor Executor) {
	p.s.addCallback(f, executor)
}

// Then chains a continuation returning a plain Result. The returned
// promise settles with the continuation's result once it has run
// through the executor.
func Then[T, U any](p *Promise[T], f func(result.Result[T]) result.Result[U], executor Executor) *Promise[U] {
	next := NewPromise[U]()
	s := p.s
	next.s.watch(s)
	s.addCallback(func(r result.Result[T]) {
		res := f(r)
		if s.next == nil {
			// downstream went away, the outcome is dropped
			return
		}
		next.s.set(res)
	}, executor)
	return next
}

// ThenPromise chains a continuation returning another promise. The inner
// promise is watched: its eventual settlement propagates straight into
// the returned promise without a second executor hop.
func ThenPromise[T, U any](p *Promise[T], f func(result.Result[T]) *Promise[U], executor Executor) *Promise[U] {
	next := NewPromise[U]()
	s := p.s
	next.s.watch(s)
	s.addCallback(func(r result.Result[T]) {
		inner := f(r)
		if s.next == nil {
			return
		}
		propagatePromise(inner, next)
	}, executor)
	return next
}

// propagatePromise re-anchors next behind the inner promise and installs
// the pass-through continuation. The inner promise must not carry a
// handler of its own.
func propagatePromise[U any](inner *Promise[U], next *Promise[U]) {
	is := inner.s
	next.s.watch(is)
	is.addCallback(func(r result.Result[U]) {
		if is.next == nil {
			return
		}
		next.s.set(r)
	}, nil)
}
