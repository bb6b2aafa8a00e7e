package event

import (
	"github.com/fixkme/evkit/errs"
	"github.com/fixkme/evkit/result"
)

func MkResolvedPromise[T any](v T) *Promise[T] {
	p := NewPromise[T]()
	p.Resolve(v)
	return p
}

func MkRejectedPromise[T any](e *errs.Error) *Promise[T] {
	p := NewPromise[T]()
	p.Reject(e)
	return p
}

// MkPromise hands resolve/reject functions to the producer.
func MkPromise[T any](f func(resolve func(T) bool, reject func(*errs.Error) bool)) *Promise[T] {
	p := NewPromise[T]()
	s := p.s
	f(func(v T) bool { return s.resolve(v) },
		func(e *errs.Error) bool { return s.reject(e) })
	return p
}

// MkAllPromise resolves with every input's value in input order, or
// rejects with the first error; later outcomes are ignored. The input
// slice is held by the combinator until settlement.
func MkAllPromise[T any](promises []*Promise[T], executor Executor) *Promise[[]T] {
	if len(promises) == 0 {
		return MkResolvedPromise([]T{})
	}

	next := NewPromise[[]T]()
	remaining := len(promises)
	results := make([]T, len(promises))
	for i, p := range promises {
		i := i
		p.Then(func(r result.Result[T]) {
			if r.IsError() {
				next.Reject(r.PassError())
				return
			}
			results[i] = r.PassResult()
			remaining--
			if remaining == 0 {
				next.Resolve(results)
			}
		}, executor)
	}
	return next
}

// MkAnyPromise resolves with the first success in settlement order. It
// rejects only after every input has rejected.
func MkAnyPromise[T any](promises []*Promise[T], executor Executor) *Promise[T] {
	if len(promises) == 0 {
		return MkRejectedPromise[T](Errf(ErrEventPromiseAny, "no promise"))
	}

	next := NewPromise[T]()
	failures := len(promises)
	for _, p := range promises {
		p.Then(func(r result.Result[T]) {
			if r.IsOk() {
				next.Resolve(r.PassResult())
				return
			}
			failures--
			if failures == 0 {
				next.Reject(Errf(ErrEventPromiseAny, "no resolved promise"))
			}
		}, executor)
	}
	return next
}

// MkRacePromise settles with the outcome of the first input to settle,
// success or failure.
func MkRacePromise[T any](promises []*Promise[T], executor Executor) *Promise[T] {
	if len(promises) == 0 {
		return MkRejectedPromise[T](Errf(ErrEventPromiseRace, "no promise"))
	}

	next := NewPromise[T]()
	for _, p := range promises {
		p.Then(func(r result.Result[T]) {
			next.Set(r)
		}, executor)
	}
	return next
}

// ThenAll chains a functor producing a batch of promises; the returned
// promise gathers them like MkAllPromise.
func ThenAll[T, U any](p *Promise[T], f func(result.Result[T]) result.Result[[]*Promise[U]], executor Executor) *Promise[[]U] {
	return ThenPromise(p, func(r result.Result[T]) *Promise[[]U] {
		res := f(r)
		if res.IsError() {
			return MkRejectedPromise[[]U](res.PassError())
		}
		return MkAllPromise(res.PassResult(), executor)
	}, executor)
}

// ThenAny chains a functor producing a batch of promises raced for the
// first success.
func ThenAny[T, U any](p *Promise[T], f func(result.Result[T]) result.Result[[]*Promise[U]], executor Executor) *Promise[U] {
	return ThenPromise(p, func(r result.Result[T]) *Promise[U] {
		res := f(r)
		if res.IsError() {
			return MkRejectedPromise[U](res.PassError())
		}
		return MkAnyPromise(res.PassResult(), executor)
	}, executor)
}

// ThenRace chains a functor producing a batch of promises raced for the
// first settlement.
func ThenRace[T, U any](p *Promise[T], f func(result.Result[T]) result.Result[[]*Promise[U]], executor Executor) *Promise[U] {
	return ThenPromise(p, func(r result.Result[T]) *Promise[U] {
		res := f(r)
		if res.IsError() {
			return MkRejectedPromise[U](res.PassError())
		}
		return MkRacePromise(res.PassResult(), executor)
	}, executor)
}
