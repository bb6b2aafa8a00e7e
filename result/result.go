package result

import "github.com/fixkme/evkit/errs"

// Dummy is the unit payload used where no value is carried.
type Dummy struct{}

const (
	stateEmpty = iota
	stateOk
	stateError
)

// Result is a sum over {empty, value, error}. The zero value is empty.
type Result[T any] struct {
	state uint8
	value T
	err   *errs.Error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{state: stateOk, value: v}
}

func Err[T any](e *errs.Error) Result[T] {
	return Result[T]{state: stateError, err: e}
}

func (r *Result[T]) IsEmpty() bool { return r.state == stateEmpty }
func (r *Result[T]) IsOk() bool    { return r.state == stateOk }
func (r *Result[T]) IsError() bool { return r.state == stateError }

func (r *Result[T]) Clear() {
	var zero T
	r.state = stateEmpty
	r.value = zero
	r.err = nil
}

// PassResult moves the value out, leaving the result empty.
// It is a programming error to call it on a non-ok result.
func (r *Result[T]) PassResult() T {
	if !r.IsOk() {
		panic("result: pass value of non-ok result")
	}
	v := r.value
	r.Clear()
	return v
}

func (r *Result[T]) GetResult() T {
	if !r.IsOk() {
		panic("result: get value of non-ok result")
	}
	return r.value
}

// PassError moves the error out, leaving the result empty.
func (r *Result[T]) PassError() *errs.Error {
	if !r.IsError() {
		panic("result: pass error of non-error result")
	}
	e := r.err
	r.Clear()
	return e
}

func (r *Result[T]) GetError() *errs.Error {
	if !r.IsError() {
		panic("result: get error of non-error result")
	}
	return r.err
}
