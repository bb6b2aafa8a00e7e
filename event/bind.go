package event

import "sync/atomic"

// Guard marks the liveness of an object captured weakly by a callback.
// Dropping the guard turns every weakly bound callback into a no-op.
type Guard struct {
	dropped atomic.Bool
}

func (g *Guard) Drop() {
	g.dropped.Store(true)
}

func (g *Guard) Alive() bool {
	return !g.dropped.Load()
}

// BindWeak wraps f so that it goes silent once the guard is dropped.
func BindWeak(g *Guard, f func()) func() {
	return func() {
		if g.Alive() {
			f()
		}
	}
}

// BindWeakResult is BindWeak for callbacks with a return value; an
// expired guard yields the zero value.
func BindWeakResult[R any](g *Guard, f func() R) func() R {
	return func() R {
		if g.Alive() {
			return f()
		}
		var zero R
		return zero
	}
}

// BindStrong pins owner for the callback's lifetime.
func BindStrong[O any](owner *O, f func()) func() {
	return func() {
		_ = owner
		f()
	}
}
