package event

import (
	"github.com/fixkme/evkit/errs"
	"github.com/fixkme/evkit/result"
)

// Notifier is a promise whose value is unit: it fires with possibly an
// error and nothing else.
type Notifier struct {
	*Promise[result.Dummy]
}

func NewNotifier() Notifier {
	return Notifier{Promise: NewPromise[result.Dummy]()}
}

// Then installs the one continuation of this unary chain. The error is
// nil when the notifier resolved.
func (n Notifier) Then(f func(*errs.Error), executor Executor) {
	n.Promise.Then(func(r result.Result[result.Dummy]) {
		if r.IsError() {
			f(r.PassError())
		} else {
			f(nil)
		}
	}, executor)
}

func (n Notifier) GetResolver() NotifierResolver {
	return NotifierResolver{Resolver: n.Promise.GetResolver()}
}

type NotifierResolver struct {
	*Resolver[result.Dummy]
}

func (r NotifierResolver) Resolve() bool {
	return r.Resolver.Resolve(result.Dummy{})
}

func MkResolvedNotifier() Notifier {
	n := NewNotifier()
	n.GetResolver().Resolve()
	return n
}

func MkRejectedNotifier(e *errs.Error) Notifier {
	n := NewNotifier()
	n.GetResolver().Reject(e)
	return n
}
