// Package event is the asynchronous execution core: per-goroutine
// message loops, chainable promises, and the coroutine bridge on top.
package event

import (
	"fmt"

	"github.com/fixkme/evkit/errs"
)

// Severity selects which local task queue a handler lands on.
type Severity int

const (
	SeverityUrgent Severity = iota
	SeverityCritical
	SeverityNormal
)

// Well-known event error codes.
const (
	ErrEventPromiseAny = iota
	ErrEventPromiseRace
	ErrEventLoopShutdown
	ErrUnsupportedEvent
	ErrCoroutineException
)

var eventErrorDescs = map[int]string{
	ErrEventPromiseAny:    "promise any operation failed",
	ErrEventPromiseRace:   "promise race operation failed",
	ErrEventLoopShutdown:  "eventloop shutdown",
	ErrUnsupportedEvent:   "event unsupported",
	ErrCoroutineException: "coroutine exception",
}

type eventCategory struct{}

func (eventCategory) Name() string { return "event" }

func (eventCategory) Information(code int) string {
	if desc, ok := eventErrorDescs[code]; ok {
		return fmt.Sprintf("event[%s]", desc)
	}
	return "event[none]"
}

var eventCat eventCategory

func Cat() errs.Category { return &eventCat }

func Err(code int) *errs.Error {
	return errs.New(Cat(), code)
}

func Errf(code int, format string, args ...any) *errs.Error {
	return errs.Newf(Cat(), code, format, args...)
}
