package dispatch

import (
	"errors"
	"fmt"
)

// ErrDispatch is the sentinel all dispatch-time errors wrap.
var ErrDispatch = errors.New("dispatch error")

// Status indicates the outcome of a dispatched action.
type Status uint8

const (
	// StatusOK indicates successful execution.
	StatusOK Status = iota
	// StatusNoOp indicates the action had no effect.
	StatusNoOp
	// StatusError indicates an error occurred; the buffer is
	// unchanged.
	StatusError
	// StatusAsync indicates the operation is running asynchronously;
	// its result arrives later keyed by RunID.
	StatusAsync
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoOp:
		return "no-op"
	case StatusError:
		return "error"
	case StatusAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Result is the outcome of dispatching one action.
type Result struct {
	Status Status

	// Err is set when Status is StatusError.
	Err error

	// Message is an optional status message for display.
	Message string

	// RunID identifies an asynchronous run when Status is
	// StatusAsync.
	RunID string
}

// IsOK returns true if the result indicates success.
func (r Result) IsOK() bool {
	return r.Status == StatusOK
}

// IsError returns true if the result indicates an error.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// Success returns a successful result.
func Success() Result {
	return Result{Status: StatusOK}
}

// NoOp returns a result indicating nothing happened.
func NoOp() Result {
	return Result{Status: StatusNoOp}
}

// Errorf returns an error result wrapping ErrDispatch.
func Errorf(format string, args ...any) Result {
	return Result{
		Status: StatusError,
		Err:    fmt.Errorf("%w: %s", ErrDispatch, fmt.Sprintf(format, args...)),
	}
}

// Error returns an error result carrying err.
func Error(err error) Result {
	return Result{Status: StatusError, Err: err}
}

// Async returns a pending result for the given run.
func Async(runID string) Result {
	return Result{Status: StatusAsync, RunID: runID}
}
