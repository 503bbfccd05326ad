// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Sentinel errors for registration and dispatch, plus a coded error carrying
// key/value context for log lines.

package api

import (
	"errors"
	"fmt"
)

// Registration and dispatch failures. Compare with errors.Is.
var (
	ErrRegistryFull      = errors.New("watch table full")
	ErrAlreadyRegistered = errors.New("event already registered")
	ErrNotRegistered     = errors.New("event not registered")
	ErrFDOutOfRange      = errors.New("fd out of range")
	ErrInterrupted       = errors.New("readiness wait interrupted")
	ErrWaiterClosed      = errors.New("waiter is closed")
	ErrLoopRunning       = errors.New("event loop already running")
	ErrLoopStopped       = errors.New("event loop stopped")
	ErrNotSupported      = errors.New("operation not supported")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// ErrorCode classifies an *Error.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeNotSupported
	ErrCodeWaitFailed
	ErrCodeBootstrap
	ErrCodeInternal
)

// Error is a coded failure with an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error renders message, cause and context on one line.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// NewError returns an *Error with an empty context.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap attaches a cause to the error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// WithContext records key=value on e.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeOK for nil and
// ErrCodeInternal for errors that are not *Error.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
