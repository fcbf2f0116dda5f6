// Package apperr defines the error kinds shared by acquisition, actuation and
// configuration paths.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure.
type Code string

const (
	NetworkFailure    Code = "network_failure"
	DecodeFailure     Code = "decode_failure"
	ValidationFailure Code = "validation_failure"
	InvalidTransition Code = "invalid_transition"
	NotFound          Code = "not_found"
	Internal          Code = "internal_error"
)

var messages = map[Code]string{
	NetworkFailure:    "device unreachable",
	DecodeFailure:     "malformed device response",
	ValidationFailure: "invalid value",
	InvalidTransition: "operation not allowed in current mode",
	NotFound:          "not found",
	Internal:          "internal error",
}

// Error carries a code, the operation that failed and an optional cause.
type Error struct {
	Code Code
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = messages[e.Code]
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given code with a message.
func New(code Code, op, msg string) *Error {
	return &Error{Code: code, Op: op, Msg: msg}
}

// Newf is New with formatting.
func Newf(code Code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and operation to err.
func Wrap(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or Internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
