// Package errors provides structured error types for codegraph.
//
// Every failure the engine can surface to a user carries a machine-readable
// [Code]. The codes follow the graph engine's error taxonomy:
//
//   - FETCH_FAILED, NETWORK_ERROR, TIMEOUT, UNAUTHORIZED, NOT_FOUND: the backend
//     fetch failed. The controller resets to an empty graph and enters its
//     error state until the fetch is retried.
//   - MALFORMED_RESPONSE: the backend answered without "nodes" or "links".
//     Handled exactly like a failed fetch.
//   - INVALID_*: caller input (filters, layout names, formats) was rejected
//     before any work started.
//   - INTERNAL_ERROR: anything else.
//
// Dangling edges and empty-graph layouts are not errors at all: they are
// recovered locally and never produce an *Error.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLayout, "unknown layout %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidLayout) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

// Caller input rejected before any work started.
const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidLayout   Code = "INVALID_LAYOUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidLanguage Code = "INVALID_LANGUAGE"
	ErrCodeInvalidProject  Code = "INVALID_PROJECT"
)

// Backend fetch failures.
const (
	ErrCodeFetch             Code = "FETCH_FAILED"
	ErrCodeMalformedResponse Code = "MALFORMED_RESPONSE"
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeNetwork           Code = "NETWORK_ERROR"
	ErrCodeTimeout           Code = "TIMEOUT"
	ErrCodeUnauthorized      Code = "UNAUTHORIZED"
)

const (
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

type codeInfo struct {
	status int
	fetch  bool
}

var codes = map[Code]codeInfo{
	ErrCodeInvalidInput:    {http.StatusBadRequest, false},
	ErrCodeInvalidLayout:   {http.StatusBadRequest, false},
	ErrCodeInvalidFormat:   {http.StatusBadRequest, false},
	ErrCodeInvalidLanguage: {http.StatusBadRequest, false},
	ErrCodeInvalidProject:  {http.StatusBadRequest, false},

	ErrCodeFetch:             {http.StatusBadGateway, true},
	ErrCodeMalformedResponse: {http.StatusBadGateway, true},
	ErrCodeNetwork:           {http.StatusBadGateway, true},
	ErrCodeNotFound:          {http.StatusNotFound, true},
	ErrCodeTimeout:           {http.StatusGatewayTimeout, true},
	ErrCodeUnauthorized:      {http.StatusUnauthorized, true},

	ErrCodeInternal:    {http.StatusInternalServerError, false},
	ErrCodeUnsupported: {http.StatusNotImplemented, false},
}

// Status is the HTTP status a server answers with for c. Unknown codes map
// to 500.
func (c Code) Status() int {
	if info, ok := codes[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Fetch reports whether c belongs to the fetch family.
func (c Code) Fetch() bool { return codes[c].fetch }

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code, so errors.Is(err, &Error{Code: c})
// works as well as [Is].
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && t.Message == "" && t.Cause == nil
}

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

func outermost(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := outermost(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code,
// or err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := outermost(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsFetchFailure reports whether err carries a fetch-family code.
func IsFetchFailure(err error) bool {
	return GetCode(err).Fetch()
}

// HTTPStatus maps err to a response status; uncoded errors are 500.
func HTTPStatus(err error) int {
	return GetCode(err).Status()
}
