// Package fault contains the error model used as the reason for explicit failures.
// It is shaped like an API error response so failures can be handed to clients as-is.
package fault

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
)

// Well known failure codes
const (
	CodeInvalid     int64 = 422
	CodeConflict    int64 = 409
	CodeUnpaid      int64 = 402
	CodeUnavailable int64 = 503
)

// Error the error model is a model for all the failure reasons of the interactors
//
// swagger:model error
type Error struct {

	// cause
	Cause *Error `json:"cause,omitempty"`

	// The error code
	// Required: true
	Code int64 `json:"code"`

	// link to help page explaining the error in more detail
	HelpURL strfmt.URI `json:"helpUrl,omitempty"`

	// The error message
	// Required: true
	Message string `json:"message"`

	// when the error was raised
	At strfmt.DateTime `json:"at,omitempty"`
}

// New creates an error with the current time
func New(code int64, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		At:      strfmt.DateTime(time.Now().UTC()),
	}
}

// Newf creates an error with a formatted message
func Newf(code int64, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Because sets the cause of this error
func (m *Error) Because(cause *Error) *Error {
	m.Cause = cause
	return m
}

// WithHelp sets the help URL
func (m *Error) WithHelp(url string) *Error {
	m.HelpURL = strfmt.URI(url)
	return m
}

func (m *Error) Error() string {
	if m.Cause != nil {
		return m.Message + ": " + m.Cause.Error()
	}
	return m.Message
}

// Unwrap returns the cause
func (m *Error) Unwrap() error {
	if m.Cause == nil {
		return nil
	}
	return m.Cause
}

// Is matches on code, so errors.Is(err, &Error{Code: CodeUnpaid}) finds any payment failure in the chain
func (m *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == m.Code
}

// Root returns the innermost cause
func (m *Error) Root() *Error {
	e := m
	for e.Cause != nil {
		e = e.Cause
	}
	return e
}

// From extracts an error from a failure reason, reasons that aren't an error or don't wrap one yield false
func From(reason interface{}) (*Error, bool) {
	err, ok := reason.(error)
	if !ok {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf the error in a failure reason, 0 when the reason isn't a fault
func CodeOf(reason interface{}) int64 {
	if e, ok := From(reason); ok {
		return e.Code
	}
	return 0
}
