// Package errors carries a stable error code alongside the Go error chain.
// Handlers render the code; logs get the full chain.
package errors

import (
	stdErrors "errors"
	"fmt"
)

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches code and message to err. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails sets client-visible details when the code allows them.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	default:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether the outermost typed error in err's chain has code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// WrapUnlessTyped passes typed errors through untouched and wraps anything else as code.
func WrapUnlessTyped(code Code, err error, message string) error {
	if err == nil || As(err) != nil {
		return err
	}
	return Wrap(code, err, message)
}

// Public is the client-safe rendering of an error.
type Public struct {
	Status  int
	Code    Code
	Message string
	Details any
}

// PublicOf maps err onto what a client may see. Untyped errors become
// CodeInternal with the generic message.
func PublicOf(err error) Public {
	typed := As(err)
	if typed == nil {
		typed = New(CodeInternal, "")
	}
	meta := MetadataFor(typed.code)
	out := Public{Status: meta.HTTPStatus, Code: typed.code, Message: meta.PublicMessage}
	if _, known := metadataByCode[typed.code]; !known {
		out.Code = CodeInternal
	}
	if meta.MessageAllowed && typed.message != "" {
		out.Message = typed.message
	}
	if meta.DetailsAllowed {
		out.Details = typed.details
	}
	return out
}
