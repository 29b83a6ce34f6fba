// Package apperr defines the error taxonomy surfaced by the study core.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
)

type Error struct {
	Kind error
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Code != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	case e.Kind != nil:
		return e.Kind.Error()
	}
	return "app error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel kind so callers can use errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	return e != nil && e.Kind != nil && target == e.Kind
}

func Validation(code string, err error) *Error {
	return &Error{Kind: ErrValidation, Code: code, Err: err}
}

func InvalidState(code string, err error) *Error {
	return &Error{Kind: ErrInvalidState, Code: code, Err: err}
}

func NotFound(code string, err error) *Error {
	return &Error{Kind: ErrNotFound, Code: code, Err: err}
}

func Validationf(code, format string, args ...interface{}) *Error {
	return Validation(code, fmt.Errorf(format, args...))
}

func InvalidStatef(code, format string, args ...interface{}) *Error {
	return InvalidState(code, fmt.Errorf(format, args...))
}

func NotFoundf(code, format string, args ...interface{}) *Error {
	return NotFound(code, fmt.Errorf(format, args...))
}

func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
