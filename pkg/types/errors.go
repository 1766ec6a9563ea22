package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a binding runtime error code.
type ErrorCode string

// Error codes grouped by family.
const (
	// P01xx: Lexical errors
	ErrUnexpectedCharacter ErrorCode = "P0101"
	ErrStringNotClosed     ErrorCode = "P0102"
	ErrTemplateNotClosed   ErrorCode = "P0103"
	ErrInvalidLiteral      ErrorCode = "P0104"

	// P02xx: Syntax errors
	ErrSyntaxError          ErrorCode = "P0201"
	ErrExpectedToken        ErrorCode = "P0202"
	ErrNotAssignable        ErrorCode = "P0203"
	ErrUnconsumedToken      ErrorCode = "P0204"
	ErrEmptyExpression      ErrorCode = "P0205"
	ErrUnexpectedEnd        ErrorCode = "P0206"
	ErrInvalidMemberAccess  ErrorCode = "P0207"
	ErrUnexpectedOf         ErrorCode = "P0208"
	ErrMissingOf            ErrorCode = "P0209"
	ErrInterpolationNotDone ErrorCode = "P0210"
	ErrInvalidBindingTarget ErrorCode = "P0211"

	// E1xxx: Evaluation errors
	ErrInvokeNonFunction     ErrorCode = "E1001"
	ErrConverterNotFound     ErrorCode = "E1002"
	ErrBehaviorNotFound      ErrorCode = "E1003"
	ErrBehaviorAlreadyBound  ErrorCode = "E1004"
	ErrNilScope              ErrorCode = "E1005"
	ErrInvalidAssignment     ErrorCode = "E1006"
	ErrNotIterable           ErrorCode = "E1007"
	ErrUnknownOperator       ErrorCode = "E1008"
	ErrNoServiceLocator      ErrorCode = "E1009"
	ErrInvalidCollectionCall ErrorCode = "E1011"
	ErrInvalidArgument       ErrorCode = "E1012"

	// O2xxx: Observation capability errors
	ErrNoSetter          ErrorCode = "O2001"
	ErrDirtyCheckOff     ErrorCode = "O2002"
	ErrNotObservable     ErrorCode = "O2003"
	ErrNotObjectProperty ErrorCode = "O2004"

	// R3xxx: Resource exhaustion errors
	ErrComputedRunaway ErrorCode = "R3001"
	ErrEffectRunaway   ErrorCode = "R3002"
)

// Error represents a structured binding runtime error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new error. Use a negative position when the
// error is not tied to a source offset.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Errorf creates a new error without position information.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: -1,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// IsCode reports whether err is, or wraps, an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
