package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes failure semantics across the service layer.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

// Error is the canonical service error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a service error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with service error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func ValidationError(op, message string) error {
	return NewError(CodeValidation, op, message, nil)
}

func NotFoundError(op, message string) error {
	return NewError(CodeNotFound, op, message, nil)
}

func ConflictError(op, message string) error {
	return NewError(CodeConflict, op, message, nil)
}

// InvariantError marks data-corruption conditions. These must never be folded
// into not-found results.
func InvariantError(op, message string) error {
	return NewError(CodeInvariantViolation, op, message, nil)
}

func RetryableError(op, message string) error {
	return NewError(CodeRetryable, op, message, nil)
}

// IsCode checks whether err (or wrapped err) carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		return false
	}
	return svcErr.Code == code
}

// CodeOf extracts the error code when available.
func CodeOf(err error) ErrorCode {
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		return ""
	}
	return svcErr.Code
}
