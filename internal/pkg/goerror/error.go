package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by repositories when a row or key does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned by repositories on unique constraint violations.
	ErrConflict = errors.New("resource conflict")
)

// Type classifies errors into high-level buckets.
type Type int

const (
	// TypeServer represents failures of the service or its collaborators.
	TypeServer Type = iota
	// TypeBusiness represents a request that broke a domain rule.
	TypeBusiness
	// TypeValidation represents malformed or incomplete input.
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier used for mapping errors to HTTP status codes.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeBadRequest
	CodeNotFound
	CodeConflict
	CodeTooManyRequest
	CodeUnauthorized
	CodeForbidden
	CodeUnavailable
)

func (c Code) String() string {
	switch c {
	case CodeInvalidFormat:
		return "ERROR_CODE_INVALID_FORMAT"
	case CodeInvalidInput:
		return "ERROR_CODE_INVALID_INPUT"
	case CodeBadRequest:
		return "ERROR_CODE_BAD_REQUEST"
	case CodeNotFound:
		return "ERROR_CODE_NOT_FOUND"
	case CodeConflict:
		return "ERROR_CODE_CONFLICT"
	case CodeTooManyRequest:
		return "ERROR_CODE_TOO_MANY_REQUESTS"
	case CodeUnauthorized:
		return "ERROR_CODE_UNAUTHORIZED"
	case CodeForbidden:
		return "ERROR_CODE_FORBIDDEN"
	case CodeUnavailable:
		return "ERROR_CODE_UNAVAILABLE"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// Error carries a user-facing message, a type and a code on top of an
// optional wrapped cause. Only msg and fields ever reach an HTTP client.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	switch e.errType {
	case TypeValidation:
		return "Validation violation"
	case TypeBusiness:
		return "Business rule violation"
	default:
		return "Internal error"
	}
}

// String is a verbose form meant for logs.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

// Msg returns the user-facing message.
func (e *Error) Msg() string {
	return e.msg
}

func (e *Error) Type() Type {
	return e.errType
}

func (e *Error) Code() Code {
	return e.code
}

// Fields returns per-field validation messages, if any.
func (e *Error) Fields() map[string]string {
	return e.fields
}

func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	switch e.code {
	case CodeInvalidFormat, CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newError(err error, msg string, et Type, code Code) *Error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer wraps an internal failure. The message shown to clients is
// generic unless one is given.
func NewServer(err error, msgs ...string) error {
	msg := "Internal server error"
	if len(msgs) > 0 && msgs[0] != "" {
		msg = msgs[0]
	}
	return newError(err, msg, TypeServer, CodeInternal)
}

// NewBusiness creates a business error with the given message and code.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewBusinessCause is NewBusiness keeping a domain sentinel reachable
// through errors.Is.
func NewBusinessCause(cause error, msg string, code Code) error {
	return newError(cause, msg, TypeBusiness, code)
}

// NewInvalidInput builds a validation error. A non-nil err (usually the
// validator output) is wrapped; otherwise kv pairs become field messages.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}

	e := newError(nil, "Validation error", TypeValidation, CodeInvalidInput)
	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewValidation is a validation error with a caller-chosen message.
func NewValidation(msg string, err error) error {
	return newError(err, msg, TypeValidation, CodeInvalidInput)
}

// NewInvalidFormat reports a body or parameter that could not be parsed.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}
	return newError(nil, msgs[0], TypeValidation, CodeInvalidFormat)
}
