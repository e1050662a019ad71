package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeProductNotFound    Code = "PRODUCT_NOT_FOUND"
	CodeNotFound           Code = "NOT_FOUND"
	CodeInsufficientStock  Code = "INSUFFICIENT_STOCK"
	CodeAmbiguousProduct   Code = "AMBIGUOUS_PRODUCT"
	CodeConflict           Code = "CONFLICT"
	CodeStorageFailure     Code = "STORAGE_FAILURE"
)

var statusByCode = map[Code]int{
	CodeInvalidArgument:    http.StatusBadRequest,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeProductNotFound:    http.StatusInternalServerError,
	CodeNotFound:           http.StatusNotFound,
	CodeInsufficientStock:  http.StatusBadRequest,
	CodeAmbiguousProduct:   http.StatusConflict,
	CodeConflict:           http.StatusConflict,
	CodeStorageFailure:     http.StatusInternalServerError,
}

// Sentinels for errors.Is. Matching is by code, so wrapped or re-messaged
// errors of the same code still match.
var (
	ErrProductNotFound    = New(CodeProductNotFound, "Product not found")
	ErrInsufficientStock  = New(CodeInsufficientStock, "Not enough stock available")
	ErrAmbiguousProduct   = New(CodeAmbiguousProduct, "Product name matches more than one inventory item")
	ErrInvalidCredentials = New(CodeInvalidCredentials, "Invalid credentials")
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

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

// Storage wraps a data-access error. The public message is the underlying
// error text; callers decide whether to expose it.
func Storage(err error) *Error {
	if err == nil {
		return New(CodeStorageFailure, "storage failure")
	}
	if typed := As(err); typed != nil {
		return typed
	}
	return Wrap(CodeStorageFailure, err, err.Error())
}

func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeStorageFailure
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

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

// WithCause returns a copy of e carrying cause.
func (e *Error) WithCause(cause error) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.cause = cause
	return &cp
}

func (e *Error) HTTPStatus() int {
	if status, ok := statusByCode[e.Code()]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.code == t.code
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}
