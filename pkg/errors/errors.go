package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Error kind codes from the propagation policy: Normaliser/Validator classify
// every defect as SourceInvalid (fatal) or carry on with a warning; the Store
// raises StoreContention on lock timeouts; the Aggregator never produces
// SourceInvalid, only Internal.
const (
	KindSourceInvalid   = "SOURCE_INVALID"
	KindRowDefect       = "ROW_DEFECT"
	KindUnknownMonth    = "UNKNOWN_MONTH"
	KindStoreContention = "STORE_CONTENTION"
	KindCancelled       = "CANCELLED"
	KindInternal        = "INTERNAL"
)

// Predefined errors for common scenarios.
var (
	ErrNotFound        = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation      = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal        = New(KindInternal, http.StatusInternalServerError, "internal server error")
	ErrSourceInvalid   = New(KindSourceInvalid, http.StatusBadRequest, "workbook is missing a required sheet or is unreadable")
	ErrStoreContention = New(KindStoreContention, http.StatusConflict, "store is busy processing this month, retry shortly")
	ErrCancelled       = New(KindCancelled, http.StatusTeapot, "operation cancelled before commit")
	ErrCacheMiss       = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

func init() {
	// 499 (client closed request) has no net/http constant; set it explicitly.
	ErrCancelled.Status = 499
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
