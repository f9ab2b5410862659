package internal

import (
	"errors"
	"fmt"
)

// AppError is the error shape carried in API responses.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Sentinel not-found errors. Referenced records being absent is reported to
// the caller, never fatal to the process.
var (
	ErrDayNotFound     = errors.New("day not found")
	ErrNapNotFound     = errors.New("nap slot not found")
	ErrSessionNotFound = errors.New("sleep session not found")
	ErrSettingNotFound = errors.New("setting not found")
)

// ValidationError is malformed, missing, or out-of-range input. Always
// reported to the caller, never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a store failure. The caller may retry the whole
// event; engine operations are idempotent or convergent on retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDayNotFound) ||
		errors.Is(err, ErrNapNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSettingNotFound)
}
