// Package apperr is the service error taxonomy shared by services and handlers.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Code classifies a failure for callers and the HTTP layer.
type Code string

const (
	CodeUnauthenticated Code = "unauthenticated"
	CodeNotFound        Code = "not_found"
	CodeInvalidState    Code = "invalid_state"
	CodeValidation      Code = "validation"
	CodeStorageFailure  Code = "storage_failure"
)

// Error is the canonical service error.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Message != "":
		return e.Message
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Retryable reports whether the caller may retry the operation as is.
func (e *Error) Retryable() bool { return e != nil && e.Code == CodeStorageFailure }

func New(code Code, op, message string) error {
	return &Error{Code: code, Op: op, Message: strings.TrimSpace(message)}
}

func Unauthenticated(op string) error {
	return New(CodeUnauthenticated, op, "authentication required")
}

func NotFound(op, message string) error     { return New(CodeNotFound, op, message) }
func InvalidState(op, message string) error { return New(CodeInvalidState, op, message) }
func Validation(op, message string) error   { return New(CodeValidation, op, message) }

// Storage wraps an infrastructure failure as a retryable storage error.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: CodeStorageFailure, Op: op, Message: err.Error(), Cause: err}
}

// FromStorage maps gorm/pgx failures onto the taxonomy. Errors that already
// carry a code pass through untouched.
func FromStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Code: CodeNotFound, Op: op, Message: "not found", Cause: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Storage(op, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return &Error{Code: CodeStorageFailure, Op: op, Message: "concurrent update, retry", Cause: err}
		}
	}
	return Storage(op, err)
}

// IsUniqueViolation reports whether err is a unique constraint failure from
// either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// CodeOf extracts the code, or "" for foreign errors.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Is reports whether err carries code.
func Is(err error, code Code) bool { return CodeOf(err) == code }
