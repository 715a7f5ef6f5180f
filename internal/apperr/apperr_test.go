package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFromStorage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"record not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), CodeNotFound},
		{"deadline", context.DeadlineExceeded, CodeStorageFailure},
		{"serialization", &pgconn.PgError{Code: "40001"}, CodeStorageFailure},
		{"generic", errors.New("connection refused"), CodeStorageFailure},
		{"already coded", InvalidState("op", "already responded"), CodeInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromStorage("op", tt.err)
			assert.Equal(t, tt.want, CodeOf(got))
		})
	}
	assert.Nil(t, FromStorage("op", nil))
}

func TestErrorFormattingAndRetryable(t *testing.T) {
	err := Validation("recommendation.send", "cannot recommend to yourself")
	assert.Equal(t, "recommendation.send: cannot recommend to yourself", err.Error())
	assert.True(t, Is(err, CodeValidation))

	var appErr *Error
	assert.True(t, errors.As(Storage("score.add", errors.New("boom")), &appErr))
	assert.True(t, appErr.Retryable())
	assert.False(t, (&Error{Code: CodeInvalidState}).Retryable())
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"postgres unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true},
		{"sqlite not null", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}
