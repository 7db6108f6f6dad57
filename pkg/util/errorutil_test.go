package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
		assert.NoError(t, MapError(nil))
	})

	t.Run("domain error passes through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("apply: %w", NewForbidden("nope"))
		de := ToDomainError(wrapped)
		require.NotNil(t, de)
		assert.Equal(t, "FORBIDDEN", de.Code)
		assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	})

	t.Run("missing rows become not found", func(t *testing.T) {
		de := ToDomainError(fmt.Errorf("load: %w", pgx.ErrNoRows))
		assert.Equal(t, "NOT_FOUND", de.Code)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	})

	t.Run("malformed uuid becomes not found", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}
		de := ToDomainError(fmt.Errorf("get offer: %w", pgErr))
		assert.Equal(t, "NOT_FOUND", de.Code)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	})

	t.Run("other postgres errors stay internal", func(t *testing.T) {
		de := ToDomainError(&pgconn.PgError{Code: "53300"})
		assert.Equal(t, "INTERNAL_ERROR", de.Code)
	})

	t.Run("anything else is an opaque internal error", func(t *testing.T) {
		de := ToDomainError(errors.New("connection reset"))
		assert.Equal(t, "INTERNAL_ERROR", de.Code)
		assert.Equal(t, "internal server error", de.Message)
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	})
}

func TestInvalidState(t *testing.T) {
	de := ToDomainError(NewInvalidState("already removed", map[string]any{"id": "1"}))
	assert.Equal(t, "INVALID_STATE", de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "1", de.Details["id"])
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.True(t, IsNotFound(NewNotFound("step", nil)))
	assert.True(t, IsNotFound(&pgconn.PgError{Code: "22P02"}))
	assert.False(t, IsNotFound(NewForbidden("x")))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestValidateStruct(t *testing.T) {
	type request struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required,max=5"`
		Ref   string `validate:"omitempty,uuid"`
	}

	require.NoError(t, ValidateStruct(request{Email: "a@b.io", Name: "ok"}))

	err := ValidateStruct(request{Email: "nope", Name: "toolong", Ref: "abc"})
	de := ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, "must be a valid email address", de.Details["email"])
	assert.Equal(t, "must be at most 5", de.Details["name"])
	assert.Equal(t, "must be a valid UUID", de.Details["ref"])
}
