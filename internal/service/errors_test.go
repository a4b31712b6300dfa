package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestStoreErr(t *testing.T) {
	assert.NoError(t, storeErr(nil))
	assert.ErrorIs(t, storeErr(fmt.Errorf("get: %w", pgx.ErrNoRows)), ErrNotFound)
	assert.ErrorIs(t, storeErr(&pgconn.PgError{Code: "23505"}), ErrConflict)
	assert.ErrorIs(t, storeErr(&pgconn.PgError{Code: "23503"}), ErrValidation)
	assert.ErrorIs(t, storeErr(fmt.Errorf("get: %w", &pgconn.PgError{Code: "22P02"})), ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, storeErr(other))
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	err := invalid("title is required")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "title is required", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", err), &ve))

	assert.ErrorIs(t, forbidden("owners only"), ErrForbidden)
	assert.NotErrorIs(t, forbidden("owners only"), ErrValidation)
}
