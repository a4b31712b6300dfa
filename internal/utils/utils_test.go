package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPGErrorHelpers(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsPGUniqueViolation(unique))
	assert.False(t, IsPGUniqueViolation(fk))
	assert.True(t, IsPGForeignKeyViolation(fk))
	assert.False(t, IsPGForeignKeyViolation(errors.New("boom")))
	assert.True(t, IsPGInvalidText(fmt.Errorf("get: %w", &pgconn.PgError{Code: "22P02"})))
	assert.False(t, IsPGInvalidText(fk))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "При", TruncateRunes("Привет", 3))
	assert.Equal(t, "abc", TruncateRunes("abc", 10))
	assert.Equal(t, "", TruncateRunes("abc", 0))
	assert.Equal(t, "Прив...", Ellipsize("Привет", 4))
	assert.Equal(t, "ok", Ellipsize("ok", 4))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\% off\_now%`, LikePattern(" 50% off_now "))
}
