package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsSerializationFailure(t *testing.T) {
	t.Run("matches SQLSTATE 40001 even when wrapped", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "40001", Message: "could not serialize access due to read/write dependencies among transactions"}
		assert.True(t, isSerializationFailure(pgErr))
		assert.True(t, isSerializationFailure(fmt.Errorf("commit failed: %w", pgErr)))
	})

	t.Run("ignores other database errors", func(t *testing.T) {
		assert.False(t, isSerializationFailure(nil))
		assert.False(t, isSerializationFailure(errors.New("connection refused")))
		assert.False(t, isSerializationFailure(&pgconn.PgError{Code: "23505"}))
	})
}
