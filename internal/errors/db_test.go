package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapDBError_Nil(t *testing.T) {
	assert.NoError(t, MapDBError(nil))
}

func TestMapDBError_ContextErrors(t *testing.T) {
	assert.True(t, IsTimeout(MapDBError(context.DeadlineExceeded)))
	assert.True(t, IsCanceled(MapDBError(context.Canceled)))
}

func TestMapDBError_NoRows(t *testing.T) {
	assert.True(t, IsNotFound(MapDBError(pgx.ErrNoRows)))
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:   pgerrcode.UniqueViolation,
		Detail: "Key (user_id)=(u1) already exists.",
	}
	err := MapDBError(pgErr)
	assert.True(t, IsConflict(err))
	assert.Equal(t, "user_id", GetField(err))
}

func TestMapDBError_ForeignKeyAndCheck(t *testing.T) {
	assert.True(t, IsValidation(MapDBError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})))
	assert.True(t, IsValidation(MapDBError(&pgconn.PgError{Code: pgerrcode.CheckViolation})))
	assert.True(t, IsValidation(MapDBError(&pgconn.PgError{Code: pgerrcode.NotNullViolation})))
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	assert.True(t, IsInternal(MapDBError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})))
}

func TestMapDBError_PassThrough(t *testing.T) {
	plain := errors.New("plain")
	assert.Equal(t, plain, MapDBError(plain))
}
