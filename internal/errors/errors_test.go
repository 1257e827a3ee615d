package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, ErrCodeInternal, "wrapped")
	assert.Equal(t, "wrapped: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := Internal("plain")
	assert.Equal(t, "plain", bare.Error())
	assert.NoError(t, bare.Unwrap())
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("x")))
	assert.True(t, IsValidation(ValidationField("f", "x")))
	assert.True(t, IsPermissions(Permissions("x", nil)))
	assert.True(t, IsInternal(Internalf("x %d", 1)))
	assert.False(t, IsNotFound(Internal("x")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestPredicates_WrappedChain(t *testing.T) {
	inner := NotFound("missing")
	outer := fmt.Errorf("outer: %w", inner)
	assert.True(t, IsNotFound(outer))
	assert.Equal(t, ErrCodeNotFound, GetCode(outer))
}

func TestGetField(t *testing.T) {
	assert.Equal(t, "role", GetField(ValidationField("role", "bad")))
	assert.Empty(t, GetField(errors.New("plain")))
}

func TestWrap_NilErr(t *testing.T) {
	require.Nil(t, Wrap(nil, ErrCodeInternal, "x"))
	require.Nil(t, Wrapf(nil, ErrCodeInternal, "x %d", 1))
}
