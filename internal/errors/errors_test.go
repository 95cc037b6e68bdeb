package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customError struct {
	Msg string
}

func (e customError) Error() string { return e.Msg }

func TestWrap(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("Success_WrapNonNil", func(t *testing.T) {
		wrapped := Wrap(baseErr, "wrapped")
		require.Error(t, wrapped)
		assert.Equal(t, "wrapped: base error", wrapped.Error())
		assert.True(t, errors.Is(wrapped, baseErr))
	})

	t.Run("Success_WrapNil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "wrapped"))
	})
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrRateLimitExceeded, "endpoint %s", "/api/login")
	require.Error(t, wrapped)
	assert.Equal(t, "endpoint /api/login: rate limit exceeded", wrapped.Error())
	assert.True(t, Is(wrapped, ErrRateLimitExceeded))
	assert.NoError(t, Wrapf(nil, "ignored %d", 1))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrForbidden,
		ErrRateLimitExceeded,
		ErrEncryption,
		ErrPersistence,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestAs(t *testing.T) {
	err := Wrap(customError{Msg: "boom"}, "context")

	var target customError
	require.True(t, As(err, &target))
	assert.Equal(t, "boom", target.Msg)
}

func TestJoin(t *testing.T) {
	joined := Join(nil, ErrPersistence, nil, ErrEncryption)
	assert.True(t, Is(joined, ErrPersistence))
	assert.True(t, Is(joined, ErrEncryption))
	assert.NoError(t, Join(nil, nil))
}
