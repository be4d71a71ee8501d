package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same code", NewNotFoundError("balance", "no uatom entry"), ErrNotFound, true},
		{"different code", NewSignError("sign", "boom", nil), ErrNotFound, false},
		{"wrapped", fmt.Errorf("outer: %w", NewBroadcastError("broadcast", "rejected", nil)), ErrBroadcastFailed, true},
		{"plain error", stderrors.New("plain"), ErrRPC, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Is(tt.err, tt.target))
		})
	}
}

func TestError_Message(t *testing.T) {
	cause := stderrors.New("connection refused")

	err := NewRPCError("GetAccount", "query failed", cause).WithCoin("ATOM")
	assert.Equal(t, "[ATOM/GetAccount:RPC] query failed: connection refused", err.Error())
	assert.Same(t, cause, stderrors.Unwrap(err))

	bare := NewTimeoutError("", "gave up")
	assert.Equal(t, "[CONFIRMATION_TIMEOUT] gave up", bare.Error())
}

func TestWrapCode(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, WrapCode(nil, ErrCodeRPC, "op", "msg"))
	})

	t.Run("plain error gets code", func(t *testing.T) {
		err := WrapCode(stderrors.New("eof"), ErrCodeNetwork, "fetch", "request failed")
		require.Error(t, err)
		assert.Equal(t, ErrCodeNetwork, CodeOf(err))
	})

	t.Run("typed error keeps original code", func(t *testing.T) {
		orig := NewNotFoundError("validator", "unknown id")
		err := WrapCode(orig, ErrCodeRPC, "fetch", "request failed")
		assert.Equal(t, ErrCodeNotFound, CodeOf(err))
	})
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(NewRPCError("op", "unavailable", nil)))
	assert.True(t, IsRetryable(Wrap(NewNetworkError("op", "eof", nil), "ctx")))
	assert.False(t, IsRetryable(NewSignError("op", "bad key", nil)))
	assert.False(t, IsRetryable(stderrors.New("plain")))
}

func TestWithContext(t *testing.T) {
	err := NewBuildError("stake", "empty validator", nil).
		WithContext("format", "legacy").
		WithContext("attempt", 1)
	assert.Equal(t, "legacy", err.Context["format"])
	assert.Equal(t, 1, err.Context["attempt"])
}
