package limiter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiter(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLimiter(2)

	require.NoError(t, l.Acquire(ctx, "backend"))
	require.NoError(t, l.Acquire(ctx, "backend"))
	assert.True(t, errors.Is(l.Acquire(ctx, "backend"), ErrLimitReached))

	// 不同key互不影响
	assert.NoError(t, l.Acquire(ctx, "other"))

	l.Release(ctx, "backend")
	assert.NoError(t, l.Acquire(ctx, "backend"))
	assert.ErrorIs(t, l.Acquire(ctx, "backend"), ErrLimitReached)

	// 多余的释放不会让计数变成负数
	l.Release(ctx, "backend")
	l.Release(ctx, "backend")
	l.Release(ctx, "backend")
	require.NoError(t, l.Acquire(ctx, "backend"))
	require.NoError(t, l.Acquire(ctx, "backend"))
	assert.ErrorIs(t, l.Acquire(ctx, "backend"), ErrLimitReached)
}

func TestLocalLimiter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLocalLimiter(1).Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

var _ Limiter = (*LocalLimiter)(nil)
var _ Limiter = (*RedisLimiter)(nil)
