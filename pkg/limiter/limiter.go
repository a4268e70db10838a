package limiter

import (
	"context"
	"errors"
)

// ErrLimitReached 并发槽位已满
var ErrLimitReached = errors.New("并发限制已达到上限")

// Limiter 并发槽位限制器
type Limiter interface {
	Acquire(ctx context.Context, key string) error
	Release(ctx context.Context, key string)
}
