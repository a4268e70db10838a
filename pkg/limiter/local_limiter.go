package limiter

import (
	"context"
	"sync"
)

// LocalLimiter 进程内并发限制器，每个key独立计数，满时立即返回 ErrLimitReached
type LocalLimiter struct {
	maxConcurrent int
	mu            sync.Mutex
	slots         map[string]int
}

// NewLocalLimiter 创建进程内并发限制器
func NewLocalLimiter(maxConcurrent int) *LocalLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &LocalLimiter{
		maxConcurrent: maxConcurrent,
		slots:         make(map[string]int),
	}
}

// Acquire 获取并发槽位
func (l *LocalLimiter) Acquire(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.slots[key] >= l.maxConcurrent {
		return ErrLimitReached
	}
	l.slots[key]++
	return nil
}

// Release 释放并发槽位
func (l *LocalLimiter) Release(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.slots[key] <= 1 {
		delete(l.slots, key)
		return
	}
	l.slots[key]--
}
