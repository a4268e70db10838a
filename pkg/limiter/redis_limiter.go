package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// 当前值未达上限时加一并刷新过期时间，返回新值；否则返回上限+1表示失败
var acquireScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return current + 1
end
local newCount = redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[2]))
return newCount`)

// 计数减一，归零时删除key
var releaseScript = redis.NewScript(`
local count = redis.call('DECR', KEYS[1])
if tonumber(count) <= 0 then
	redis.call('DEL', KEYS[1])
	return 0
end
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[1]))
return count`)

// RedisLimiter 基于Redis的并发限制器，多个实例共享同一后端的槽位
type RedisLimiter struct {
	client        *redis.Client
	maxConcurrent int
	keyPrefix     string
	ttl           time.Duration
	logger        logrus.FieldLogger
}

// NewRedisLimiter 创建基于Redis的并发限制器
func NewRedisLimiter(client *redis.Client, maxConcurrent int, keyPrefix string, ttl time.Duration, logger logrus.FieldLogger) *RedisLimiter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisLimiter{
		client:        client,
		maxConcurrent: maxConcurrent,
		keyPrefix:     keyPrefix,
		ttl:           ttl,
		logger:        logger,
	}
}

// Acquire 获取并发槽位
func (rl *RedisLimiter) Acquire(ctx context.Context, key string) error {
	result, err := acquireScript.Run(ctx, rl.client, []string{rl.keyPrefix + key}, rl.maxConcurrent, int(rl.ttl.Seconds())).Int()
	if err != nil {
		return fmt.Errorf("执行Lua脚本失败: %w", err)
	}

	if result > rl.maxConcurrent {
		rl.logger.WithFields(logrus.Fields{
			"key":     key,
			"current": result - 1,
			"max":     rl.maxConcurrent,
		}).Warn("并发槽位已满")
		return ErrLimitReached
	}

	rl.logger.WithFields(logrus.Fields{"key": key, "current": result}).Debug("获取并发槽位")
	return nil
}

// Release 释放并发槽位
func (rl *RedisLimiter) Release(ctx context.Context, key string) {
	count, err := releaseScript.Run(ctx, rl.client, []string{rl.keyPrefix + key}, int(rl.ttl.Seconds())).Int()
	if err != nil {
		rl.logger.WithError(err).Error("释放并发槽位失败")
		return
	}
	rl.logger.WithFields(logrus.Fields{"key": key, "remaining": count}).Debug("释放并发槽位")
}
