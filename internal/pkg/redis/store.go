package redis

import (
	"context"
	"time"
)

// Locker 基于 SETNX 的分布式锁，供同步任务防止重入
type Locker struct {
	retryTimes int
}

func NewLocker() *Locker {
	return &Locker{retryTimes: 1}
}

func (l *Locker) TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	return TryLock(ctx, key, owner, ttl, l.retryTimes)
}

func (l *Locker) UnLock(ctx context.Context, key, owner string) {
	UnLock(ctx, key, owner)
}

// Cache 字符串缓存，键不存在时 Get 返回空串
type Cache struct{}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	return GetValue(ctx, key)
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return SetWithExpiration(ctx, key, value, ttl)
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return DeleteKey(ctx, keys...)
}
