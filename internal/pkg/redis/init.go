package redis

import (
	"InsightLedger/internal/api/config"
	"InsightLedger/internal/pkg/consts"
	"InsightLedger/internal/pkg/logger"
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

var Rdb *redis.Client

// InitRedis 初始化 Redis 客户端连接
func InitRedis(cfg config.RedisConfig) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,

		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return err
	}

	rdb.AddHook(logger.NewRedisLogger(consts.MetaAccessTokenKey))
	Rdb = rdb
	return nil
}

// Close 关闭连接，未初始化时什么也不做
func Close() error {
	if Rdb == nil {
		return nil
	}
	return Rdb.Close()
}
