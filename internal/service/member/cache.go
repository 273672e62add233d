package member

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kapu/hololive-member-sync/internal/constants"
	"github.com/kapu/hololive-member-sync/pkg/errors"
)

// CacheInvalidator drops the bot's cached member lookups after a sync has
// persisted new names, so the bot reloads them from PostgreSQL.
type CacheInvalidator struct {
	redis   *redis.Client
	pattern string
	logger  *zap.Logger
}

func NewCacheInvalidator(client *redis.Client, logger *zap.Logger) *CacheInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidator{
		redis:   client,
		pattern: constants.CacheKeys.MemberPattern,
		logger:  logger,
	}
}

// InvalidateAll deletes every key matching the member pattern and returns
// how many were removed. Without a client it does nothing.
func (c *CacheInvalidator) InvalidateAll(ctx context.Context) (int, error) {
	if c == nil || c.redis == nil {
		return 0, nil
	}

	deleted := 0
	iter := c.redis.Scan(ctx, 0, c.pattern, constants.RedisConfig.ScanCount).Iterator()
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, errors.NewStoreError("failed to delete cached member", "redis", "del", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, errors.NewStoreError("failed to invalidate redis cache", "redis", "scan", err)
	}

	c.logger.Info("Member cache invalidated", zap.String("pattern", c.pattern), zap.Int("keys", deleted))
	return deleted, nil
}

// NewRedisClient connects and pings, like the bot does at startup.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, constants.RedisConfig.ReadyTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewStoreError("failed to connect to redis", "redis", "ping", err)
	}
	return client, nil
}
