package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient returns nil for an empty addr, which callers treat as rate
// limiting disabled. An unreachable server is only logged; the limiter fails open.
func NewRedisClient(ctx context.Context, addr, password string, db int, logger *logrus.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil && logger != nil {
		logger.WithError(err).WithField("addr", addr).Warn("redis unreachable; requests will not be rate limited")
	}
	return rdb
}
