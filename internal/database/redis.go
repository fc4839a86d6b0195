package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/config"
)

// NewRedisClient connects to the Redis instance behind the paper cache,
// the auth rate limiter and the response retry queue.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)

	err = retry(ctx, connectAttempts, connectBackoff, func() error { return rdb.Ping(ctx).Err() }, func(attempt int, err error) {
		log.Warn().Err(err).Int("attempt", attempt).Msg("Redis not ready")
	})
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().Str("addr", opt.Addr).Int("db", opt.DB).Msg("Redis connected")
	return rdb, nil
}

// RedisCheck adapts a client to a health probe.
func RedisCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
