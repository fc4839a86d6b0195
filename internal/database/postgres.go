package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/config"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// NewPostgresPool opens the exam store pool and waits for the database to
// answer a ping, retrying a few times while it starts up.
func NewPostgresPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxDBConns
	poolCfg.MinConns = cfg.MinDBConns
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	err = retry(ctx, connectAttempts, connectBackoff, func() error { return pool.Ping(ctx) }, func(attempt int, err error) {
		log.Warn().Err(err).Int("attempt", attempt).Msg("PostgreSQL not ready")
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Int32("max_conns", cfg.MaxDBConns).
		Msg("PostgreSQL connected")
	return pool, nil
}

// retry calls fn until it succeeds, attempts run out or ctx ends.
func retry(ctx context.Context, attempts int, backoff time.Duration, fn func() error, onFail func(int, error)) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		onFail(i, err)

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}
