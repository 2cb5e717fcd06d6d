package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"backend-numeneon/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

var connectRetry = RetryConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	Multiplier:      1.5,
}

var newPoolFn = pgxpool.New

var pingPoolFn = func(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

func ConnectPostgres(cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := newPoolFn(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	err = Retry(ctx, "postgres ping", func() error {
		return pingPoolFn(ctx, pool)
	}, connectRetry)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Retry runs op with exponential backoff until it succeeds, the retries are
// exhausted or ctx is done.
func Retry(ctx context.Context, name string, op func() error, cfg RetryConfig) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	if cfg.Multiplier > 0 {
		bo.Multiplier = cfg.Multiplier
	}
	bo.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, cfg.MaxRetries), ctx)
	notify := func(err error, next time.Duration) {
		slog.Warn("operation failed, retrying",
			"operation", name,
			"error", err,
			"next_attempt_in", next.Round(time.Millisecond).String(),
		)
	}
	return backoff.RetryNotify(op, policy, notify)
}
