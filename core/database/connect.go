package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/fitbot/core/logger"
)

const retryEvery = 2 * time.Second

// Connect opens a pooled connection, retrying until the server answers a
// ping or cfg.ConnectTimeout passes.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, cfg.connectTimeout())
	defer cancel()

	attempts := 0
	for {
		attempts++
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
		if err == nil {
			size := cfg.poolSize()
			db.SetMaxOpenConns(size)
			db.SetMaxIdleConns(size)
			db.SetConnMaxIdleTime(5 * time.Minute)
			logger.DB.Info("db connected",
				slog.String("event", "db.connect"),
				slog.String("status", "ok"),
				slog.String("host", cfg.Host),
				slog.String("port", cfg.Port),
				slog.String("db", cfg.Name),
				slog.Int("pool_open", size),
				slog.Int("attempts", attempts),
				slog.Duration("duration", logger.Took(start)),
			)
			return db, nil
		}

		logger.DB.Debug("db not ready",
			slog.String("event", "db.connect"),
			slog.String("status", "retry"),
			slog.Int("attempts", attempts),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			logger.DB.Error("db connect failed",
				slog.String("event", "db.connect"),
				slog.String("status", "fail"),
				slog.String("host", cfg.Host),
				slog.String("db", cfg.Name),
				slog.Int("attempts", attempts),
				slog.Duration("duration", logger.Took(start)),
				slog.String("err", err.Error()),
			)
			return nil, fmt.Errorf("db connect: %w", err)
		case <-time.After(retryEvery):
		}
	}
}
