// Package database opens the shop's PostgreSQL handle and keeps the schema
// current through file-based migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"log/slog"

	"github.com/m3rciful/storebot/core/logger"
)

// Connect opens the connection, sizes the pool, and verifies connectivity.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	target := []slog.Attr{
		slog.String("driver", "postgres"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
	}

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	took := logger.RoundMS(time.Since(start))
	if err != nil {
		logger.DB.LogAttrs(ctx, slog.LevelError, "db connect failed",
			append([]slog.Attr{slog.String("event", "db.connect")},
				append(target,
					slog.Duration("duration", took),
					slog.String("err", err.Error()),
				)...)...,
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		logger.DB.LogAttrs(ctx, slog.LevelError, "db ping failed",
			append([]slog.Attr{slog.String("event", "db.ping")},
				append(target, slog.String("err", pingErr.Error()))...)...,
		)
		return nil, fmt.Errorf("db ping: %w", pingErr)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)
	logger.DB.Debug("db pool configured",
		slog.String("event", "db.pool"),
		slog.Int("pool_open", cfg.MaxConnections),
	)

	logger.DB.LogAttrs(ctx, slog.LevelInfo, "db connected",
		append([]slog.Attr{slog.String("event", "db.connect")},
			append(target,
				slog.Int("pool_open", cfg.MaxConnections),
				slog.Duration("duration", took),
			)...)...,
	)
	return db, nil
}

// WaitForPostgres polls the database until it answers a ping or the timeout
// expires. Container setups routinely start the bot before the database.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		}
		time.Sleep(2 * time.Second)
	}
}
