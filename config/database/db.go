package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"resumecms/config"
	"resumecms/pkg/logger"

	_ "github.com/lib/pq"
)

var (
	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

// Connect opens the Postgres pool and pings it, retrying a few times for
// transient DNS or network failures.
func Connect(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := ping(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Sugar.Info("Successfully connected to the database")
	return db, nil
}

func ping(ctx context.Context, db *sql.DB) error {
	var err error
	for i := 0; i < connectAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", retryDelay, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return fmt.Errorf("could not connect to database after %d attempts: %w", connectAttempts, err)
}
