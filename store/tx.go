// Package store is the transaction boundary shared by the SQL and Mongo
// repositories. Repositories never begin transactions themselves; they pick
// up whatever transaction the caller bound to the context.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"resumecms/pkg/logger"
)

// Executor is satisfied by both *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Conn returns the transaction bound to ctx, or db when there is none.
func Conn(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// Transactor runs fn as one unit of work. Implementations that cannot
// provide atomicity run fn directly and leave partial effects on failure.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoTx runs fn without any transaction.
type NoTx struct{}

func (NoTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SQLTx wraps fn in BEGIN/COMMIT and rolls back when fn fails.
type SQLTx struct {
	DB *sql.DB
}

func (t SQLTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		logger.Sugar.Errorf("Failed to begin transaction: %v", err)
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Sugar.Errorf("Failed to roll back transaction: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		logger.Sugar.Errorf("Failed to commit transaction: %v", err)
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// MongoTx runs fn inside a session transaction. Requires a replica set.
type MongoTx struct {
	Client SessionStarter
}

func (t MongoTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.Client.StartSession()
	if err != nil {
		logger.Sugar.Errorf("Failed to start mongo session: %v", err)
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}
