package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resumecms/internal/publish/model"
	"resumecms/pkg/logger"
	"resumecms/store"

	"github.com/google/uuid"
)

// PostgresLedger stores snapshots in version_snapshots. content is a JSON
// column (not JSONB) so section key order is kept verbatim.
type PostgresLedger struct {
	DB *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{DB: db}
}

// EnsureSchema creates the snapshot table.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + snapshotTable + ` (
		id UUID PRIMARY KEY,
		content JSON NOT NULL,
		label TEXT,
		published_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		logger.Sugar.Errorf("Failed to create %s: %v", snapshotTable, err)
		return fmt.Errorf("create %s: %w", snapshotTable, err)
	}
	index := `CREATE INDEX IF NOT EXISTS version_snapshots_published_at_idx ON ` + snapshotTable + ` (published_at DESC)`
	if _, err := db.ExecContext(ctx, index); err != nil {
		logger.Sugar.Errorf("Failed to index %s: %v", snapshotTable, err)
		return fmt.Errorf("index %s: %w", snapshotTable, err)
	}
	return nil
}

func (r *PostgresLedger) Append(ctx context.Context, snap *model.Snapshot) (string, error) {
	content, err := json.Marshal(snap.Content)
	if err != nil {
		return "", fmt.Errorf("encode snapshot content: %w", err)
	}
	id := snap.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := `INSERT INTO version_snapshots (id, content, label, published_at) VALUES ($1, $2, $3, $4)`
	if _, err := store.Conn(ctx, r.DB).ExecContext(ctx, query, id, content, snap.Label, snap.PublishedAt); err != nil {
		logger.Sugar.Errorf("Failed to append snapshot: %v", err)
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	return id, nil
}

func (r *PostgresLedger) MostRecent(ctx context.Context) (*model.Snapshot, error) {
	query := `SELECT id, content, label, published_at FROM version_snapshots ORDER BY published_at DESC LIMIT 1`

	var (
		snap    model.Snapshot
		content []byte
		label   sql.NullString
	)
	err := store.Conn(ctx, r.DB).QueryRowContext(ctx, query).Scan(&snap.ID, &content, &label, &snap.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to read latest snapshot: %v", err)
		return nil, fmt.Errorf("select latest snapshot: %w", err)
	}

	snap.PublishedAt = snap.PublishedAt.UTC()
	snap.Content = model.NewSnapshotContent()
	if err := json.Unmarshal(content, snap.Content); err != nil {
		logger.Sugar.Errorf("Failed to decode snapshot %s: %v", snap.ID, err)
		return nil, err
	}
	if label.Valid {
		snap.Label = &label.String
	}
	return &snap, nil
}

func (r *PostgresLedger) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := store.Conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM version_snapshots`).Scan(&n); err != nil {
		logger.Sugar.Errorf("Failed to count snapshots: %v", err)
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}
