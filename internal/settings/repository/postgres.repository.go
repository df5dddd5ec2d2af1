package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resumecms/internal/settings/model"
	"resumecms/pkg/logger"
	"resumecms/store"

	"github.com/google/uuid"
)

// settingsRow is the JSONB body of a site_settings row.
type settingsRow struct {
	SupportedLocales     []string        `json:"supportedLocales"`
	DefaultLocale        string          `json:"defaultLocale"`
	PdfSectionVisibility map[string]bool `json:"pdfSectionVisibility"`
}

type PostgresStore struct {
	DB  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db, now: time.Now}
}

// EnsureSchema creates the site_settings table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS site_settings (
		id UUID PRIMARY KEY,
		settings JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		logger.Sugar.Errorf("Failed to create %s table: %v", settingsTable, err)
		return fmt.Errorf("create %s table: %w", settingsTable, err)
	}
	return nil
}

func (r *PostgresStore) Find(ctx context.Context) (*model.SiteSettings, error) {
	query := `SELECT id, settings, created_at, updated_at FROM site_settings ORDER BY created_at LIMIT 1`

	var (
		out  model.SiteSettings
		body []byte
	)
	err := store.Conn(ctx, r.DB).QueryRowContext(ctx, query).Scan(&out.ID, &body, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to read settings: %v", err)
		return nil, fmt.Errorf("select settings: %w", err)
	}

	var row settingsRow
	if err := json.Unmarshal(body, &row); err != nil {
		logger.Sugar.Errorf("Failed to decode settings %s: %v", out.ID, err)
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	out.SupportedLocales = row.SupportedLocales
	out.DefaultLocale = row.DefaultLocale
	out.PdfSectionVisibility = row.PdfSectionVisibility
	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()
	return &out, nil
}

func (r *PostgresStore) Save(ctx context.Context, settings *model.SiteSettings) (*model.SiteSettings, error) {
	body, err := json.Marshal(settingsRow{
		SupportedLocales:     settings.SupportedLocales,
		DefaultLocale:        settings.DefaultLocale,
		PdfSectionVisibility: settings.PdfSectionVisibility,
	})
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	out := *settings
	now := r.now().UTC()
	conn := store.Conn(ctx, r.DB)

	if out.ID == "" {
		out.ID = uuid.New().String()
		out.CreatedAt = now
		out.UpdatedAt = now
		query := `INSERT INTO site_settings (id, settings, created_at, updated_at) VALUES ($1, $2, $3, $4)`
		if _, err := conn.ExecContext(ctx, query, out.ID, body, out.CreatedAt, out.UpdatedAt); err != nil {
			logger.Sugar.Errorf("Failed to insert settings: %v", err)
			return nil, fmt.Errorf("insert settings: %w", err)
		}
		return &out, nil
	}

	out.UpdatedAt = now
	query := `UPDATE site_settings SET settings = $1, updated_at = $2 WHERE id = $3`
	result, err := conn.ExecContext(ctx, query, body, out.UpdatedAt, out.ID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update settings %s: %v", out.ID, err)
		return nil, fmt.Errorf("update settings: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("update settings %s: not found", out.ID)
	}
	return &out, nil
}
