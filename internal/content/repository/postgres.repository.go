package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"resumecms/internal/content/model"
	"resumecms/pkg/logger"
	"resumecms/store"

	"github.com/google/uuid"
)

// PostgresStore keeps one section in its own table. UNIQUE(content_state)
// enforces at most one document per state.
type PostgresStore[P any] struct {
	DB      *sql.DB
	section model.Section
	table   string
	now     func() time.Time
}

func NewPostgresStore[P any](db *sql.DB, section model.Section) *PostgresStore[P] {
	return &PostgresStore[P]{DB: db, section: section, table: CollectionName(section), now: time.Now}
}

func NewPostgresStores(db *sql.DB) Stores {
	return Stores{
		Hero:           NewPostgresStore[model.Hero](db, model.SectionHero),
		Experiences:    NewPostgresStore[model.Experiences](db, model.SectionExperiences),
		Projects:       NewPostgresStore[model.Projects](db, model.SectionProjects),
		Education:      NewPostgresStore[model.Educations](db, model.SectionEducation),
		Skills:         NewPostgresStore[model.Skills](db, model.SectionSkills),
		Certifications: NewPostgresStore[model.Certifications](db, model.SectionCertifications),
		SocialLinks:    NewPostgresStore[model.SocialLinks](db, model.SectionSocialLinks),
	}
}

// EnsureSchema creates the section tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, section := range model.SectionOrder {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			content_state TEXT NOT NULL UNIQUE CHECK (content_state IN ('DRAFT', 'PUBLISHED')),
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`, CollectionName(section))
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			logger.Sugar.Errorf("Failed to create table for %s: %v", section, err)
			return fmt.Errorf("create %s table: %w", section, err)
		}
	}
	return nil
}

func (r *PostgresStore[P]) FindByState(ctx context.Context, state model.ContentState) (*model.Document[P], error) {
	query := fmt.Sprintf(`SELECT id, content_state, payload, created_at, updated_at FROM %s
		WHERE content_state = $1 ORDER BY updated_at DESC`, r.table)
	rows, err := store.Conn(ctx, r.DB).QueryContext(ctx, query, string(state))
	if err != nil {
		logger.Sugar.Errorf("Failed to find %s %s: %v", r.section, state, err)
		return nil, fmt.Errorf("find %s %s: %w", r.section, state, err)
	}
	defer rows.Close()

	var docs []*model.Document[P]
	for rows.Next() {
		var (
			doc     model.Document[P]
			st      string
			payload []byte
		)
		if err := rows.Scan(&doc.ID, &st, &payload, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			logger.Sugar.Errorf("Failed to scan %s row: %v", r.section, err)
			return nil, fmt.Errorf("scan %s: %w", r.section, err)
		}
		doc.ContentState = model.ContentState(st)
		doc.CreatedAt = doc.CreatedAt.UTC()
		doc.UpdatedAt = doc.UpdatedAt.UTC()
		if err := json.Unmarshal(payload, &doc.Payload); err != nil {
			logger.Sugar.Errorf("Failed to decode %s payload %s: %v", r.section, doc.ID, err)
			return nil, fmt.Errorf("decode %s payload: %w", r.section, err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.section, err)
	}
	return pickLatest(r.section, state, docs), nil
}

func (r *PostgresStore[P]) Save(ctx context.Context, doc *model.Document[P]) (*model.Document[P], error) {
	payload, err := json.Marshal(doc.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", r.section, err)
	}
	out := *doc
	now := r.now().UTC()
	conn := store.Conn(ctx, r.DB)

	if out.ID == "" {
		out.ID = uuid.New().String()
		out.CreatedAt = now
		out.UpdatedAt = now
		query := fmt.Sprintf(`INSERT INTO %s (id, content_state, payload, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`, r.table)
		if _, err := conn.ExecContext(ctx, query, out.ID, string(out.ContentState), payload, out.CreatedAt, out.UpdatedAt); err != nil {
			logger.Sugar.Errorf("Failed to insert %s %s: %v", r.section, out.ContentState, err)
			return nil, fmt.Errorf("insert %s: %w", r.section, err)
		}
		return &out, nil
	}

	out.UpdatedAt = now
	query := fmt.Sprintf(`UPDATE %s SET payload = $1, updated_at = $2 WHERE id = $3`, r.table)
	result, err := conn.ExecContext(ctx, query, payload, out.UpdatedAt, out.ID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update %s %s: %v", r.section, out.ID, err)
		return nil, fmt.Errorf("update %s: %w", r.section, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("update %s document %s: not found", r.section, out.ID)
	}
	return &out, nil
}

func (r *PostgresStore[P]) Delete(ctx context.Context, doc *model.Document[P]) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	if _, err := store.Conn(ctx, r.DB).ExecContext(ctx, query, doc.ID); err != nil {
		logger.Sugar.Errorf("Failed to delete %s %s: %v", r.section, doc.ID, err)
		return fmt.Errorf("delete %s: %w", r.section, err)
	}
	return nil
}
