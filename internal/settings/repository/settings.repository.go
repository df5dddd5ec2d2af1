package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"resumecms/internal/settings/model"

	"github.com/google/uuid"
)

const settingsTable = "site_settings"

// Store persists the settings document. Find returns nil, nil when none
// exists yet. Save inserts when ID is empty and updates otherwise.
type Store interface {
	Find(ctx context.Context) (*model.SiteSettings, error)
	Save(ctx context.Context, settings *model.SiteSettings) (*model.SiteSettings, error)
}

type MemoryStore struct {
	mu      sync.RWMutex
	current *model.SiteSettings
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Find(ctx context.Context) (*model.SiteSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, nil
	}
	return copySettings(s.current)
}

func (s *MemoryStore) Save(ctx context.Context, settings *model.SiteSettings) (*model.SiteSettings, error) {
	stored, err := copySettings(settings)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	switch {
	case stored.ID == "" && s.current != nil:
		return nil, fmt.Errorf("insert settings: document %s already exists", s.current.ID)
	case stored.ID == "":
		stored.ID = uuid.New().String()
		stored.CreatedAt = now
	case s.current == nil || s.current.ID != stored.ID:
		return nil, fmt.Errorf("update settings %s: not found", stored.ID)
	default:
		stored.CreatedAt = s.current.CreatedAt
	}
	stored.UpdatedAt = now
	s.current = stored
	return copySettings(stored)
}

func copySettings(in *model.SiteSettings) (*model.SiteSettings, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	var out model.SiteSettings
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &out, nil
}
