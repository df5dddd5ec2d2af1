package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"resumecms/internal/publish/model"

	"github.com/google/uuid"
)

// Ledger is the append-only version snapshot store.
type Ledger interface {
	// Append stores snap and returns its identity. A snapshot without an ID
	// gets a new one.
	Append(ctx context.Context, snap *model.Snapshot) (string, error)
	// MostRecent returns the latest snapshot by publishedAt, or nil when the
	// ledger is empty.
	MostRecent(ctx context.Context) (*model.Snapshot, error)
	Count(ctx context.Context) (int64, error)
}

const snapshotTable = "version_snapshots"

// MemoryLedger keeps snapshots in process memory.
type MemoryLedger struct {
	mu        sync.RWMutex
	snapshots []model.Snapshot
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (l *MemoryLedger) Append(ctx context.Context, snap *model.Snapshot) (string, error) {
	stored, err := copySnapshot(snap)
	if err != nil {
		return "", err
	}
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshots = append(l.snapshots, stored)
	return stored.ID, nil
}

// MostRecent breaks publishedAt ties in favour of the later append.
func (l *MemoryLedger) MostRecent(ctx context.Context) (*model.Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	latest := -1
	for i := range l.snapshots {
		if latest < 0 || !l.snapshots[i].PublishedAt.Before(l.snapshots[latest].PublishedAt) {
			latest = i
		}
	}
	if latest < 0 {
		return nil, nil
	}
	out, err := copySnapshot(&l.snapshots[latest])
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *MemoryLedger) Count(ctx context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.snapshots)), nil
}

func copySnapshot(snap *model.Snapshot) (model.Snapshot, error) {
	out := *snap
	if snap.Label != nil {
		label := *snap.Label
		out.Label = &label
	}
	raw, err := json.Marshal(snap.Content)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("encode snapshot content: %w", err)
	}
	out.Content = model.NewSnapshotContent()
	if err := json.Unmarshal(raw, out.Content); err != nil {
		return model.Snapshot{}, err
	}
	return out, nil
}
