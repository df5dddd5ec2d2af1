package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SnapshotContent maps section name to that section's published payload.
// Keys keep insertion order through JSON encoding and decoding.
type SnapshotContent struct {
	m *orderedmap.OrderedMap[string, json.RawMessage]
}

func NewSnapshotContent() *SnapshotContent {
	return &SnapshotContent{m: orderedmap.New[string, json.RawMessage]()}
}

func (c *SnapshotContent) init() {
	if c.m == nil {
		c.m = orderedmap.New[string, json.RawMessage]()
	}
}

// Set stores payload under section. Re-setting a key keeps its position.
func (c *SnapshotContent) Set(section string, payload json.RawMessage) {
	c.init()
	c.m.Set(section, payload)
}

func (c *SnapshotContent) Get(section string) (json.RawMessage, bool) {
	if c == nil || c.m == nil {
		return nil, false
	}
	return c.m.Get(section)
}

func (c *SnapshotContent) Keys() []string {
	if c == nil || c.m == nil {
		return []string{}
	}
	keys := make([]string, 0, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func (c *SnapshotContent) Len() int {
	if c == nil || c.m == nil {
		return 0
	}
	return c.m.Len()
}

func (c *SnapshotContent) MarshalJSON() ([]byte, error) {
	if c == nil || c.m == nil || c.m.Len() == 0 {
		return []byte("{}"), nil
	}
	return c.m.MarshalJSON()
}

func (c *SnapshotContent) UnmarshalJSON(data []byte) error {
	c.m = orderedmap.New[string, json.RawMessage]()
	if err := c.m.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decode snapshot content: %w", err)
	}
	return nil
}

// Equal reports whether both mappings have the same keys in the same order
// with byte-equal compacted payloads.
func (c *SnapshotContent) Equal(other *SnapshotContent) bool {
	keys := c.Keys()
	if len(keys) != other.Len() {
		return false
	}
	for i, key := range other.Keys() {
		if keys[i] != key {
			return false
		}
		a, _ := c.Get(key)
		b, _ := other.Get(key)
		if !jsonEqual(a, b) {
			return false
		}
	}
	return true
}

func jsonEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// Snapshot is one immutable ledger entry.
type Snapshot struct {
	ID          string           `json:"id"`
	Content     *SnapshotContent `json:"content"`
	Label       *string          `json:"label"`
	PublishedAt time.Time        `json:"publishedAt"`
}

type PublishRequest struct {
	Label *string `json:"label"`
}

type PublishResult struct {
	VersionID         string    `json:"versionId"`
	PublishedAt       time.Time `json:"publishedAt"`
	SectionsPublished []string  `json:"sectionsPublished"`
}

// Status is null-safe: LastPublishedAt stays nil until the first publish.
type Status struct {
	LastPublishedAt *time.Time `json:"lastPublishedAt"`
	VersionCount    int64      `json:"versionCount"`
}
