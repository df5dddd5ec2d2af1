package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"resumecms/internal/content/model"
	"resumecms/pkg/logger"

	"github.com/google/uuid"
)

// ErrStateTaken is returned when an insert would create a second document
// for a state that already has one.
var ErrStateTaken = errors.New("content state already has a document")

// MemoryStore keeps section documents in process. Documents are copied on the
// way in and out so callers never share memory with the store.
type MemoryStore[P any] struct {
	section model.Section
	mu      sync.RWMutex
	docs    map[string]*model.Document[P]
	now     func() time.Time
}

func NewMemoryStore[P any](section model.Section) *MemoryStore[P] {
	return &MemoryStore[P]{
		section: section,
		docs:    make(map[string]*model.Document[P]),
		now:     time.Now,
	}
}

func NewMemoryStores() Stores {
	return Stores{
		Hero:           NewMemoryStore[model.Hero](model.SectionHero),
		Experiences:    NewMemoryStore[model.Experiences](model.SectionExperiences),
		Projects:       NewMemoryStore[model.Projects](model.SectionProjects),
		Education:      NewMemoryStore[model.Educations](model.SectionEducation),
		Skills:         NewMemoryStore[model.Skills](model.SectionSkills),
		Certifications: NewMemoryStore[model.Certifications](model.SectionCertifications),
		SocialLinks:    NewMemoryStore[model.SocialLinks](model.SectionSocialLinks),
	}
}

func (s *MemoryStore[P]) FindByState(ctx context.Context, state model.ContentState) (*model.Document[P], error) {
	s.mu.RLock()
	var matches []*model.Document[P]
	for _, doc := range s.docs {
		if doc.ContentState == state {
			matches = append(matches, doc)
		}
	}
	s.mu.RUnlock()

	found := pickLatest(s.section, state, matches)
	if found == nil {
		return nil, nil
	}
	return copyDocument(found)
}

func (s *MemoryStore[P]) Save(ctx context.Context, doc *model.Document[P]) (*model.Document[P], error) {
	stored, err := copyDocument(doc)
	if err != nil {
		logger.Sugar.Errorf("Failed to copy %s document: %v", s.section, err)
		return nil, err
	}

	s.mu.Lock()
	now := s.now().UTC()
	if stored.ID == "" {
		for _, existing := range s.docs {
			if existing.ContentState == stored.ContentState {
				s.mu.Unlock()
				logger.Sugar.Errorf("Failed to insert %s document: %s already exists", s.section, stored.ContentState)
				return nil, fmt.Errorf("insert %s %s: %w", s.section, stored.ContentState, ErrStateTaken)
			}
		}
		stored.ID = uuid.New().String()
		stored.CreatedAt = now
	} else if existing, ok := s.docs[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		s.mu.Unlock()
		return nil, fmt.Errorf("update %s document %s: not found", s.section, stored.ID)
	}
	stored.UpdatedAt = now
	s.docs[stored.ID] = stored
	s.mu.Unlock()

	return copyDocument(stored)
}

func (s *MemoryStore[P]) Delete(ctx context.Context, doc *model.Document[P]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, doc.ID)
	return nil
}

// Len reports how many documents the store holds.
func (s *MemoryStore[P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func copyDocument[P any](doc *model.Document[P]) (*model.Document[P], error) {
	b, err := json.Marshal(doc.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	out := *doc
	var payload P
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	out.Payload = payload
	return &out, nil
}
