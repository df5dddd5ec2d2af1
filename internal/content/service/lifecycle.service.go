package service

import (
	"context"

	"resumecms/internal/content/model"
	"resumecms/internal/content/repository"
)

// Lifecycle is the DRAFT/PUBLISHED policy for one section. Only
// GetOrCreateDraft creates documents lazily; PUBLISHED documents come from
// the publish pipeline alone.
type Lifecycle[P any] struct {
	section model.Section
	store   repository.SectionStore[P]
	empty   func() P
}

func NewLifecycle[P any](section model.Section, store repository.SectionStore[P], empty func() P) *Lifecycle[P] {
	return &Lifecycle[P]{section: section, store: store, empty: empty}
}

func (l *Lifecycle[P]) Section() model.Section { return l.section }

func (l *Lifecycle[P]) Store() repository.SectionStore[P] { return l.store }

// Empty returns the canonical empty payload for the section.
func (l *Lifecycle[P]) Empty() P { return l.empty() }

func (l *Lifecycle[P]) GetDraft(ctx context.Context) (*model.Document[P], error) {
	return l.store.FindByState(ctx, model.Draft)
}

func (l *Lifecycle[P]) GetPublished(ctx context.Context) (*model.Document[P], error) {
	return l.store.FindByState(ctx, model.Published)
}

func (l *Lifecycle[P]) GetOrCreateDraft(ctx context.Context) (*model.Document[P], error) {
	draft, err := l.store.FindByState(ctx, model.Draft)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		return draft, nil
	}
	return l.store.Save(ctx, &model.Document[P]{ContentState: model.Draft, Payload: l.empty()})
}

// ReplaceDraft overwrites the whole DRAFT payload, creating the DRAFT if needed.
func (l *Lifecycle[P]) ReplaceDraft(ctx context.Context, payload P) (*model.Document[P], error) {
	draft, err := l.GetOrCreateDraft(ctx)
	if err != nil {
		return nil, err
	}
	draft.Payload = payload
	return l.store.Save(ctx, draft)
}
