package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	contentmodel "resumecms/internal/content/model"
	contentservice "resumecms/internal/content/service"
	"resumecms/pkg/logger"
)

// ErrCloneFailed marks a draft payload that could not be copied for publishing.
var ErrCloneFailed = errors.New("could not copy draft content")

// Cloner returns a structurally independent copy of a payload.
type Cloner[P any] func(P) (P, error)

// DeepCopy clones a payload through its JSON form, so the copy shares no
// maps or slices with the source.
func DeepCopy[P any](src P) (P, error) {
	var dst P
	raw, err := json.Marshal(src)
	if err != nil {
		return dst, err
	}
	if err := json.Unmarshal(raw, &dst); err != nil {
		return dst, err
	}
	return dst, nil
}

// Stage is one section's step in the publish pipeline, with the payload
// type erased so the orchestrator can walk all sections in order.
type Stage interface {
	Name() contentmodel.Section
	// Promote replaces the PUBLISHED document with a copy of the DRAFT, or
	// with the empty payload when there is no DRAFT.
	Promote(ctx context.Context) error
	// Project returns the PUBLISHED payload without identity, state or
	// timestamps.
	Project(ctx context.Context) (json.RawMessage, error)
	// Draft returns the DRAFT payload, or nil when no DRAFT exists.
	Draft(ctx context.Context) (json.RawMessage, error)
}

type sectionStage[P any] struct {
	lifecycle *contentservice.Lifecycle[P]
	clone     Cloner[P]
}

// NewStage builds the stage for one section. A nil clone uses DeepCopy.
func NewStage[P any](lifecycle *contentservice.Lifecycle[P], clone Cloner[P]) Stage {
	if clone == nil {
		clone = DeepCopy[P]
	}
	return &sectionStage[P]{lifecycle: lifecycle, clone: clone}
}

func (s *sectionStage[P]) Name() contentmodel.Section { return s.lifecycle.Section() }

func (s *sectionStage[P]) Promote(ctx context.Context) error {
	draft, err := s.lifecycle.GetDraft(ctx)
	if err != nil {
		return fmt.Errorf("read draft: %w", err)
	}
	published, err := s.lifecycle.GetPublished(ctx)
	if err != nil {
		return fmt.Errorf("read published: %w", err)
	}
	if published != nil {
		if err := s.lifecycle.Store().Delete(ctx, published); err != nil {
			return fmt.Errorf("delete published: %w", err)
		}
	}

	payload := s.lifecycle.Empty()
	if draft != nil {
		payload, err = s.clone(draft.Payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCloneFailed, err)
		}
	}
	doc := &contentmodel.Document[P]{ContentState: contentmodel.Published, Payload: payload}
	if _, err := s.lifecycle.Store().Save(ctx, doc); err != nil {
		return fmt.Errorf("insert published: %w", err)
	}
	return nil
}

func (s *sectionStage[P]) Project(ctx context.Context) (json.RawMessage, error) {
	published, err := s.lifecycle.GetPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("read published: %w", err)
	}
	payload := s.lifecycle.Empty()
	if published != nil {
		payload = published.Payload
	} else {
		logger.Sugar.Warnw("Published document missing after promote", "section", s.Name())
	}
	return json.Marshal(payload)
}

func (s *sectionStage[P]) Draft(ctx context.Context) (json.RawMessage, error) {
	draft, err := s.lifecycle.GetDraft(ctx)
	if err != nil || draft == nil {
		return nil, err
	}
	return json.Marshal(draft.Payload)
}

// Stages returns one stage per section in SectionOrder, all cloning with
// DeepCopy.
func Stages(reg *contentservice.Registry) []Stage {
	return []Stage{
		NewStage(reg.Hero, DeepCopy[contentmodel.Hero]),
		NewStage(reg.Experiences.Lifecycle, DeepCopy[contentmodel.Experiences]),
		NewStage(reg.Projects.Lifecycle, DeepCopy[contentmodel.Projects]),
		NewStage(reg.Education.Lifecycle, DeepCopy[contentmodel.Educations]),
		NewStage(reg.Skills.Lifecycle, DeepCopy[contentmodel.Skills]),
		NewStage(reg.Certifications.Lifecycle, DeepCopy[contentmodel.Certifications]),
		NewStage(reg.SocialLinks.Lifecycle, DeepCopy[contentmodel.SocialLinks]),
	}
}
