package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	contentmodel "resumecms/internal/content/model"
	"resumecms/internal/publish/model"
	"resumecms/internal/publish/repository"
	settingsmodel "resumecms/internal/settings/model"
	"resumecms/pkg/apperror"
	"resumecms/pkg/logger"
	"resumecms/store"
)

// Notifier is told about every successful publish.
type Notifier interface {
	NotifyPublished(userID string, result model.PublishResult)
}

type PublishService struct {
	Stages   []Stage
	Ledger   repository.Ledger
	Tx       store.Transactor
	Notifier Notifier
	Now      func() time.Time
}

// NewPublishService validates that stages follow SectionOrder exactly. A nil
// tx runs the pipeline without a transaction; notifier may be nil.
func NewPublishService(stages []Stage, ledger repository.Ledger, tx store.Transactor, notifier Notifier) (*PublishService, error) {
	names := make([]contentmodel.Section, len(stages))
	for i, stage := range stages {
		names[i] = stage.Name()
	}
	if !slices.Equal(names, contentmodel.SectionOrder) {
		return nil, fmt.Errorf("publish stages %v do not match section order %v", names, contentmodel.SectionOrder)
	}
	if tx == nil {
		tx = store.NoTx{}
	}
	return &PublishService{Stages: stages, Ledger: ledger, Tx: tx, Notifier: notifier, Now: time.Now}, nil
}

// Publish promotes every section's DRAFT to PUBLISHED in SectionOrder and
// appends one snapshot of the result. Any failure aborts the call with
// PUBLISH_FAILED. Without a transactional backend, sections promoted before
// the failure stay promoted.
func (s *PublishService) Publish(ctx context.Context, userID string, label *string) (*model.PublishResult, error) {
	var result *model.PublishResult
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		publishedAt := s.Now().UTC().Truncate(time.Millisecond)

		sections := make([]string, 0, len(s.Stages))
		for _, stage := range s.Stages {
			if err := stage.Promote(ctx); err != nil {
				return fmt.Errorf("publish %s: %w", stage.Name(), err)
			}
			sections = append(sections, string(stage.Name()))
		}

		content := model.NewSnapshotContent()
		for _, stage := range s.Stages {
			payload, err := stage.Project(ctx)
			if err != nil {
				return fmt.Errorf("project %s: %w", stage.Name(), err)
			}
			content.Set(string(stage.Name()), payload)
		}

		versionID, err := s.Ledger.Append(ctx, &model.Snapshot{Content: content, Label: label, PublishedAt: publishedAt})
		if err != nil {
			return fmt.Errorf("append snapshot: %w", err)
		}
		result = &model.PublishResult{VersionID: versionID, PublishedAt: publishedAt, SectionsPublished: sections}
		return nil
	})
	if err != nil {
		logger.Sugar.Errorf("Publish failed: %v", err)
		if errors.Is(err, ErrCloneFailed) {
			return nil, apperror.PublishFailed("Failed to copy draft content for publishing", err)
		}
		return nil, apperror.PublishFailed("Publish pipeline failed", err)
	}

	logger.Sugar.Infow("Published content", "versionId", result.VersionID, "sections", result.SectionsPublished, "userId", userID)
	if s.Notifier != nil {
		s.Notifier.NotifyPublished(userID, *result)
	}
	return result, nil
}

// Status reads the ledger on every call.
func (s *PublishService) Status(ctx context.Context) (*model.Status, error) {
	latest, err := s.Ledger.MostRecent(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.Ledger.Count(ctx)
	if err != nil {
		return nil, err
	}
	status := &model.Status{VersionCount: count}
	if latest != nil {
		at := latest.PublishedAt
		status.LastPublishedAt = &at
	}
	return status, nil
}

// Latest returns the most recent snapshot. RESOURCE_NOT_FOUND before the
// first publish.
func (s *PublishService) Latest(ctx context.Context) (*model.Snapshot, error) {
	latest, err := s.Ledger.MostRecent(ctx)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, apperror.NotFound("No published version yet")
	}
	return latest, nil
}

// Preview assembles the current DRAFT content in snapshot shape. Sections
// without a DRAFT render as {} and no DRAFT is created. A supported locale
// ("en", "vi") reduces localized fields to that locale's value; any other
// value returns every locale.
func (s *PublishService) Preview(ctx context.Context, locale string) (*model.SnapshotContent, error) {
	locale = settingsmodel.NormalizeLocale(locale)
	content := model.NewSnapshotContent()
	for _, stage := range s.Stages {
		payload, err := stage.Draft(ctx)
		if err != nil {
			return nil, fmt.Errorf("preview %s: %w", stage.Name(), err)
		}
		if payload == nil {
			payload = []byte("{}")
		}
		if locale != "" {
			if payload, err = localizePayload(stage.Name(), payload, locale); err != nil {
				return nil, fmt.Errorf("preview %s: %w", stage.Name(), err)
			}
		}
		content.Set(string(stage.Name()), payload)
	}
	return content, nil
}
