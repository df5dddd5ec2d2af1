package service

import (
	"context"
	"slices"
	"strings"

	contentmodel "resumecms/internal/content/model"
	"resumecms/internal/settings/model"
	"resumecms/internal/settings/repository"
	"resumecms/pkg/apperror"
	"resumecms/pkg/logger"
)

type SettingsService struct {
	Store repository.Store
}

func NewSettingsService(store repository.Store) *SettingsService {
	return &SettingsService{Store: store}
}

// GetOrCreate returns the settings document, saving the defaults on first access.
func (s *SettingsService) GetOrCreate(ctx context.Context) (*model.SiteSettings, error) {
	current, err := s.Store.Find(ctx)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return current, nil
	}
	defaults := model.Defaults()
	created, err := s.Store.Save(ctx, &defaults)
	if err != nil {
		return nil, err
	}
	logger.Sugar.Infow("Created default site settings", "id", created.ID)
	return created, nil
}

// Update validates req and replaces all three settings fields.
func (s *SettingsService) Update(ctx context.Context, req model.SiteSettingsRequest) (*model.SiteSettings, error) {
	if errs := ValidateRequest(req); len(errs) > 0 {
		return nil, apperror.Validation("Validation failed", errs...)
	}
	current, err := s.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	current.SupportedLocales = slices.Clone(req.SupportedLocales)
	current.DefaultLocale = *req.DefaultLocale
	current.PdfSectionVisibility = req.PdfSectionVisibility
	return s.Store.Save(ctx, current)
}

// ValidateRequest checks that supportedLocales is exactly the supported set,
// defaultLocale is one of them and pdfSectionVisibility has one key per section.
func ValidateRequest(req model.SiteSettingsRequest) []apperror.FieldError {
	var errs []apperror.FieldError
	if len(req.SupportedLocales) == 0 {
		errs = append(errs, apperror.FieldError{Field: "supportedLocales", Message: "must not be empty"})
	} else if !sameSet(req.SupportedLocales, model.SupportedLocales) {
		errs = append(errs, apperror.FieldError{Field: "supportedLocales", Message: "must be exactly [" + strings.Join(model.SupportedLocales, ", ") + "]"})
	}

	switch {
	case req.DefaultLocale == nil:
		errs = append(errs, apperror.FieldError{Field: "defaultLocale", Message: "is required"})
	case !slices.Contains(req.SupportedLocales, *req.DefaultLocale):
		errs = append(errs, apperror.FieldError{Field: "defaultLocale", Message: "must be one of supportedLocales"})
	}

	if req.PdfSectionVisibility == nil {
		errs = append(errs, apperror.FieldError{Field: "pdfSectionVisibility", Message: "is required"})
	} else {
		keys := make([]string, 0, len(req.PdfSectionVisibility))
		for k := range req.PdfSectionVisibility {
			keys = append(keys, k)
		}
		if !sameSet(keys, contentmodel.SectionNames()) {
			errs = append(errs, apperror.FieldError{Field: "pdfSectionVisibility", Message: "must have exactly these keys: " + strings.Join(contentmodel.SectionNames(), ", ")})
		}
	}
	return errs
}

// sameSet compares a and b as sets; duplicates are ignored.
func sameSet(a, b []string) bool {
	for _, v := range a {
		if !slices.Contains(b, v) {
			return false
		}
	}
	for _, v := range b {
		if !slices.Contains(a, v) {
			return false
		}
	}
	return true
}
