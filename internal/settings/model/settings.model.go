package model

import (
	"slices"
	"strings"
	"time"

	contentmodel "resumecms/internal/content/model"
)

// SupportedLocales is the only locale set the site accepts. Settings may
// name it but not change it.
var SupportedLocales = []string{"en", "vi"}

const DefaultLocale = "en"

// IsSupportedLocale reports whether locale is one of SupportedLocales. It is
// case sensitive; callers normalize input first.
func IsSupportedLocale(locale string) bool {
	return slices.Contains(SupportedLocales, locale)
}

// NormalizeLocale trims and lowercases locale, returning "" when it is not
// supported.
func NormalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if !IsSupportedLocale(locale) {
		return ""
	}
	return locale
}

// SiteSettings is the single site-wide settings document.
type SiteSettings struct {
	ID                   string          `json:"id"`
	SupportedLocales     []string        `json:"supportedLocales"`
	DefaultLocale        string          `json:"defaultLocale"`
	PdfSectionVisibility map[string]bool `json:"pdfSectionVisibility"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// SiteSettingsRequest is the body of PUT /settings. Every field is required.
type SiteSettingsRequest struct {
	SupportedLocales     []string        `json:"supportedLocales"`
	DefaultLocale        *string         `json:"defaultLocale"`
	PdfSectionVisibility map[string]bool `json:"pdfSectionVisibility"`
}

// Defaults is the document created on first access: every section is
// visible in the PDF except socialLinks.
func Defaults() SiteSettings {
	visibility := make(map[string]bool, len(contentmodel.SectionOrder))
	for _, section := range contentmodel.SectionOrder {
		visibility[string(section)] = section != contentmodel.SectionSocialLinks
	}
	return SiteSettings{
		SupportedLocales:     slices.Clone(SupportedLocales),
		DefaultLocale:        DefaultLocale,
		PdfSectionVisibility: visibility,
	}
}
