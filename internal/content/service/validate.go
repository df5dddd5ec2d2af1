package service

import (
	"strings"

	"resumecms/internal/content/model"
	settingsmodel "resumecms/internal/settings/model"
	"resumecms/pkg/apperror"
)

// localeKeys rejects keys outside the site's supported locales.
func localeKeys[V any](field string, m map[string]V) []apperror.FieldError {
	for key := range m {
		if !settingsmodel.IsSupportedLocale(key) {
			return []apperror.FieldError{{Field: field, Message: "locale keys must be one of: " + strings.Join(settingsmodel.SupportedLocales, ", ")}}
		}
	}
	return nil
}

func required(field, value string) []apperror.FieldError {
	if strings.TrimSpace(value) == "" {
		return []apperror.FieldError{{Field: field, Message: "must not be blank"}}
	}
	return nil
}

func requiredText(field string, value model.LocalizedText) []apperror.FieldError {
	for _, v := range value {
		if strings.TrimSpace(v) != "" {
			return nil
		}
	}
	return []apperror.FieldError{{Field: field, Message: "must have at least one locale value"}}
}

func collect(groups ...[]apperror.FieldError) []apperror.FieldError {
	var out []apperror.FieldError
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func ValidateHero(h model.Hero) []apperror.FieldError {
	return collect(
		localeKeys("tagline", h.Tagline),
		localeKeys("bio", h.Bio),
		localeKeys("fullName", h.FullName),
		localeKeys("title", h.Title),
	)
}

func validateExperience(item model.ExperienceItem) []apperror.FieldError {
	return collect(
		requiredText("company", item.Company),
		localeKeys("company", item.Company),
		localeKeys("role", item.Role),
		localeKeys("bulletPoints", item.BulletPoints),
	)
}

func validateProject(item model.ProjectItem) []apperror.FieldError {
	errs := collect(
		requiredText("title", item.Title),
		localeKeys("title", item.Title),
		localeKeys("description", item.Description),
	)
	for _, link := range item.Links {
		errs = append(errs, required("links.url", link.URL)...)
	}
	return errs
}

func validateEducation(item model.EducationItem) []apperror.FieldError {
	return collect(
		required("institution", item.Institution),
		localeKeys("details", item.Details),
	)
}

func validateSkillCategory(item model.SkillCategory) []apperror.FieldError {
	errs := collect(
		requiredText("name", item.Name),
		localeKeys("name", item.Name),
	)
	for _, skill := range item.Items {
		errs = append(errs, required("items.name", skill.Name)...)
	}
	return errs
}

func validateCertification(item model.CertificationItem) []apperror.FieldError {
	return collect(
		required("title", item.Title),
		localeKeys("description", item.Description),
	)
}

func validateSocialLink(item model.SocialLinkItem) []apperror.FieldError {
	return collect(
		required("platform", item.Platform),
		required("url", item.URL),
	)
}
