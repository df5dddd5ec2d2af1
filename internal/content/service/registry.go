package service

import (
	"context"

	"resumecms/internal/content/model"
	"resumecms/internal/content/repository"
	"resumecms/pkg/apperror"
)

type (
	ExperienceService    = ItemCollection[model.Experiences, model.ExperienceItem, *model.ExperienceItem]
	ProjectService       = ItemCollection[model.Projects, model.ProjectItem, *model.ProjectItem]
	EducationService     = ItemCollection[model.Educations, model.EducationItem, *model.EducationItem]
	SkillService         = ItemCollection[model.Skills, model.SkillCategory, *model.SkillCategory]
	CertificationService = ItemCollection[model.Certifications, model.CertificationItem, *model.CertificationItem]
	SocialLinkService    = ItemCollection[model.SocialLinks, model.SocialLinkItem, *model.SocialLinkItem]
)

// Registry holds the per-section services, one per entry of SectionOrder.
type Registry struct {
	Hero           *Lifecycle[model.Hero]
	Experiences    *ExperienceService
	Projects       *ProjectService
	Education      *EducationService
	Skills         *SkillService
	Certifications *CertificationService
	SocialLinks    *SocialLinkService
}

func listItems[T any](p *model.ItemList[T]) *[]T { return &p.Items }

func emptyList[T any]() model.ItemList[T] { return model.ItemList[T]{Items: []T{}} }

func NewRegistry(stores repository.Stores) *Registry {
	return &Registry{
		Hero: NewLifecycle(model.SectionHero, stores.Hero, func() model.Hero { return model.Hero{} }),
		Experiences: NewItemCollection[model.Experiences, model.ExperienceItem, *model.ExperienceItem](
			NewLifecycle(model.SectionExperiences, stores.Experiences, emptyList[model.ExperienceItem]),
			"Experience item", listItems[model.ExperienceItem], validateExperience),
		Projects: NewItemCollection[model.Projects, model.ProjectItem, *model.ProjectItem](
			NewLifecycle(model.SectionProjects, stores.Projects, emptyList[model.ProjectItem]),
			"Project item", listItems[model.ProjectItem], validateProject),
		Education: NewItemCollection[model.Educations, model.EducationItem, *model.EducationItem](
			NewLifecycle(model.SectionEducation, stores.Education, emptyList[model.EducationItem]),
			"Education item", listItems[model.EducationItem], validateEducation),
		Skills: NewItemCollection[model.Skills, model.SkillCategory, *model.SkillCategory](
			NewLifecycle(model.SectionSkills, stores.Skills, func() model.Skills { return model.Skills{Categories: []model.SkillCategory{}} }),
			"Skill category", func(p *model.Skills) *[]model.SkillCategory { return &p.Categories }, validateSkillCategory),
		Certifications: NewItemCollection[model.Certifications, model.CertificationItem, *model.CertificationItem](
			NewLifecycle(model.SectionCertifications, stores.Certifications, emptyList[model.CertificationItem]),
			"Certification item", listItems[model.CertificationItem], validateCertification),
		SocialLinks: NewItemCollection[model.SocialLinks, model.SocialLinkItem, *model.SocialLinkItem](
			NewLifecycle(model.SectionSocialLinks, stores.SocialLinks, emptyList[model.SocialLinkItem]),
			"Social link", listItems[model.SocialLinkItem], validateSocialLink),
	}
}

// UpsertHero validates and replaces the DRAFT hero.
func (r *Registry) UpsertHero(ctx context.Context, hero model.Hero) (*model.Document[model.Hero], error) {
	if errs := ValidateHero(hero); len(errs) > 0 {
		return nil, apperror.Validation("Validation failed", errs...)
	}
	return r.Hero.ReplaceDraft(ctx, hero)
}
