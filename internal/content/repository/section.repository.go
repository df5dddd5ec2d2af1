package repository

import (
	"context"
	"sort"

	"resumecms/internal/content/model"
	"resumecms/pkg/apperror"
	"resumecms/pkg/logger"
)

// SectionStore persists the documents of one section. FindByState returns
// nil, nil when no document exists for the state.
type SectionStore[P any] interface {
	FindByState(ctx context.Context, state model.ContentState) (*model.Document[P], error)
	Save(ctx context.Context, doc *model.Document[P]) (*model.Document[P], error)
	Delete(ctx context.Context, doc *model.Document[P]) error
}

// Stores bundles one typed store per section.
type Stores struct {
	Hero           SectionStore[model.Hero]
	Experiences    SectionStore[model.Experiences]
	Projects       SectionStore[model.Projects]
	Education      SectionStore[model.Educations]
	Skills         SectionStore[model.Skills]
	Certifications SectionStore[model.Certifications]
	SocialLinks    SectionStore[model.SocialLinks]
}

// Table and collection names per section.
var collections = map[model.Section]string{
	model.SectionHero:           "hero_sections",
	model.SectionExperiences:    "experience_sections",
	model.SectionProjects:       "project_sections",
	model.SectionEducation:      "education_sections",
	model.SectionSkills:         "skill_sections",
	model.SectionCertifications: "certification_sections",
	model.SectionSocialLinks:    "social_link_sections",
}

// CollectionName returns the table or collection backing a section.
func CollectionName(section model.Section) string {
	return collections[section]
}

// pickLatest resolves a (section, state) lookup. More than one match breaks
// the uniqueness invariant: it is logged as a data integrity violation and the
// most recently updated document wins.
func pickLatest[P any](section model.Section, state model.ContentState, docs []*model.Document[P]) *model.Document[P] {
	switch len(docs) {
	case 0:
		return nil
	case 1:
		return docs[0]
	}
	sorted := make([]*model.Document[P], len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	logger.Sugar.Warnw(apperror.ErrDataIntegrity.Error(),
		"section", section,
		"state", state,
		"count", len(docs),
		"chosen", sorted[0].ID,
	)
	return sorted[0]
}
