package model

import (
	"encoding/json"
	"time"
)

// ContentState is stored as the plain string "DRAFT" or "PUBLISHED".
type ContentState string

const (
	Draft     ContentState = "DRAFT"
	Published ContentState = "PUBLISHED"
)

func (s ContentState) Valid() bool {
	return s == Draft || s == Published
}

type Section string

const (
	SectionHero           Section = "hero"
	SectionExperiences    Section = "experiences"
	SectionProjects       Section = "projects"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionCertifications Section = "certifications"
	SectionSocialLinks    Section = "socialLinks"
)

// SectionOrder is the publish order, the order of sectionsPublished and the
// key order of every snapshot.
var SectionOrder = []Section{
	SectionHero,
	SectionExperiences,
	SectionProjects,
	SectionEducation,
	SectionSkills,
	SectionCertifications,
	SectionSocialLinks,
}

// Path is the URL segment of the section. It differs from the section key
// only for socialLinks.
func (s Section) Path() string {
	if s == SectionSocialLinks {
		return "social-links"
	}
	return string(s)
}

// SectionNames returns SectionOrder as strings.
func SectionNames() []string {
	names := make([]string, len(SectionOrder))
	for i, s := range SectionOrder {
		names[i] = string(s)
	}
	return names
}

// Document is one section document. At most one exists per ContentState.
type Document[P any] struct {
	ID           string       `json:"id"`
	ContentState ContentState `json:"contentState"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Payload      P            `json:"payload"`
}

// LocalizedText maps a locale key ("en", "vi") to text.
type LocalizedText map[string]string

type Hero struct {
	Tagline             LocalizedText `json:"tagline,omitempty"`
	Bio                 LocalizedText `json:"bio,omitempty"`
	FullName            LocalizedText `json:"fullName,omitempty"`
	Title               LocalizedText `json:"title,omitempty"`
	ProfilePhotoMediaID string        `json:"profilePhotoMediaId,omitempty"`
}

// ItemMeta is the identity and display position embedded in every list item.
type ItemMeta struct {
	ItemID string `json:"itemId"`
	Order  int    `json:"order"`
}

func (m *ItemMeta) Key() string {
	return m.ItemID
}

func (m *ItemMeta) SetKey(id string) {
	m.ItemID = id
}

func (m *ItemMeta) Position() int {
	return m.Order
}

func (m *ItemMeta) SetPosition(pos int) {
	m.Order = pos
}

// ItemList is the payload of every section that is a plain item collection.
type ItemList[T any] struct {
	Items []T `json:"items"`
}

// MarshalJSON keeps an empty collection as [] rather than null.
func (l ItemList[T]) MarshalJSON() ([]byte, error) {
	items := l.Items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(struct {
		Items []T `json:"items"`
	}{items})
}

type ExperienceItem struct {
	ItemMeta
	Company      LocalizedText       `json:"company,omitempty"`
	Role         LocalizedText       `json:"role,omitempty"`
	StartDate    string              `json:"startDate,omitempty"`
	EndDate      string              `json:"endDate,omitempty"`
	BulletPoints map[string][]string `json:"bulletPoints,omitempty"`
	TechUsed     []string            `json:"techUsed,omitempty"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type ProjectItem struct {
	ItemMeta
	Title       LocalizedText `json:"title,omitempty"`
	Description LocalizedText `json:"description,omitempty"`
	TechStack   []string      `json:"techStack,omitempty"`
	Links       []Link        `json:"links,omitempty"`
	MediaIDs    []string      `json:"mediaIds,omitempty"`
	Visible     bool          `json:"visible"`
}

type EducationItem struct {
	ItemMeta
	Institution string        `json:"institution"`
	Degree      string        `json:"degree,omitempty"`
	Field       string        `json:"field,omitempty"`
	StartDate   string        `json:"startDate,omitempty"`
	EndDate     string        `json:"endDate,omitempty"`
	Details     LocalizedText `json:"details,omitempty"`
}

type SkillItem struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// SkillCategory uses categoryId instead of itemId.
type SkillCategory struct {
	CategoryID string        `json:"categoryId"`
	Name       LocalizedText `json:"name,omitempty"`
	Items      []SkillItem   `json:"items"`
	Order      int           `json:"order"`
}

func (c *SkillCategory) Key() string {
	return c.CategoryID
}

func (c *SkillCategory) SetKey(id string) {
	c.CategoryID = id
}

func (c *SkillCategory) Position() int {
	return c.Order
}

func (c *SkillCategory) SetPosition(pos int) {
	c.Order = pos
}

type CertificationItem struct {
	ItemMeta
	Title       string        `json:"title"`
	Issuer      string        `json:"issuer,omitempty"`
	Date        string        `json:"date,omitempty"`
	URL         string        `json:"url,omitempty"`
	Description LocalizedText `json:"description,omitempty"`
}

type SocialLinkItem struct {
	ItemMeta
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon,omitempty"`
}

type (
	Experiences    = ItemList[ExperienceItem]
	Projects       = ItemList[ProjectItem]
	Educations     = ItemList[EducationItem]
	Certifications = ItemList[CertificationItem]
	SocialLinks    = ItemList[SocialLinkItem]
)

type Skills struct {
	Categories []SkillCategory `json:"categories"`
}

func (s Skills) MarshalJSON() ([]byte, error) {
	categories := s.Categories
	if categories == nil {
		categories = []SkillCategory{}
	}
	return json.Marshal(struct {
		Categories []SkillCategory `json:"categories"`
	}{categories})
}

type ReorderRequest struct {
	OrderedIDs []string `json:"orderedIds"`
}
