package service

import (
	"encoding/json"
	"fmt"

	contentmodel "resumecms/internal/content/model"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// localizedField is a per-locale field and the value it takes when the
// payload has none.
type localizedField struct {
	name    string
	missing json.RawMessage
}

func text(name string) localizedField {
	return localizedField{name: name, missing: json.RawMessage("null")}
}

// localizedFields lists the per-locale fields of each section. For list
// sections they are fields of every item. socialLinks has none.
var localizedFields = map[contentmodel.Section][]localizedField{
	contentmodel.SectionHero:           {text("tagline"), text("bio"), text("fullName"), text("title")},
	contentmodel.SectionExperiences:    {text("company"), text("role"), {name: "bulletPoints", missing: json.RawMessage("[]")}},
	contentmodel.SectionProjects:       {text("title"), text("description")},
	contentmodel.SectionEducation:      {text("details")},
	contentmodel.SectionSkills:         {text("name")},
	contentmodel.SectionCertifications: {text("description")},
}

// localizePayload replaces every localized field of a section payload with
// its value for locale. Key order is kept.
func localizePayload(section contentmodel.Section, payload json.RawMessage, locale string) (json.RawMessage, error) {
	fields, ok := localizedFields[section]
	if !ok {
		return payload, nil
	}
	if section == contentmodel.SectionHero {
		return localizeObject(payload, fields, locale)
	}

	// List payloads are {"items": [...]}, or {"categories": [...]} for skills.
	obj := orderedmap.New[string, json.RawMessage]()
	if err := obj.UnmarshalJSON(payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", section, err)
	}
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		var items []json.RawMessage
		if err := json.Unmarshal(pair.Value, &items); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", section, pair.Key, err)
		}
		for i := range items {
			localized, err := localizeObject(items[i], fields, locale)
			if err != nil {
				return nil, fmt.Errorf("localize %s item %d: %w", section, i, err)
			}
			items[i] = localized
		}
		if items == nil {
			items = []json.RawMessage{}
		}
		b, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		pair.Value = b
	}
	return json.Marshal(obj)
}

func localizeObject(raw json.RawMessage, fields []localizedField, locale string) (json.RawMessage, error) {
	obj := orderedmap.New[string, json.RawMessage]()
	if err := obj.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	for _, f := range fields {
		value := f.missing
		if current, ok := obj.Get(f.name); ok {
			var byLocale map[string]json.RawMessage
			if err := json.Unmarshal(current, &byLocale); err != nil {
				return nil, fmt.Errorf("field %s is not localized: %w", f.name, err)
			}
			if v, ok := byLocale[locale]; ok {
				value = v
			}
		}
		obj.Set(f.name, value)
	}
	return json.Marshal(obj)
}
