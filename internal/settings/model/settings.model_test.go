package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, []string{"en", "vi"}, d.SupportedLocales)
	assert.Equal(t, "en", d.DefaultLocale)
	assert.Equal(t, map[string]bool{
		"hero":           true,
		"experiences":    true,
		"projects":       true,
		"education":      true,
		"skills":         true,
		"certifications": true,
		"socialLinks":    false,
	}, d.PdfSectionVisibility)

	d.SupportedLocales[0] = "xx"
	assert.Equal(t, "en", SupportedLocales[0])
}

func TestNormalizeLocale(t *testing.T) {
	assert.Equal(t, "vi", NormalizeLocale(" VI "))
	assert.Equal(t, "en", NormalizeLocale("en"))
	assert.Equal(t, "", NormalizeLocale("fr"))
	assert.Equal(t, "", NormalizeLocale(""))
}
