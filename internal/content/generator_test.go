package content

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/property-mcp/internal/domain"
)

func testProperty() *domain.Property {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Property{
		ID:          uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		Title:       "Modern Apartment in Alfama",
		Description: "Bright apartment with river views.",
		Descriptions: map[string]string{
			"pt": "Apartamento luminoso com vista rio.",
		},
		City:      "Lisbon",
		Address:   "Rua dos Remédios 12",
		Price:     domain.Money(65000000),
		Status:    domain.StatusAvailable,
		Type:      domain.TypeApartment,
		Bedrooms:  2,
		Bathrooms: 1,
		AreaSqm:   85.5,
		Features: map[string]any{
			"sea_view":       true,
			"balcony":        true,
			"parking_spaces": float64(2),
			"pool":           false,
		},
		InternalNotes: "Owner motivated",
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(Options{DefaultLanguage: "en", DefaultTone: "professional"})
	require.NoError(t, err)
	return g
}

func TestNewGenerator_LoadsEmbeddedTemplates(t *testing.T) {
	g := newTestGenerator(t)

	assert.Equal(t, []string{"en", "pt"}, g.Languages())
	assert.Equal(t, []string{"casual", "family", "luxury", "professional"}, g.Tones())
}

func TestRender_Deterministic(t *testing.T) {
	g := newTestGenerator(t)
	p := testProperty()

	first, err := g.Render(p, "en", "luxury")
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := g.Render(p, "en", "luxury")
		require.NoError(t, err)
		assert.Equal(t, first.HTML, again.HTML)
		assert.Equal(t, first.Markdown, again.Markdown)
	}
}

func TestRender_English(t *testing.T) {
	g := newTestGenerator(t)

	out, err := g.Render(testProperty(), "en", "professional")
	require.NoError(t, err)

	assert.Equal(t, "en", out.Language)
	assert.Equal(t, "professional", out.Tone)
	assert.Equal(t, "Modern Apartment in Alfama | Apartment for sale in Lisbon", out.Title)
	assert.Contains(t, out.MetaDescription, "€650,000")
	assert.Contains(t, out.Markdown, "85.5 m²")
	assert.Contains(t, out.HTML, `<html lang="en">`)
	assert.Contains(t, out.HTML, "<title>Modern Apartment in Alfama | Apartment for sale in Lisbon</title>")
	assert.Contains(t, out.HTML, "RealEstateListing")
	assert.NotContains(t, out.HTML, "Owner motivated")
}

func TestRender_FeaturesSorted(t *testing.T) {
	g := newTestGenerator(t)

	out, err := g.Render(testProperty(), "en", "professional")
	require.NoError(t, err)

	balcony := strings.Index(out.Markdown, "- Balcony")
	parking := strings.Index(out.Markdown, "- Parking spaces: 2")
	sea := strings.Index(out.Markdown, "- Sea view")
	require.True(t, balcony >= 0 && parking >= 0 && sea >= 0, out.Markdown)
	assert.Less(t, balcony, parking)
	assert.Less(t, parking, sea)
	assert.NotContains(t, out.Markdown, "Pool")
	assert.Contains(t, out.Markdown, "balcony, parking spaces: 2, sea view")
}

func TestRender_Portuguese(t *testing.T) {
	g := newTestGenerator(t)

	out, err := g.Render(testProperty(), "pt-PT", "professional")
	require.NoError(t, err)

	assert.Equal(t, "pt", out.Language)
	assert.Contains(t, out.Title, "Apartamento à venda em Lisbon")
	assert.Contains(t, out.MetaDescription, " €")
	assert.Contains(t, out.Markdown, "Apartamento luminoso com vista rio.")
	assert.Contains(t, out.HTML, `<html lang="pt">`)
}

func TestResolve_Fallbacks(t *testing.T) {
	g := newTestGenerator(t)

	tests := []struct {
		name     string
		lang     string
		tone     string
		wantLang string
		wantTone string
	}{
		{name: "exact", lang: "pt", tone: "casual", wantLang: "pt", wantTone: "casual"},
		{name: "empty uses defaults", lang: "", tone: "", wantLang: "en", wantTone: "professional"},
		{name: "unknown tone", lang: "en", tone: "poetic", wantLang: "en", wantTone: "professional"},
		{name: "unknown language keeps tone", lang: "de", tone: "luxury", wantLang: "en", wantTone: "luxury"},
		{name: "region tag", lang: "PT_br", tone: "Family", wantLang: "pt", wantTone: "family"},
		{name: "both unknown", lang: "fr", tone: "poetic", wantLang: "en", wantTone: "professional"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, tone, err := g.Resolve(tt.lang, tt.tone)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLang, lang)
			assert.Equal(t, tt.wantTone, tone)
		})
	}
}

func TestRender_EscapesMarkup(t *testing.T) {
	g := newTestGenerator(t)
	p := testProperty()
	p.Title = "<script>alert(1)</script>"
	p.Description = "<img src=x onerror=alert(1)> *bold*"

	out, err := g.Render(p, "en", "casual")
	require.NoError(t, err)

	assert.NotContains(t, out.HTML, "<script>alert")
	assert.NotContains(t, out.HTML, "<img")
	assert.NotContains(t, out.HTML, "<em>bold</em>")
	assert.Contains(t, out.HTML, "&lt;script&gt;")
}

func TestRender_NilProperty(t *testing.T) {
	g := newTestGenerator(t)

	_, err := g.Render(nil, "en", "professional")
	assert.Error(t, err)
}

const minimalTemplate = `{{define "title"}}{{.Title}}{{end}}{{define "meta"}}{{.City}}{{end}}{{define "body"}}# {{md .Title}}{{end}}`

func TestNewGeneratorFS_MissingDefaultTone(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
		lang  string
	}{
		{
			name: "default language lacks default tone",
			files: fstest.MapFS{
				"en/casual.md.tmpl": {Data: []byte(minimalTemplate)},
				"layout.html.tmpl":  {Data: []byte(`{{.Content}}`)},
			},
			lang: "en",
		},
		{
			name: "secondary language lacks default tone",
			files: fstest.MapFS{
				"en/professional.md.tmpl": {Data: []byte(minimalTemplate)},
				"pt/casual.md.tmpl":       {Data: []byte(minimalTemplate)},
				"layout.html.tmpl":        {Data: []byte(`{{.Content}}`)},
			},
			lang: "pt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeneratorFS(tt.files, Options{DefaultLanguage: "en", DefaultTone: "professional"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrTemplate))

			var templateErr *domain.TemplateError
			require.True(t, errors.As(err, &templateErr))
			assert.Equal(t, tt.lang, templateErr.Language)
			assert.Equal(t, "professional", templateErr.Tone)
		})
	}
}

func TestNewGeneratorFS_MissingBlock(t *testing.T) {
	files := fstest.MapFS{
		"en/professional.md.tmpl": {Data: []byte(`{{define "title"}}x{{end}}`)},
		"layout.html.tmpl":        {Data: []byte(`{{.Content}}`)},
	}

	_, err := NewGeneratorFS(files, Options{})
	assert.Error(t, err)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\*a\_b\* \[x\]`, escapeMarkdown("*a_b* [x]"))
	assert.Equal(t, `\<b\> \#1`, escapeMarkdown("<b> #1"))
	assert.Equal(t, "plain text", escapeMarkdown("plain text"))
}

func TestHumanize(t *testing.T) {
	locale := localeFor("en")
	assert.Equal(t, "River view", humanize("river_view", locale.tag))
	assert.Equal(t, "Parking spaces", humanize("parking_spaces", locale.tag))
	assert.Equal(t, "Pool", humanize("pool", locale.tag))
}
