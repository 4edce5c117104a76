package content

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"sort"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"

	"github.com/Rrens/property-mcp/internal/domain"
)

//go:embed templates
var embedded embed.FS

const (
	layoutFile     = "layout.html.tmpl"
	templateSuffix = ".md.tmpl"
)

// Options configures the fallback language and tone
type Options struct {
	DefaultLanguage string
	DefaultTone     string
}

// Generator renders listing copy from embedded templates. It is safe for
// concurrent use once built.
type Generator struct {
	defaultLanguage string
	defaultTone     string
	sets            map[string]map[string]*template.Template
	layout          *htmltemplate.Template
	markdown        goldmark.Markdown
}

// NewGenerator loads the embedded template set
func NewGenerator(opts Options) (*Generator, error) {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}
	return NewGeneratorFS(sub, opts)
}

// NewGeneratorFS loads "<lang>/<tone>.md.tmpl" files and the shared layout
// from fsys. Every language must provide the default tone and the default
// language must exist.
func NewGeneratorFS(fsys fs.FS, opts Options) (*Generator, error) {
	g := &Generator{
		defaultLanguage: normalize(opts.DefaultLanguage),
		defaultTone:     normalize(opts.DefaultTone),
		sets:            make(map[string]map[string]*template.Template),
		markdown:        goldmark.New(),
	}
	if g.defaultLanguage == "" {
		g.defaultLanguage = "en"
	}
	if g.defaultTone == "" {
		g.defaultTone = "professional"
	}

	files, err := fs.Glob(fsys, "*/*"+templateSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	for _, file := range files {
		lang := normalize(path.Dir(file))
		tone := normalize(strings.TrimSuffix(path.Base(file), templateSuffix))

		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", file, err)
		}
		tmpl, err := template.New(file).Funcs(funcs).Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
		for _, block := range []string{"title", "meta", "body"} {
			if tmpl.Lookup(block) == nil {
				return nil, fmt.Errorf("template %s does not define %q", file, block)
			}
		}

		if g.sets[lang] == nil {
			g.sets[lang] = make(map[string]*template.Template)
		}
		g.sets[lang][tone] = tmpl
	}

	if _, ok := g.sets[g.defaultLanguage][g.defaultTone]; !ok {
		return nil, &domain.TemplateError{Language: g.defaultLanguage, Tone: g.defaultTone}
	}
	for lang, tones := range g.sets {
		if _, ok := tones[g.defaultTone]; !ok {
			return nil, &domain.TemplateError{Language: lang, Tone: g.defaultTone}
		}
	}

	layout, err := fs.ReadFile(fsys, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	g.layout, err = htmltemplate.New(layoutFile).Parse(string(layout))
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	log.Debug().
		Strs("languages", g.Languages()).
		Str("default_language", g.defaultLanguage).
		Str("default_tone", g.defaultTone).
		Msg("Content templates loaded")

	return g, nil
}

// Languages returns the loaded languages in sorted order
func (g *Generator) Languages() []string {
	out := make([]string, 0, len(g.sets))
	for lang := range g.sets {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Tones returns the tones available for the default language
func (g *Generator) Tones() []string {
	tones := g.sets[g.defaultLanguage]
	out := make([]string, 0, len(tones))
	for tone := range tones {
		out = append(out, tone)
	}
	sort.Strings(out)
	return out
}

// Resolve maps a requested language and tone onto a loaded template using
// the chain (lang, tone), (lang, default tone), (default lang, tone),
// (default lang, default tone).
func (g *Generator) Resolve(lang, tone string) (string, string, error) {
	lang = g.language(lang)
	tone = normalize(tone)
	if tone == "" {
		tone = g.defaultTone
	}

	candidates := [][2]string{
		{lang, tone},
		{lang, g.defaultTone},
		{g.defaultLanguage, tone},
		{g.defaultLanguage, g.defaultTone},
	}
	for _, c := range candidates {
		if _, ok := g.sets[c[0]][c[1]]; ok {
			return c[0], c[1], nil
		}
	}
	return "", "", &domain.TemplateError{Language: lang, Tone: tone}
}

// language picks the loaded language for a tag such as "pt-BR"
func (g *Generator) language(lang string) string {
	lang = normalize(lang)
	if lang == "" {
		return g.defaultLanguage
	}
	if _, ok := g.sets[lang]; ok {
		return lang
	}
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		if _, ok := g.sets[lang[:i]]; ok {
			return lang[:i]
		}
	}
	return g.defaultLanguage
}

// layoutData is what layout.html.tmpl renders
type layoutData struct {
	Language   string
	Tone       string
	PropertyID string
	Title      string
	Meta       string
	Schema     listingSchema
	Content    htmltemplate.HTML
}

// Render produces the listing copy for p. It reads nothing but its arguments
// and the loaded templates, so the same input always gives the same bytes.
func (g *Generator) Render(p *domain.Property, lang, tone string) (*domain.RenderedContent, error) {
	if p == nil {
		return nil, fmt.Errorf("render: nil property")
	}

	lang, tone, err := g.Resolve(lang, tone)
	if err != nil {
		return nil, err
	}
	tmpl := g.sets[lang][tone]
	data := localeFor(lang).view(p, lang)

	title, err := execute(tmpl, "title", data)
	if err != nil {
		return nil, err
	}
	meta, err := execute(tmpl, "meta", data)
	if err != nil {
		return nil, err
	}
	body, err := execute(tmpl, "body", data)
	if err != nil {
		return nil, err
	}

	var content bytes.Buffer
	if err := g.markdown.Convert([]byte(body), &content); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	var page bytes.Buffer
	err = g.layout.Execute(&page, layoutData{
		Language:   lang,
		Tone:       tone,
		PropertyID: p.ID.String(),
		Title:      title,
		Meta:       meta,
		Schema:     schemaFor(p, meta),
		// goldmark drops raw HTML and escapes text, so its output is trusted
		Content: htmltemplate.HTML(content.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render layout: %w", err)
	}

	return &domain.RenderedContent{
		PropertyID:      p.ID,
		Language:        lang,
		Tone:            tone,
		Title:           title,
		MetaDescription: meta,
		Markdown:        body,
		HTML:            page.String(),
	}, nil
}

func execute(tmpl *template.Template, block string, data view) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, block, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", block, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var funcs = template.FuncMap{
	"md":    escapeMarkdown,
	"lower": strings.ToLower,
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
)

// escapeMarkdown keeps property text from being read as markup
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
