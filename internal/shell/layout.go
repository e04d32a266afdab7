package shell

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/compose"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

//go:embed templates/layout.html.tmpl
var embeddedTemplates embed.FS

// LayoutData is the template input of a full page.
type LayoutData struct {
	SiteTitle string
	Title     string
	Language  string
	PageType  string
	Notice    string
	BaseURL   string
	Canonical string
	Content   template.HTML
}

// Layout renders full HTML documents around page fragments.
type Layout struct {
	tpl *template.Template
}

// NewLayout parses the template at override, or the embedded default when
// override is empty.
func NewLayout(override string) (*Layout, error) {
	raw, err := embeddedTemplates.ReadFile("templates/layout.html.tmpl")
	if err != nil {
		panic(fmt.Sprintf("embedded layout template missing: %v", err))
	}
	if override != "" {
		b, err := os.ReadFile(filepath.Clean(override))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read layout template").
				WithContext("path", override).
				Build()
		}
		slog.Debug("Loaded layout template override", logfields.Path(override))
		raw = b
	}
	tpl, err := template.New("layout").Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse layout template").Build()
	}
	return &Layout{tpl: tpl}, nil
}

// Render serializes page and wraps it. data.Content is filled from the page.
func (l *Layout) Render(page *compose.Page, data LayoutData) ([]byte, error) {
	fragment, err := page.HTML()
	if err != nil {
		return nil, err
	}
	data.Content = template.HTML(fragment) // #nosec G203 -- markup produced by the renderer
	if data.Title == "" {
		data.Title = page.Title
	}
	data.PageType = string(page.PageType)
	data.Notice = page.Notice.Kind.String()

	var buf bytes.Buffer
	if err := l.tpl.Execute(&buf, data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to render layout").Build()
	}
	return buf.Bytes(), nil
}
