// Package site turns indexed documents into complete HTML pages. It is the
// one place where composition, post-render commands and the layout meet, and
// it is shared by the HTTP server and the static build.
package site

import (
	"context"
	"strings"
	"time"

	"git.home.luguber.info/inful/docsite/internal/compose"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/shell"
)

// Settings are the site-wide render parameters.
type Settings struct {
	Title         string
	BaseURL       string
	DefaultLocale string
	BuildType     compose.BuildType
	ClassName     string
}

// Renderer renders documents into full pages.
type Renderer struct {
	Settings Settings
	Composer *compose.Composer
	Shell    *shell.Shell
	Layout   *shell.Layout
	Recorder metrics.Recorder
}

// Result is a rendered page.
type Result struct {
	Page *compose.Page
	HTML []byte
}

// Render composes doc, runs its commands and applies the layout.
func (r *Renderer) Render(ctx context.Context, doc *content.Document) (*Result, error) {
	start := time.Now()
	pc := doc.Path
	page, err := r.Composer.Compose(ctx, compose.Input{
		Document:   doc,
		PathConfig: &pc,
		BuildType:  r.Settings.BuildType,
		Language:   doc.Path.Locale,
		PageURL:    doc.URL,
		ClassName:  r.Settings.ClassName,
	})
	if err != nil {
		return nil, err
	}
	if err := r.Shell.Execute(ctx, page); err != nil {
		return nil, err
	}
	out, err := r.Layout.Render(page, shell.LayoutData{
		SiteTitle: r.Settings.Title,
		Language:  doc.Path.Locale,
		BaseURL:   strings.TrimSuffix(r.Settings.BaseURL, "/"),
		Canonical: doc.URL,
	})
	if err != nil {
		return nil, err
	}
	metrics.OrNoop(r.Recorder).ObserveRender(string(page.PageType), page.Notice.Kind.String(), time.Since(start))
	return &Result{Page: page, HTML: out}, nil
}

// ETag is the entity tag of a page: the document fingerprint qualified by
// build type, since archive pages omit the banner.
func ETag(doc *content.Document, bt compose.BuildType) string {
	return `"` + doc.Fingerprint + "-" + string(bt) + `"`
}
