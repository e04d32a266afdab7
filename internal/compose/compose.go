// Package compose assembles the markup of a documentation page: the notice
// banner, the rendered content and the post-render commands the hosting
// shell has to run. Composition has no side effects.
package compose

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/customcontent"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/notice"
	"git.home.luguber.info/inful/docsite/internal/pagetype"
	"git.home.luguber.info/inful/docsite/internal/versions"
)

// BuildType distinguishes the live site from frozen archive builds.
type BuildType string

const (
	BuildOnline  BuildType = "online"
	BuildArchive BuildType = "archive"
)

// ParseBuildType accepts "online" and "archive"; anything else is a
// validation error.
func ParseBuildType(s string) (BuildType, error) {
	switch bt := BuildType(strings.ToLower(strings.TrimSpace(s))); bt {
	case BuildOnline, BuildArchive:
		return bt, nil
	default:
		return "", errors.ValidationError("unknown build type").WithContext("build_type", s).Build()
	}
}

// Input is everything a page render needs.
type Input struct {
	Document *content.Document
	// PathConfig is nil for pages outside the versioned content tree.
	PathConfig *content.PathConfig
	BuildType  BuildType
	Language   string
	PageURL    string
	// ClassName is appended to the container's classes.
	ClassName string
}

// Page is a composed page.
type Page struct {
	Nodes       []*html.Node
	PageType    pagetype.Type
	Notice      notice.Decision
	Commands    []Command
	Title       string
	Fingerprint string
}

// HTML serializes the page markup.
func (p *Page) HTML() (string, error) {
	return markdown.RenderHTML(p.Nodes)
}

// Composer composes pages from its collaborators. It is safe for concurrent use.
type Composer struct {
	Versions   *versions.Table
	Classifier pagetype.Classifier
	Registry   customcontent.Registry
	Notices    notice.Renderer
	Renderer   *markdown.Renderer
}

// Compose builds the page for in.
func (c *Composer) Compose(_ context.Context, in Input) (*Page, error) {
	if in.Document == nil {
		return nil, errors.ValidationError("document is required").Build()
	}
	doc := in.Document

	pt := c.Classifier.Classify(in.Language, in.PageURL)
	custom := c.Registry.For(pt, in.Language)

	page := &Page{
		PageType:    pt,
		Title:       doc.FrontMatter.Title,
		Fingerprint: doc.Fingerprint,
	}
	if in.PathConfig != nil {
		page.Commands = append(page.Commands, RewriteAnchors{
			Locale:  in.PathConfig.Locale,
			Repo:    in.PathConfig.Repo,
			Version: in.PathConfig.Version,
		})
		if !doc.FrontMatter.HideCommit {
			page.Commands = append(page.Commands, CountContributors{
				Path:     *in.PathConfig,
				FilePath: doc.FilePath,
			})
		}
	}

	body := element(atom.Div, "markdown-body")
	if in.BuildType != BuildArchive && in.PathConfig != nil {
		decision, err := notice.Select(c.Versions, notice.Request{
			Repo:     in.PathConfig.Repo,
			Version:  in.PathConfig.Version,
			Name:     doc.Name,
			AvailIn:  doc.AvailIn,
			Language: in.Language,
		})
		if err != nil {
			return nil, err
		}
		page.Notice = decision
		markdown.Adopt(body, c.Notices.Render(decision))
	}

	components := markdown.StandardComponents().Merge(markdown.Components{
		"pre":                     markdown.Pre,
		customcontent.ElementName: custom,
	})
	nodes, err := c.Renderer.Render(doc.Body, components)
	if err != nil {
		return nil, err
	}
	markdown.Adopt(body, nodes)

	container := element(atom.Div, containerClass(in.ClassName))
	container.AppendChild(body)
	page.Nodes = []*html.Node{container}

	slog.Debug("Composed page",
		logfields.Page(doc.Name),
		logfields.PageType(string(pt)),
		logfields.Notice(page.Notice.Kind.String()),
		logfields.BuildType(string(in.BuildType)))
	return page, nil
}

func containerClass(extra string) string {
	class := "container container-lg"
	if extra = strings.TrimSpace(extra); extra != "" {
		class += " " + extra
	}
	return class
}

func element(a atom.Atom, class string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     a.String(),
		DataAtom: a,
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
}
