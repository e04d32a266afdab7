// Package markdown renders document bodies into HTML node trees and expands
// the custom elements they contain through a capability set of components.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Renderer converts Markdown to HTML. Raw HTML, including custom elements
// such as <Note> or <CustomContent>, passes through to the node tree.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer returns a renderer with GitHub Flavored Markdown and automatic
// heading ids enabled.
func NewRenderer() *Renderer {
	return &Renderer{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)}
}

// Render converts body and expands every element named in components.
func (r *Renderer) Render(body []byte, components Components) ([]*html.Node, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to render markdown").Build()
	}
	root := element(atom.Div)
	nodes, err := html.ParseFragment(&buf, root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to parse rendered markup").Build()
	}
	Adopt(root, nodes)
	Expand(root, components)
	out := Children(root)
	for _, n := range out {
		root.RemoveChild(n)
	}
	return out, nil
}

// Expand replaces, depth first, every element below parent whose lower-case
// name has a component. Children are expanded before their parent so a
// component sees final markup.
func Expand(parent *html.Node, components Components) {
	if len(components) == 0 {
		return
	}
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		Expand(c, components)
		if c.Type == html.ElementNode {
			if comp, ok := components[strings.ToLower(c.Data)]; ok {
				replacement := comp(c)
				if c.Parent == parent {
					parent.RemoveChild(c)
				}
				for _, n := range replacement {
					if n.Parent != nil {
						n.Parent.RemoveChild(n)
					}
					parent.InsertBefore(n, next)
				}
			}
		}
		c = next
	}
}

// RenderHTML serializes nodes in order.
func RenderHTML(nodes []*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", errors.WrapError(err, errors.CategoryRender, "failed to serialize markup").Build()
		}
	}
	return buf.String(), nil
}
