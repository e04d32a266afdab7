// Package customcontent binds the CustomContent element to the page being
// rendered so platform and language specific blocks show up only where they
// belong.
package customcontent

import (
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/pagetype"
)

// ElementName is the lower-case element the registry's components replace.
const ElementName = "customcontent"

// Registry hands out CustomContent components bound to a page type.
type Registry struct {
	// Aliases maps additional platform names onto page types.
	Aliases map[string]pagetype.Type
}

// For returns the component for pages of type pt in language. A block is
// kept (its children unwrapped in place) when its platform attribute, if
// any, names pt and its language attribute, if any, lists language.
// Otherwise the block is removed.
func (r Registry) For(pt pagetype.Type, language string) markdown.Component {
	return func(el *html.Node) []*html.Node {
		if !r.platformMatches(markdown.Attr(el, "platform"), pt) || !languageMatches(markdown.Attr(el, "language"), language) {
			return nil
		}
		return markdown.Children(el)
	}
}

func (r Registry) platformMatches(platform string, pt pagetype.Type) bool {
	if strings.TrimSpace(platform) == "" {
		return true
	}
	want := pagetype.Key(string(pt))
	if pagetype.Key(platform) == want {
		return true
	}
	for alias, t := range r.Aliases {
		if pagetype.Key(alias) == pagetype.Key(platform) && pagetype.Key(string(t)) == want {
			return true
		}
	}
	return false
}

func languageMatches(list, language string) bool {
	if strings.TrimSpace(list) == "" {
		return true
	}
	for _, l := range strings.Split(list, ",") {
		if strings.EqualFold(strings.TrimSpace(l), language) {
			return true
		}
	}
	return false
}
