package notice

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docsite/internal/i18n"
	"git.home.luguber.info/inful/docsite/internal/markdown"
)

// Renderer turns a Decision into banner markup.
type Renderer struct {
	Translator i18n.Translator
	// DefaultLocale is the locale whose links carry no language prefix.
	// When empty, links are emitted unprefixed.
	DefaultLocale string
}

// Render returns the banner nodes for d; nil for KindNone.
//
// The banner is an "important" admonition wrapping a paragraph with two
// translated fragments, joined by Separator(d.Language).
func (r Renderer) Render(d Decision) []*html.Node {
	var prefix string
	switch d.Kind {
	case KindDeprecated:
		prefix = "doc.deprecation."
	case KindDMR:
		prefix = "doc.dmr."
	default:
		return nil
	}

	first := i18n.Options{Values: map[string]string{"curDocVersion": d.Version}}
	if d.Kind == KindDMR {
		first.Components = []i18n.Component{r.link(d.DMRInfoLink, d.Language)}
	}
	second := i18n.Options{
		Components: []i18n.Component{r.link(d.TargetLink, d.Language)},
		Values:     map[string]string{"stableVersion": d.StableVersion},
	}

	p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
	appendAll(p, r.Translator.Translate(d.Language, prefix+d.Repo+".firstContext", first))
	if sep := Separator(d.Language); sep != "" {
		p.AppendChild(&html.Node{Type: html.TextNode, Data: sep})
	}
	appendAll(p, r.Translator.Translate(d.Language, prefix+d.Repo+".secondContext", second))

	return []*html.Node{markdown.Admonition("important", "", []*html.Node{p})}
}

// link renders the Link component: an internal anchor, prefixed with the
// language for non-default locales.
func (r Renderer) link(to, language string) i18n.Component {
	href := to
	if r.DefaultLocale != "" && language != "" && language != r.DefaultLocale {
		href = "/" + language + to
	}
	return func(children []*html.Node) *html.Node {
		a := &html.Node{
			Type:     html.ElementNode,
			Data:     "a",
			DataAtom: atom.A,
			Attr:     []html.Attribute{{Key: "href", Val: href}},
		}
		appendAll(a, children)
		return a
	}
}

func appendAll(parent *html.Node, children []*html.Node) {
	for _, c := range children {
		parent.AppendChild(c)
	}
}
