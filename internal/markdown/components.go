package markdown

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Component replaces one rendered element. It receives the element with its
// children already expanded and returns the nodes that take its place; an
// empty result removes the element.
type Component func(el *html.Node) []*html.Node

// Components is a capability set keyed by lower-case element name.
type Components map[string]Component

// Merge returns a new set with other layered over c.
func (c Components) Merge(other Components) Components {
	out := make(Components, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[strings.ToLower(k)] = v
	}
	return out
}

// AdmonitionKinds are the callout elements every page understands.
var AdmonitionKinds = []string{"note", "tip", "important", "warning", "caution"}

var titleCaser = cases.Title(language.English)

// StandardComponents returns the components available on every page.
func StandardComponents() Components {
	out := make(Components, len(AdmonitionKinds))
	for _, kind := range AdmonitionKinds {
		out[kind] = func(el *html.Node) []*html.Node {
			return []*html.Node{Admonition(kind, Attr(el, "title"), Children(el))}
		}
	}
	return out
}

// Admonition builds a callout box:
//
//	<div class="admonition {kind}"><p class="admonition-title">Title</p>...children</div>
//
// An empty title falls back to the title-cased kind.
func Admonition(kind, title string, children []*html.Node) *html.Node {
	if title == "" {
		title = titleCaser.String(kind)
	}
	box := element(atom.Div, "class", "admonition "+kind)
	heading := element(atom.P, "class", "admonition-title")
	heading.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	box.AppendChild(heading)
	Adopt(box, children)
	return box
}

// Pre wraps a code block in a container carrying its language:
//
//	<div class="code-block" data-lang="go"><pre>...</pre></div>
func Pre(el *html.Node) []*html.Node {
	lang := ""
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Code {
			continue
		}
		for _, class := range strings.Fields(Attr(c, "class")) {
			if l, ok := strings.CutPrefix(class, "language-"); ok {
				lang = l
			}
		}
	}
	box := element(atom.Div, "class", "code-block")
	if lang != "" {
		box.Attr = append(box.Attr, html.Attribute{Key: "data-lang", Val: lang})
	}
	Adopt(box, []*html.Node{el})
	return []*html.Node{box}
}

// Attr returns the value of attribute key on n ("" when absent).
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Children returns a snapshot of n's children.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Adopt moves nodes under parent, detaching them from their current parent.
func Adopt(parent *html.Node, nodes []*html.Node) {
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		parent.AppendChild(n)
	}
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}
