package i18n

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Component wraps the children of a numbered tag (`<0>...</0>`) in a message.
type Component func(children []*html.Node) *html.Node

// Options carries the components and interpolation values of one translation.
type Options struct {
	Components []Component
	Values     map[string]string
}

// Translator renders a translated message as HTML nodes.
type Translator interface {
	Translate(lang, key string, opts Options) []*html.Node
}

// basicTags are kept as real elements when they appear in a message.
var basicTags = map[string]bool{"br": true, "strong": true, "b": true, "i": true, "em": true, "code": true}

var (
	tagPattern         = regexp.MustCompile(`^<(/?)([0-9]+|[a-z]+)\s*(/?)>`)
	placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)
)

// Translate looks up key and renders it. A key missing everywhere renders as
// the key itself.
func (c *Catalog) Translate(lang, key string, opts Options) []*html.Node {
	msg, ok := c.Lookup(lang, key)
	if !ok {
		msg = key
	}
	return Render(msg, opts)
}

type frame struct {
	name    string
	index   int // -1 for basic tags
	raw     string
	node    *html.Node
	numbers bool
}

// Render parses a message template. Text is interpolated and escaped on
// serialisation; numbered tags are replaced by opts.Components[n] applied to
// their children; basic inline tags become elements; anything else is text.
func Render(msg string, opts Options) []*html.Node {
	container := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
	stack := []frame{{node: container, index: -1}}
	top := func() *frame { return &stack[len(stack)-1] }

	var text strings.Builder
	flush := func() {
		if text.Len() == 0 {
			return
		}
		top().node.AppendChild(&html.Node{Type: html.TextNode, Data: interpolate(text.String(), opts.Values)})
		text.Reset()
	}

	for i := 0; i < len(msg); {
		if msg[i] != '<' {
			next := strings.IndexByte(msg[i:], '<')
			if next < 0 {
				next = len(msg) - i
			}
			text.WriteString(msg[i : i+next])
			i += next
			continue
		}
		m := tagPattern.FindStringSubmatch(msg[i:])
		if m == nil {
			text.WriteByte('<')
			i++
			continue
		}
		raw, closing, name, selfClosing := m[0], m[1] == "/", m[2], m[3] == "/"
		index, numErr := strconv.Atoi(name)
		numbered := numErr == nil
		if !numbered && !basicTags[name] {
			text.WriteString(raw)
			i += len(raw)
			continue
		}
		i += len(raw)

		switch {
		case closing:
			if len(stack) == 1 || top().name != name {
				text.WriteString(raw)
				continue
			}
			flush()
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			closeFrame(f, top().node, opts.Components)
		case selfClosing || name == "br":
			flush()
			if numbered {
				if n := component(opts.Components, index); n != nil {
					top().node.AppendChild(n(nil))
				}
				continue
			}
			top().node.AppendChild(element(name))
		default:
			flush()
			f := frame{name: name, index: -1, raw: raw, numbers: numbered}
			if numbered {
				f.index = index
				f.node = &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
			} else {
				f.node = element(name)
			}
			stack = append(stack, f)
		}
	}
	flush()

	// Unclosed tags: their opening markup becomes text again and their
	// children move up to the parent.
	for len(stack) > 1 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := top().node
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: f.raw})
		for _, child := range detach(f.node) {
			parent.AppendChild(child)
		}
	}
	return detach(container)
}

func closeFrame(f frame, parent *html.Node, components []Component) {
	if !f.numbers {
		parent.AppendChild(f.node)
		return
	}
	children := detach(f.node)
	if n := component(components, f.index); n != nil {
		parent.AppendChild(n(children))
		return
	}
	for _, child := range children {
		parent.AppendChild(child)
	}
}

func component(components []Component, index int) Component {
	if index < 0 || index >= len(components) {
		return nil
	}
	return components[index]
}

func element(name string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: name, DataAtom: atom.Lookup([]byte(name))}
}

func detach(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		out = append(out, c)
		c = next
	}
	return out
}

// interpolate substitutes {{name}} placeholders. Unknown names are left as-is.
func interpolate(s string, values map[string]string) string {
	if len(values) == 0 {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := values[name]; ok {
			return v
		}
		return match
	})
}
