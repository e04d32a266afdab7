// Package anchor repairs links in rendered page markup: same-page fragments
// that do not match a heading id exactly, and relative links to Markdown
// sources.
package anchor

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Rewriter rewrites anchors in place. It is stateless apart from its
// configuration and safe for concurrent use on distinct trees.
type Rewriter struct {
	// DefaultLocale is the locale whose URLs carry no prefix.
	DefaultLocale string
}

// Rewrite fixes the links below root for a page of repo at version in
// locale and returns how many hrefs changed. Running it twice changes
// nothing the second time.
func (rw Rewriter) Rewrite(root *html.Node, locale, repo, version string) int {
	ids, byKey := collectIDs(root)
	changed := 0
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "a" {
			return
		}
		for i, a := range n.Attr {
			if a.Key != "href" {
				continue
			}
			next, ok := rw.rewriteHref(a.Val, ids, byKey, locale, repo, version)
			if ok && next != a.Val {
				n.Attr[i].Val = next
				changed++
			}
		}
	})
	return changed
}

func (rw Rewriter) rewriteHref(href string, ids map[string]struct{}, byKey map[string]string, locale, repo, version string) (string, bool) {
	if frag, ok := strings.CutPrefix(href, "#"); ok {
		if frag == "" {
			return "", false
		}
		if decoded, err := url.PathUnescape(frag); err == nil {
			frag = decoded
		}
		if _, exists := ids[frag]; exists {
			return "", false
		}
		if id, found := byKey[Normalize(frag)]; found {
			return "#" + id, true
		}
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" || strings.HasPrefix(u.Path, "/") {
		return "", false
	}
	if !strings.EqualFold(path.Ext(u.Path), ".md") {
		return "", false
	}
	return rw.pageURL(u, locale, repo, version), true
}

// LinkTarget returns the page name a relative Markdown link path points
// at. Relative segments are resolved from the version root since pages are
// addressed flat below it: "../sql/select.md" names "sql/select".
func LinkTarget(linkPath string) string {
	p := strings.TrimSuffix(linkPath, path.Ext(linkPath))
	for {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(p, "./"), "../")
		if trimmed == p {
			break
		}
		p = trimmed
	}
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// pageURL maps a relative Markdown link onto the page URL of the same
// repository and version.
func (rw Rewriter) pageURL(u *url.URL, locale, repo, version string) string {
	p := "/" + LinkTarget(u.Path)
	if path.Base(p) == "_index" {
		p = path.Dir(p)
	}

	var b strings.Builder
	if locale != "" && locale != rw.DefaultLocale {
		b.WriteString("/" + locale)
	}
	b.WriteString("/" + repo)
	if version != "" {
		b.WriteString("/" + version)
	}
	if p != "/" {
		b.WriteString(p)
	}
	if u.Fragment != "" {
		b.WriteString("#" + strings.ToLower(u.Fragment))
	}
	return b.String()
}

// Normalize reduces a fragment or heading id to its comparison key:
// markup removed, lower-cased, letters and digits only.
func Normalize(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// collectIDs returns every element id and, per normalised key, the first
// heading (or other element) id carrying it.
func collectIDs(root *html.Node) (map[string]struct{}, map[string]string) {
	ids := map[string]struct{}{}
	byKey := map[string]string{}
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		id := attr(n, "id")
		if id == "" {
			return
		}
		ids[id] = struct{}{}
		if key := Normalize(id); key != "" {
			if _, taken := byKey[key]; !taken {
				byKey[key] = id
			}
		}
	})
	return ids, byKey
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
