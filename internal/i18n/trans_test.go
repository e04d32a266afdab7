package i18n

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func renderString(t *testing.T, nodes []*html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	for _, n := range nodes {
		require.NoError(t, html.Render(&buf, n))
	}
	return buf.String()
}

func link(href string) Component {
	return func(children []*html.Node) *html.Node {
		a := &html.Node{Type: html.ElementNode, Data: "a", DataAtom: atom.A, Attr: []html.Attribute{{Key: "href", Val: href}}}
		for _, c := range children {
			a.AppendChild(c)
		}
		return a
	}
}

func TestRender_InterpolatesAndEscapesValues(t *testing.T) {
	out := Render("TiDB {{curDocVersion}} is <end-of-life>.", Options{Values: map[string]string{"curDocVersion": "v5.0 & <b>"}})
	assert.Equal(t, "TiDB v5.0 &amp; &lt;b&gt; is &lt;end-of-life&gt;.", renderString(t, out))
}

func TestRender_NumberedComponent(t *testing.T) {
	out := Render("Use <0>the stable version ({{stableVersion}})</0> instead.", Options{
		Components: []Component{link("/tidb/stable/overview")},
		Values:     map[string]string{"stableVersion": "v7.1"},
	})
	assert.Equal(t, `Use <a href="/tidb/stable/overview">the stable version (v7.1)</a> instead.`, renderString(t, out))
}

func TestRender_MissingComponentKeepsChildren(t *testing.T) {
	out := Render("See <1>here</1>.", Options{Components: []Component{link("/x")}})
	assert.Equal(t, "See here.", renderString(t, out))
}

func TestRender_SelfClosingAndBasicTags(t *testing.T) {
	out := Render("a<br/>b <strong>c</strong><0/>", Options{Components: []Component{link("/y")}})
	assert.Equal(t, `a<br/>b <strong>c</strong><a href="/y"></a>`, renderString(t, out))
}

func TestRender_UnbalancedTagsDegradeToText(t *testing.T) {
	out := Render("x <0>open and </strong> done", Options{Components: []Component{link("/z")}})
	assert.Equal(t, "x &lt;0&gt;open and &lt;/strong&gt; done", renderString(t, out))
}

func TestRender_UnknownPlaceholderIsKept(t *testing.T) {
	out := Render("{{missing}} stays", Options{Values: map[string]string{"other": "x"}})
	assert.Equal(t, "{{missing}} stays", renderString(t, out))
}

func TestCatalog_LookupFallbackAndMatch(t *testing.T) {
	c := New(map[string]map[string]string{
		"en": {"doc.deprecation.tidb.firstContext": "EN first", "only.en": "english"},
		"zh": {"doc.deprecation.tidb.firstContext": "ZH first"},
		"ja": {},
	}, "en")

	assert.Equal(t, "zh", c.Match("zh-CN"))
	assert.Equal(t, "en", c.Match("en-US"))
	assert.Equal(t, "en", c.Match(""))
	assert.Equal(t, "en", c.Languages()[0])

	msg, ok := c.Lookup("zh", "doc.deprecation.tidb.firstContext")
	require.True(t, ok)
	assert.Equal(t, "ZH first", msg)

	msg, ok = c.Lookup("zh", "only.en")
	require.True(t, ok)
	assert.Equal(t, "english", msg)

	_, ok = c.Lookup("ja", "nope")
	assert.False(t, ok)
	assert.Equal(t, "nope", renderString(t, c.Translate("ja", "nope", Options{})))
}

func TestLoad_FlattensNestedCatalogs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "en"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en", "translation.json"),
		[]byte(`{"doc":{"dmr":{"tidb":{"firstContext":"DMR {{curDocVersion}}"}}},"count":3}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zh.yaml"),
		[]byte("doc:\n  dmr:\n    tidb:\n      firstContext: 中文\n"), 0o600))

	c, err := Load(dir, "en")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en", "zh"}, c.Languages())

	msg, ok := c.Lookup("en", "doc.dmr.tidb.firstContext")
	require.True(t, ok)
	assert.Equal(t, "DMR {{curDocVersion}}", msg)
	msg, _ = c.Lookup("en", "count")
	assert.Equal(t, "3", msg)
	msg, _ = c.Lookup("zh", "doc.dmr.tidb.firstContext")
	assert.Equal(t, "中文", msg)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, err := Load(t.TempDir(), "en")
	require.Error(t, err)
}
