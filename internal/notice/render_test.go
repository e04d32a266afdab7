package notice

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docsite/internal/i18n"
)

func testCatalog() *i18n.Catalog {
	return i18n.New(map[string]map[string]string{
		"en": {
			"doc.deprecation.tidb.firstContext":  "This document is for TiDB {{curDocVersion}}, which is no longer maintained.",
			"doc.deprecation.tidb.secondContext": "<0>View TiDB {{stableVersion}}</0>.",
			"doc.dmr.tidb.firstContext":          "TiDB {{curDocVersion}} is a <0>DMR</0>.",
			"doc.dmr.tidb.secondContext":         "<0>Use TiDB {{stableVersion}}</0> in production.",
		},
		"zh": {
			"doc.deprecation.tidb.firstContext":  "本文档适用于 TiDB {{curDocVersion}}。",
			"doc.deprecation.tidb.secondContext": "<0>查看 TiDB {{stableVersion}}</0>。",
		},
	}, "en")
}

func renderHTML(t *testing.T, nodes []*html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	for _, n := range nodes {
		require.NoError(t, html.Render(&buf, n))
	}
	return buf.String()
}

func TestRender_NoneIsEmpty(t *testing.T) {
	r := Renderer{Translator: testCatalog(), DefaultLocale: "en"}
	assert.Nil(t, r.Render(Decision{Kind: KindNone}))
}

func TestRender_DeprecatedEnglish(t *testing.T) {
	r := Renderer{Translator: testCatalog(), DefaultLocale: "en"}
	out := renderHTML(t, r.Render(Decision{
		Kind:          KindDeprecated,
		Repo:          "tidb",
		Version:       "v5.0",
		StableVersion: "v7.1",
		TargetLink:    "/tidb/stable/overview",
		Language:      "en",
	}))
	assert.Contains(t, out, `class="admonition important"`)
	assert.Contains(t, out, `<p>This document is for TiDB v5.0, which is no longer maintained. <a href="/tidb/stable/overview">View TiDB v7.1</a>.</p>`)
}

func TestRender_DMRLinksVersioningPage(t *testing.T) {
	r := Renderer{Translator: testCatalog(), DefaultLocale: "en"}
	out := renderHTML(t, r.Render(Decision{
		Kind:          KindDMR,
		Repo:          "tidb",
		Version:       "v6.5",
		StableVersion: "v7.1",
		TargetLink:    "/tidb/stable",
		DMRInfoLink:   "/tidb/v6.5/versioning",
		Language:      "en",
	}))
	assert.Contains(t, out, `TiDB v6.5 is a <a href="/tidb/v6.5/versioning">DMR</a>. <a href="/tidb/stable">Use TiDB v7.1</a> in production.`)
}

func TestRender_NonDefaultLocaleHasNoSeparatorAndPrefixedLinks(t *testing.T) {
	r := Renderer{Translator: testCatalog(), DefaultLocale: "en"}
	out := renderHTML(t, r.Render(Decision{
		Kind:          KindDeprecated,
		Repo:          "tidb",
		Version:       "v5.0",
		StableVersion: "v7.1",
		TargetLink:    "/tidb/stable/overview",
		Language:      "zh",
	}))
	assert.Contains(t, out, `<p>本文档适用于 TiDB v5.0。<a href="/zh/tidb/stable/overview">查看 TiDB v7.1</a>。</p>`)
}

func TestRender_MissingMessageFallsBackToKey(t *testing.T) {
	r := Renderer{Translator: i18n.New(nil, "en")}
	out := renderHTML(t, r.Render(Decision{Kind: KindDeprecated, Repo: "tidb", Language: "en"}))
	assert.Contains(t, out, "doc.deprecation.tidb.firstContext doc.deprecation.tidb.secondContext")
}
