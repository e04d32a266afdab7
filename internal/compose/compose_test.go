package compose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/i18n"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/notice"
	"git.home.luguber.info/inful/docsite/internal/pagetype"
	"git.home.luguber.info/inful/docsite/internal/versions"
)

const body = "# Overview\n\n" +
	"<CustomContent platform=\"tidb\">\n\nSelf-hosted.\n\n</CustomContent>\n\n" +
	"<CustomContent platform=\"tidb-cloud\">\n\nCloud.\n\n</CustomContent>\n\n" +
	"```sql\nSELECT 1;\n```\n"

func newComposer() *Composer {
	catalog := i18n.New(map[string]map[string]string{
		"en": {
			"doc.deprecation.tidb.firstContext":  "TiDB {{curDocVersion}} is no longer maintained.",
			"doc.deprecation.tidb.secondContext": "<0>See {{stableVersion}}</0>.",
		},
	}, "en")
	return &Composer{
		Versions: versions.New(map[string]versions.Status{
			"tidb": {Stable: "v7.1", Deprecated: []string{"v5.0"}, DMR: []string{"v6.5"}},
		}),
		Classifier: pagetype.RuleClassifier{Locales: []string{"en", "zh"}},
		Notices:    notice.Renderer{Translator: catalog, DefaultLocale: "en"},
		Renderer:   markdown.NewRenderer(),
	}
}

func testDoc(version string) (*content.Document, *content.PathConfig) {
	pc := &content.PathConfig{Repo: "tidb", Version: version, Locale: "en"}
	return &content.Document{
		Path:        *pc,
		Name:        "overview",
		FilePath:    "overview.md",
		FrontMatter: content.FrontMatter{Title: "Overview"},
		Body:        []byte(body),
		AvailIn:     content.NewAvailabilitySet(version, "v7.1", "stable"),
		Fingerprint: "fp",
	}, pc
}

func compose(t *testing.T, in Input) (*Page, string) {
	t.Helper()
	page, err := newComposer().Compose(context.Background(), in)
	require.NoError(t, err)
	out, err := page.HTML()
	require.NoError(t, err)
	return page, out
}

func TestCompose_DeprecatedOnline(t *testing.T) {
	doc, pc := testDoc("v5.0")
	page, out := compose(t, Input{Document: doc, PathConfig: pc, BuildType: BuildOnline, Language: "en", PageURL: "/tidb/v5.0/overview"})

	assert.Equal(t, pagetype.TiDB, page.PageType)
	assert.Equal(t, notice.KindDeprecated, page.Notice.Kind)
	assert.Equal(t, "/tidb/stable/overview", page.Notice.TargetLink)
	assert.Equal(t, "Overview", page.Title)
	assert.Equal(t, "fp", page.Fingerprint)

	assert.Contains(t, out, `<div class="container container-lg"><div class="markdown-body"><div class="admonition important">`)
	assert.Contains(t, out, `TiDB v5.0 is no longer maintained. <a href="/tidb/stable/overview">See v7.1</a>.`)
	assert.Contains(t, out, "Self-hosted.")
	assert.NotContains(t, out, "Cloud.")
	assert.Contains(t, out, `<div class="code-block" data-lang="sql">`)

	require.Len(t, page.Commands, 2)
	assert.Equal(t, RewriteAnchors{Locale: "en", Repo: "tidb", Version: "v5.0"}, page.Commands[0])
	assert.Equal(t, CountContributors{Path: *pc, FilePath: "overview.md"}, page.Commands[1])
}

func TestCompose_ArchiveHasNoBanner(t *testing.T) {
	doc, pc := testDoc("v5.0")
	page, out := compose(t, Input{Document: doc, PathConfig: pc, BuildType: BuildArchive, Language: "en", PageURL: "/tidb/v5.0/overview"})
	assert.NotContains(t, out, "admonition important")
	assert.Equal(t, notice.KindNone, page.Notice.Kind)
	assert.Len(t, page.Commands, 2)
}

func TestCompose_StableVersionHasNoBanner(t *testing.T) {
	doc, pc := testDoc("v7.1")
	_, out := compose(t, Input{Document: doc, PathConfig: pc, BuildType: BuildOnline, Language: "en", PageURL: "/tidb/stable/overview"})
	assert.NotContains(t, out, "admonition important")
}

func TestCompose_HideCommitSkipsContributors(t *testing.T) {
	doc, pc := testDoc("v7.1")
	doc.FrontMatter.HideCommit = true
	page, _ := compose(t, Input{Document: doc, PathConfig: pc, BuildType: BuildOnline, Language: "en"})
	require.Len(t, page.Commands, 1)
	assert.Equal(t, "rewrite_anchors", page.Commands[0].Name())
}

func TestCompose_WithoutPathConfig(t *testing.T) {
	doc, _ := testDoc("v5.0")
	page, out := compose(t, Input{Document: doc, BuildType: BuildOnline, Language: "en", PageURL: "/"})
	assert.Empty(t, page.Commands)
	assert.Equal(t, notice.KindNone, page.Notice.Kind)
	assert.Equal(t, pagetype.Home, page.PageType)
	assert.Contains(t, out, `<h1 id="overview">Overview</h1>`)
	// Home pages keep no platform-specific blocks.
	assert.NotContains(t, out, "Self-hosted.")
}

func TestCompose_ClassNamePassthrough(t *testing.T) {
	doc, pc := testDoc("v7.1")
	_, out := compose(t, Input{Document: doc, PathConfig: pc, Language: "en", ClassName: "doc-content"})
	assert.Contains(t, out, `<div class="container container-lg doc-content">`)
}

func TestCompose_UnknownRepositoryFails(t *testing.T) {
	doc, _ := testDoc("v1.0")
	pc := &content.PathConfig{Repo: "tidb-operator", Version: "v1.0", Locale: "en"}
	_, err := newComposer().Compose(context.Background(), Input{Document: doc, PathConfig: pc, BuildType: BuildOnline, Language: "en"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	// Archive builds never consult the table.
	_, err = newComposer().Compose(context.Background(), Input{Document: doc, PathConfig: pc, BuildType: BuildArchive, Language: "en"})
	require.NoError(t, err)
}

func TestCompose_RequiresDocument(t *testing.T) {
	_, err := newComposer().Compose(context.Background(), Input{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestParseBuildType(t *testing.T) {
	bt, err := ParseBuildType("Archive")
	require.NoError(t, err)
	assert.Equal(t, BuildArchive, bt)
	_, err = ParseBuildType("preview")
	require.Error(t, err)
}
