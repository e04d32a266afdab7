package testing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/versions"
)

// BannerMessages are the English notice messages most tests need.
var BannerMessages = map[string]string{
	"doc.deprecation.tidb.firstContext":  "This document is for TiDB {{curDocVersion}}, which is no longer maintained.",
	"doc.deprecation.tidb.secondContext": "<0>View TiDB {{stableVersion}}</0>.",
	"doc.dmr.tidb.firstContext":          "TiDB {{curDocVersion}} is a <0>Development Milestone Release</0>.",
	"doc.dmr.tidb.secondContext":         "<0>Use TiDB {{stableVersion}}</0> in production.",
}

// SiteBuilder provides a fluent interface for creating a site on disk.
type SiteBuilder struct {
	t        *testing.T
	dir      string
	cfg      *config.Config
	versions map[string]versions.Status
	messages map[string]map[string]string
}

// NewSiteBuilder creates a builder rooted in a fresh temporary directory.
// The configuration starts from config.Default with every path inside it.
func NewSiteBuilder(t *testing.T) *SiteBuilder {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Site.Title = "Test Docs"
	cfg.Site.Locales = []string{"en", "zh"}
	cfg.Content.Root = filepath.Join(dir, "content")
	cfg.Content.VersionTable = filepath.Join(dir, "docs.json")
	cfg.Content.LocalesDir = filepath.Join(dir, "locale")
	cfg.Output.Directory = filepath.Join(dir, "public")
	cfg.Contributors.Store.DSN = filepath.Join(dir, "contributors.db")
	return &SiteBuilder{
		t:        t,
		dir:      dir,
		cfg:      cfg,
		versions: map[string]versions.Status{},
		messages: map[string]map[string]string{"en": BannerMessages},
	}
}

// Dir returns the site's root directory.
func (b *SiteBuilder) Dir() string { return b.dir }

// WithVersions sets the version status entry of repo.
func (b *SiteBuilder) WithVersions(repo string, st versions.Status) *SiteBuilder {
	b.versions[repo] = st
	return b
}

// WithMessages replaces the catalog of lang.
func (b *SiteBuilder) WithMessages(lang string, msgs map[string]string) *SiteBuilder {
	b.messages[lang] = msgs
	return b
}

// WithDocument writes a Markdown file at rel below the content root
// ("en/tidb/v5.0/overview.md").
func (b *SiteBuilder) WithDocument(rel, body string) *SiteBuilder {
	b.t.Helper()
	b.write(filepath.Join(b.cfg.Content.Root, filepath.FromSlash(rel)), []byte(body))
	return b
}

// WithBuildType sets site.build_type.
func (b *SiteBuilder) WithBuildType(bt string) *SiteBuilder {
	b.cfg.Site.BuildType = bt
	return b
}

// WithUnversioned marks repositories as unversioned.
func (b *SiteBuilder) WithUnversioned(repos ...string) *SiteBuilder {
	b.cfg.Site.UnversionedRepos = append(b.cfg.Site.UnversionedRepos, repos...)
	return b
}

// Configure applies fn to the configuration before it is returned.
func (b *SiteBuilder) Configure(fn func(*config.Config)) *SiteBuilder {
	fn(b.cfg)
	return b
}

// Build writes the version table and catalogs and returns the validated
// configuration.
func (b *SiteBuilder) Build() *config.Config {
	b.t.Helper()
	table := map[string]any{"docs": b.versions}
	raw, err := json.Marshal(table)
	if err != nil {
		b.t.Fatalf("failed to encode version table: %v", err)
	}
	b.write(b.cfg.Content.VersionTable, raw)

	for lang, msgs := range b.messages {
		raw, err := json.Marshal(msgs)
		if err != nil {
			b.t.Fatalf("failed to encode %s catalog: %v", lang, err)
		}
		b.write(filepath.Join(b.cfg.Content.LocalesDir, lang, "translation.json"), raw)
	}
	if err := os.MkdirAll(b.cfg.Content.Root, testDirPermissions); err != nil {
		b.t.Fatalf("failed to create content root: %v", err)
	}
	if err := b.cfg.Validate(); err != nil {
		b.t.Fatalf("invalid test configuration: %v", err)
	}
	return b.cfg
}

func (b *SiteBuilder) write(path string, data []byte) {
	b.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), testDirPermissions); err != nil {
		b.t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, testFilePermissions); err != nil {
		b.t.Fatalf("failed to write %s: %v", path, err)
	}
}
