package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/publish"
	"git.home.luguber.info/inful/docsite/internal/retry"
	"git.home.luguber.info/inful/docsite/internal/site"
	dtesting "git.home.luguber.info/inful/docsite/internal/testing"
	"git.home.luguber.info/inful/docsite/internal/versions"
)

// writeSite builds a small site and writes its configuration next to it.
func writeSite(t *testing.T, b *dtesting.SiteBuilder) *CLI {
	t.Helper()
	cfg := b.Build()
	raw, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(b.Dir(), "docsite.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return &CLI{Config: path}
}

func validSite(t *testing.T) *dtesting.SiteBuilder {
	return dtesting.NewSiteBuilder(t).
		WithVersions("tidb", versions.Status{Stable: "v7.1", Deprecated: []string{"v5.0"}}).
		WithDocument("en/tidb/v7.1/overview.md", "---\ntitle: Overview\n---\n# Overview\n").
		WithDocument("en/tidb/v5.0/overview.md", "---\ntitle: Overview\n---\n# Overview\n")
}

func TestInitCmd(t *testing.T) {
	root := &CLI{Config: filepath.Join(t.TempDir(), "docsite.yaml")}
	require.NoError(t, (&InitCmd{}).Run(&Global{}, root))

	cfg, err := config.Load(root.Config)
	require.NoError(t, err)
	assert.Equal(t, "PingCAP Docs", cfg.Site.Title)

	err = (&InitCmd{}).Run(&Global{}, root)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.NoError(t, (&InitCmd{Force: true}).Run(&Global{}, root))
}

func TestCheckCmd(t *testing.T) {
	root := writeSite(t, validSite(t))
	require.NoError(t, (&CheckCmd{Format: "json"}).Run(&Global{}, root))

	broken := writeSite(t, validSite(t).WithDocument("en/tikv/v6.0/overview.md", "# TiKV\n"))
	err := (&CheckCmd{Format: "text"}).Run(&Global{}, broken)
	require.Error(t, err)
	assert.Equal(t, 2, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestRenderCmd(t *testing.T) {
	b := validSite(t)
	root := writeSite(t, b)
	out := filepath.Join(b.Dir(), "out", "page.html")

	require.NoError(t, (&RenderCmd{URL: "/tidb/v5.0/overview", Output: out}).Run(&Global{}, root))
	fa := dtesting.NewFileAssertions(t, b.Dir())
	fa.AssertFileContains("out/page.html", "no longer maintained")

	require.NoError(t, (&RenderCmd{URL: "/tidb/v5.0/overview", Output: out, Archive: true}).Run(&Global{}, root))
	fa.AssertFileNotContains("out/page.html", "no longer maintained")

	err := (&RenderCmd{URL: "/tidb/v5.0/missing"}).Run(&Global{}, root)
	require.Error(t, err)
	assert.Equal(t, 3, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestBuildCmd(t *testing.T) {
	b := validSite(t)
	root := writeSite(t, b)
	out := filepath.Join(b.Dir(), "site")

	require.NoError(t, (&BuildCmd{Output: out}).Run(&Global{}, root))
	fa := dtesting.NewFileAssertions(t, out)
	fa.AssertFileExists("tidb/stable/overview/index.html")
	fa.AssertFileContains("tidb/v5.0/overview/index.html", "no longer maintained")
	fa.AssertFileContains(site.ReportKey, `"pages": 2`, `"notices": 1`)
}

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestBuildCmd_LogsConfiguredBuildType(t *testing.T) {
	logs := captureLogs(t)
	root := writeSite(t, validSite(t))
	require.NoError(t, (&BuildCmd{Driver: "memory"}).Run(&Global{}, root))
	assert.Contains(t, logs.String(), "Build command completed")
	assert.Contains(t, logs.String(), "build_type=online")
}

func TestBuildCmd_ArchiveIntoMemory(t *testing.T) {
	logs := captureLogs(t)
	root := writeSite(t, validSite(t))
	require.NoError(t, (&BuildCmd{Archive: true, Driver: "memory"}).Run(&Global{}, root))
	assert.Contains(t, logs.String(), "build_type=archive")
	assert.NotContains(t, logs.String(), "build_type=online")
}

func TestContributorsWorkerCmd_RequiresNATS(t *testing.T) {
	root := writeSite(t, validSite(t))
	err := (&ContributorsWorkerCmd{}).Run(&Global{}, root)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestPublishConfig(t *testing.T) {
	pc := publishConfig(config.OutputConfig{
		Driver:    "s3",
		Directory: "public",
		S3:        config.S3Config{Bucket: "docs", Region: "us-west-2", Prefix: "archive/v5.0", PathStyle: true},
		Retry:     config.RetryConfig{Backoff: "fixed", Initial: "2s", Max: "10s", MaxRetries: 4},
	})
	assert.Equal(t, publish.DriverS3, pc.Driver)
	assert.Equal(t, "docs", pc.S3.Bucket)
	assert.Equal(t, "archive/v5.0", pc.S3.Prefix)
	assert.True(t, pc.S3.PathStyle)
	assert.Equal(t, retry.Policy{Mode: retry.BackoffFixed, Initial: 2 * time.Second, Max: 10 * time.Second, MaxRetries: 4}, pc.Retry)
}
