package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "online", c.Site.BuildType)
	assert.Equal(t, "en", c.Site.DefaultLocale)
	assert.Equal(t, []string{"en"}, c.Site.Locales)
	assert.Equal(t, filepath.Join("docs", "docs.json"), c.Content.VersionTable)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "sqlite", c.Contributors.Store.Driver)
	assert.Equal(t, "fs", c.Output.Driver)
	assert.Equal(t, "exponential", c.Output.Retry.Backoff)
	assert.Zero(t, c.Output.Retry.MaxRetries)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("DOCSITE_TEST_BUCKET", "docs-archive")
	path := filepath.Join(t.TempDir(), "docsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
site:
  build_type: archive
  default_locale: en
  locales: [en, zh]
output:
  driver: s3
  s3:
    bucket: ${DOCSITE_TEST_BUCKET}
    path_style: true
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "archive", c.Site.BuildType)
	assert.Equal(t, "docs-archive", c.Output.S3.Bucket)
	assert.True(t, c.Output.S3.PathStyle)
	assert.Equal(t, "docs", c.Content.Root)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestParse_ValidationCollectsProblems(t *testing.T) {
	_, err := Parse([]byte(`
site:
  build_type: preview
  default_locale: de
  locales: [en]
server:
  watch_debounce: soon
output:
  driver: s3
  retry:
    backoff: random
    max_retries: -1
`))
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	problems, _ := ce.Context().GetString("problems")
	assert.Contains(t, problems, "site.build_type")
	assert.Contains(t, problems, "site.default_locale")
	assert.Contains(t, problems, "server.watch_debounce")
	assert.Contains(t, problems, "output.s3.bucket")
	assert.Contains(t, problems, "output.retry.backoff")
	assert.Contains(t, problems, "output.retry.max_retries")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("site: ["))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsite.yaml")
	require.NoError(t, Init(path, false))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "zh", "ja"}, c.Site.Locales)
	assert.True(t, c.Contributors.Enabled)
	assert.Equal(t, 3, c.Output.Retry.MaxRetries)

	err = Init(path, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.NoError(t, Init(path, true))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "500ms", Default().Server.WatchDebounce)
	assert.Equal(t, int64(500_000_000), Duration("500ms").Nanoseconds())
}
