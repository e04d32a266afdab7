package versions

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

const docsJSON = `{
  "docs": {
    "tidb": {
      "stable": "v7.1",
      "deprecated": ["v5.0", "v4.0"],
      "dmr": ["v6.5"]
    },
    "tidbcloud": {
      "stable": "master"
    }
  }
}`

func TestParse_DocsJSONLayout(t *testing.T) {
	table, err := Parse([]byte(docsJSON), "json")
	require.NoError(t, err)
	assert.Equal(t, []string{"tidb", "tidbcloud"}, table.Repos())

	st, err := table.Lookup("tidb")
	require.NoError(t, err)
	assert.Equal(t, "v7.1", st.Stable)
	assert.True(t, st.IsDeprecated("v5.0"))
	assert.True(t, st.IsDMR("v6.5"))
	assert.False(t, st.IsDeprecated("v7.1"))
}

func TestParse_BareYAML(t *testing.T) {
	table, err := Parse([]byte("tikv:\n  stable: v7.1\n  deprecated: [v4.0]\n"), "yaml")
	require.NoError(t, err)
	st, err := table.Lookup("tikv")
	require.NoError(t, err)
	assert.Equal(t, []string{"v4.0"}, st.Deprecated)
}

func TestParse_BareRepositoryNamedDocs(t *testing.T) {
	table, err := Parse([]byte("docs:\n  stable: v1.0\ntidb:\n  stable: v7.1\n"), "yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs", "tidb"}, table.Repos())

	st, err := table.Lookup("docs")
	require.NoError(t, err)
	assert.Equal(t, "v1.0", st.Stable)

	table, err = Parse([]byte(`{"docs": {"stable": "v1.0"}, "tidb": {"stable": "v7.1"}}`), "json")
	require.NoError(t, err)
	assert.True(t, table.Has("docs"))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("{not json"), "json")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_SelectsFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.json")
	require.NoError(t, os.WriteFile(path, []byte(docsJSON), 0o600))

	table, err := Load(path)
	require.NoError(t, err)
	assert.True(t, table.Has("tidbcloud"))

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestStatus_AbsentVersionIsNeverListed(t *testing.T) {
	st := Status{Stable: "v7.1", Deprecated: []string{""}, DMR: []string{""}}
	assert.False(t, st.IsDeprecated(""))
	assert.False(t, st.IsDMR(""))
}

func TestLookup_UnknownRepo(t *testing.T) {
	table := New(map[string]Status{"tidb": {Stable: "v7.1"}})
	_, err := table.Lookup("unknown")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrUnknownRepo))
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLookup_MissingStable(t *testing.T) {
	table := New(map[string]Status{"tidb": {Deprecated: []string{"v5.0"}}})
	_, err := table.Lookup("tidb")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrMissingStable))
}

func TestNew_CopiesInput(t *testing.T) {
	entries := map[string]Status{"tidb": {Stable: "v7.1", Deprecated: []string{"v5.0"}}}
	table := New(entries)
	entries["tidb"].Deprecated[0] = "mutated"

	st, err := table.Lookup("tidb")
	require.NoError(t, err)
	assert.Equal(t, []string{"v5.0"}, st.Deprecated)
}

func TestValidate(t *testing.T) {
	table := New(map[string]Status{
		"tidb":     {Stable: "v7.1", Deprecated: []string{"v5.0", "v3.0"}, DMR: []string{"v6.6"}},
		"tikv":     {Deprecated: []string{"v4.0"}, Versions: []string{"v4.0", "v7.1"}},
		"operator": {Stable: "v1.5", Deprecated: []string{"v0.9"}},
	})
	err := table.Validate(map[string][]string{"tidb": {"v5.0", "v6.5", "v7.1"}})
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `tidb: deprecated version "v3.0" is not a known version`)
	assert.Contains(t, msg, `tidb: dmr version "v6.6" is not a known version`)
	assert.Contains(t, msg, "tikv: stable version is not set")
	// operator has no known versions, so its lists are not checked.
	assert.NotContains(t, msg, "operator")
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	ok := New(map[string]Status{"tidb": {Stable: "v7.1", Deprecated: []string{"v5.0"}}})
	require.NoError(t, ok.Validate(map[string][]string{"tidb": {"v5.0", "v7.1"}}))
}
