// Package versions holds the per-repository version status table: which
// version is stable and which versions are deprecated or in the DMR channel.
package versions

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

var (
	// ErrUnknownRepo is returned by Lookup when the repository has no entry.
	ErrUnknownRepo = stderrors.New("repository has no version status entry")
	// ErrMissingStable is returned by Lookup when an entry has no stable version.
	ErrMissingStable = stderrors.New("version status entry has no stable version")
)

// Status is the version status record of one repository.
type Status struct {
	Stable     string   `json:"stable" yaml:"stable"`
	Deprecated []string `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	DMR        []string `json:"dmr,omitempty" yaml:"dmr,omitempty"`
	// Versions optionally lists every known version; Validate uses it when the
	// caller does not supply versions discovered from content.
	Versions []string `json:"versions,omitempty" yaml:"versions,omitempty"`
}

// IsDeprecated reports whether version is listed as deprecated.
// An empty version is never deprecated.
func (s Status) IsDeprecated(version string) bool {
	return version != "" && slices.Contains(s.Deprecated, version)
}

// IsDMR reports whether version is listed in the DMR channel.
// An empty version is never DMR.
func (s Status) IsDMR(version string) bool {
	return version != "" && slices.Contains(s.DMR, version)
}

// Table maps repository identifiers to their version status. It is read-only
// after construction and safe for concurrent use.
type Table struct {
	entries map[string]Status
}

// New builds a table from entries. The map is copied.
func New(entries map[string]Status) *Table {
	t := &Table{entries: make(map[string]Status, len(entries))}
	for repo, st := range entries {
		t.entries[repo] = Status{
			Stable:     st.Stable,
			Deprecated: slices.Clone(st.Deprecated),
			DMR:        slices.Clone(st.DMR),
			Versions:   slices.Clone(st.Versions),
		}
	}
	return t
}

// document is the on-disk shape: either {"docs": {...}} or the bare map.
type document struct {
	Docs map[string]Status `json:"docs" yaml:"docs"`
}

// Parse decodes a table. Input may be wrapped in a top-level "docs" key (the
// docs.json layout) or be a bare repository map. A top-level "docs" entry is
// read as the wrapper only when every value under it is itself a mapping, so
// a repository named docs survives in the bare layout.
func Parse(data []byte, format string) (*Table, error) {
	unmarshal := yaml.Unmarshal
	if format == "json" {
		unmarshal = json.Unmarshal
	}
	var top map[string]any
	if err := unmarshal(data, &top); err != nil {
		return nil, parseError(err, format)
	}
	if docs, ok := top["docs"].(map[string]any); ok && isRepoMap(docs) {
		var wrapped document
		if err := unmarshal(data, &wrapped); err != nil {
			return nil, parseError(err, format)
		}
		return New(wrapped.Docs), nil
	}
	var bare map[string]Status
	if err := unmarshal(data, &bare); err != nil {
		return nil, parseError(err, format)
	}
	return New(bare), nil
}

func isRepoMap(m map[string]any) bool {
	for _, v := range m {
		if _, ok := v.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func parseError(err error, format string) error {
	return errors.WrapError(err, errors.CategoryConfig, "failed to parse version status table").
		WithContext("format", format).
		Build()
}

// Load reads a table from a .json, .yaml or .yml file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read version status table").
			WithContext("path", path).
			Build()
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return Parse(data, format)
}

// Lookup returns the status entry of repo. Unknown repositories and entries
// without a stable version are configuration defects.
func (t *Table) Lookup(repo string) (Status, error) {
	st, ok := t.entries[repo]
	if !ok {
		return Status{}, errors.WrapError(ErrUnknownRepo, errors.CategoryConfig, "missing configuration entry").
			WithContext("repository", repo).
			Build()
	}
	if st.Stable == "" {
		return Status{}, errors.WrapError(ErrMissingStable, errors.CategoryConfig, "missing configuration entry").
			WithContext("repository", repo).
			Build()
	}
	return st, nil
}

// Has reports whether repo has an entry.
func (t *Table) Has(repo string) bool {
	_, ok := t.entries[repo]
	return ok
}

// Repos returns the repository identifiers in sorted order.
func (t *Table) Repos() []string {
	repos := make([]string, 0, len(t.entries))
	for repo := range t.entries {
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	return repos
}

// Validate checks every entry: stable must be present and every deprecated
// or dmr version must be a known version of the repository. Known versions
// come from known[repo] when present, otherwise from the entry's own
// Versions list; with neither, the subset check is skipped. All violations
// are joined into one validation error.
func (t *Table) Validate(known map[string][]string) error {
	var problems []error
	for _, repo := range t.Repos() {
		st := t.entries[repo]
		if st.Stable == "" {
			problems = append(problems, fmt.Errorf("%s: stable version is not set", repo))
		}
		versions := known[repo]
		if len(versions) == 0 {
			versions = st.Versions
		}
		if len(versions) == 0 {
			continue
		}
		for _, v := range st.Deprecated {
			if !slices.Contains(versions, v) {
				problems = append(problems, fmt.Errorf("%s: deprecated version %q is not a known version", repo, v))
			}
		}
		for _, v := range st.DMR {
			if !slices.Contains(versions, v) {
				problems = append(problems, fmt.Errorf("%s: dmr version %q is not a known version", repo, v))
			}
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.WrapError(stderrors.Join(problems...), errors.CategoryValidation, "version status table is invalid").
		WithContext("problems", len(problems)).
		Build()
}
