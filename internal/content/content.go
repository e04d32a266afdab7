// Package content indexes the Markdown documents of the site and describes
// which document instance a page renders.
package content

import (
	"sort"
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
)

const (
	// IndexName is the page name of a section root document.
	IndexName = "_index"
	// ChannelStable is the release channel alias of a repository's stable version.
	ChannelStable = "stable"
	// ChannelDev is the development channel.
	ChannelDev = "dev"
)

// PathConfig identifies the document instance being rendered.
type PathConfig struct {
	Repo    string `json:"repo" yaml:"repo"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Locale  string `json:"locale" yaml:"locale"`
}

// AvailabilitySet is the set of release channels a document name exists in.
type AvailabilitySet map[string]struct{}

// NewAvailabilitySet builds a set from channel names.
func NewAvailabilitySet(channels ...string) AvailabilitySet {
	s := make(AvailabilitySet, len(channels))
	for _, c := range channels {
		s[c] = struct{}{}
	}
	return s
}

// Has reports membership; a nil set has no members.
func (s AvailabilitySet) Has(channel string) bool {
	_, ok := s[channel]
	return ok
}

// Sorted returns the channels in sorted order.
func (s AvailabilitySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// FrontMatter is the per-document metadata the renderer understands.
type FrontMatter struct {
	Title      string   `yaml:"title"`
	Summary    string   `yaml:"summary,omitempty"`
	HideCommit bool     `yaml:"hide_commit,omitempty"`
	Aliases    []string `yaml:"aliases,omitempty"`
}

// Document is one Markdown file of one repository version in one locale.
type Document struct {
	Path PathConfig
	// Name is the slash-separated page name without extension ("overview", "sql/_index").
	Name string
	// FilePath is the file path relative to the version root ("overview.md").
	FilePath string
	// SourcePath is the absolute path on disk.
	SourcePath  string
	FrontMatter FrontMatter
	Body        []byte
	AvailIn     AvailabilitySet
	URL         string
	Fingerprint string
}

// Parse splits a raw Markdown file into front matter and body and computes
// its content fingerprint.
func Parse(raw []byte) (FrontMatter, []byte, string, error) {
	var fm FrontMatter
	rawFM, body, had, err := frontmatter.Split(raw)
	if err != nil {
		return fm, nil, "", errors.WrapError(err, errors.CategoryContent, "invalid front matter").Build()
	}
	if had && len(strings.TrimSpace(string(rawFM))) > 0 {
		if err := yaml.Unmarshal(rawFM, &fm); err != nil {
			return fm, nil, "", errors.WrapError(err, errors.CategoryContent, "invalid front matter").Build()
		}
	}
	fingerprint := mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(rawFM), "\n"), string(body))
	return fm, body, fingerprint, nil
}

// PageURL is the canonical URL of a page. The default locale carries no
// prefix, the stable version is addressed as "stable" and section roots
// drop their "_index" segment.
func PageURL(pc PathConfig, name, stable, defaultLocale string) string {
	var b strings.Builder
	if pc.Locale != "" && pc.Locale != defaultLocale {
		b.WriteString("/" + pc.Locale)
	}
	b.WriteString("/" + pc.Repo)
	if pc.Version != "" {
		if pc.Version == stable {
			b.WriteString("/" + ChannelStable)
		} else {
			b.WriteString("/" + pc.Version)
		}
	}
	if name == IndexName {
		name = ""
	}
	name = strings.TrimSuffix(name, "/"+IndexName)
	if name != "" {
		b.WriteString("/" + name)
	}
	return b.String()
}
