// Package pagetype classifies page URLs into the product area they belong to.
package pagetype

import "strings"

// Type is the product area a page belongs to.
type Type string

const (
	Home        Type = "home"
	TiDB        Type = "tidb"
	TiDBCloud   Type = "tidbcloud"
	TiDBInKylin Type = "tidb-in-kylin"
	Unknown     Type = "unknown"
)

// Key is the comparison form of a type or platform name: lower-case with
// dashes removed, so "TiDB-Cloud" and "tidbcloud" are the same key.
func Key(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "")
}

// Classifier derives a page type from the page language and URL.
type Classifier interface {
	Classify(language, pageURL string) Type
}

// RuleClassifier maps the first path segment after an optional locale
// prefix onto a page type.
type RuleClassifier struct {
	// Locales are the path prefixes stripped before matching.
	Locales []string
	// Repos maps a repository segment to its type. Nil uses DefaultRepos.
	Repos map[string]Type
}

// DefaultRepos is the segment table used when RuleClassifier.Repos is nil.
var DefaultRepos = map[string]Type{
	"tidb":          TiDB,
	"tidbcloud":     TiDBCloud,
	"tidb-in-kylin": TiDBInKylin,
}

// Classify implements Classifier.
func (c RuleClassifier) Classify(language, pageURL string) Type {
	path := pageURL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) > 0 && c.isLocale(segments[0], language) {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return Home
	}
	repos := c.Repos
	if repos == nil {
		repos = DefaultRepos
	}
	if t, ok := repos[strings.ToLower(segments[0])]; ok {
		return t
	}
	return Unknown
}

func (c RuleClassifier) isLocale(segment, language string) bool {
	if language != "" && segment == language {
		return true
	}
	for _, l := range c.Locales {
		if segment == l {
			return true
		}
	}
	return false
}
