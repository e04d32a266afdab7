package lint

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/anchor"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/versions"
)

// Linter checks a loaded site.
type Linter struct {
	Versions *versions.Table
	Index    *content.Index
	// TablePath names the version table in issues.
	TablePath string
}

// Run applies every rule and returns the issues ordered by rule then file.
func (l *Linter) Run() *Result {
	res := &Result{FilesTotal: l.Index.Len()}
	l.checkTable(res)
	l.checkDocuments(res)
	slices.SortStableFunc(res.Issues, func(a, b Issue) int {
		if c := strings.Compare(a.Rule, b.Rule); c != 0 {
			return c
		}
		return strings.Compare(a.File, b.File)
	})
	return res
}

// Err summarizes res as a validation error, or nil when it has no errors.
func (res *Result) Err() error {
	if !res.HasErrors() {
		return nil
	}
	return errors.ValidationError("site check failed").
		WithContext("errors", res.ErrorCount()).
		WithContext("warnings", res.WarningCount()).
		Build()
}

func (l *Linter) checkTable(res *Result) {
	known := l.Index.KnownVersions()
	if err := l.Versions.Validate(known); err != nil {
		for _, p := range flatten(err) {
			res.add(SeverityError, RuleVersionTable, l.TablePath, p.Error(), "")
		}
	}
	for _, repo := range l.Index.Repos() {
		st, err := l.Versions.Lookup(repo)
		if err != nil {
			if !l.Versions.Has(repo) {
				res.add(SeverityError, RuleMissingEntry, l.TablePath,
					fmt.Sprintf("repository %q has content but no version table entry", repo), repo)
			}
			continue
		}
		if vs, versioned := known[repo]; versioned && !slices.Contains(vs, st.Stable) {
			res.add(SeverityWarning, RuleStableContent, l.TablePath,
				fmt.Sprintf("stable version %q of %q has no content directory", st.Stable, repo), repo)
		}
	}
}

func (l *Linter) checkDocuments(res *Result) {
	for _, doc := range l.Index.Documents() {
		file := l.relative(doc)
		if strings.TrimSpace(doc.FrontMatter.Title) == "" {
			res.add(SeverityInfo, RuleMissingTitle, file, "document has no title in its front matter", "")
		}
		links, err := markdown.ExtractLinks(doc.Body, markdown.Options{SkipImages: true})
		if err != nil {
			res.add(SeverityWarning, RuleInvalidContent, file, err.Error(), "")
			continue
		}
		for _, link := range links {
			name, ok := markdownTarget(link.Destination)
			if !ok {
				continue
			}
			if _, err := l.Index.Lookup(doc.Path, name); err != nil {
				res.add(SeverityWarning, RuleBrokenLink, file,
					fmt.Sprintf("link points at %q which does not exist in %s", name, describe(doc.Path)), link.Destination)
			}
		}
	}
}

func (l *Linter) relative(doc *content.Document) string {
	if rel, err := filepath.Rel(l.Index.Root(), doc.SourcePath); err == nil {
		return filepath.ToSlash(rel)
	}
	return doc.SourcePath
}

// markdownTarget reports the page name of a relative .md link.
func markdownTarget(dest string) (string, bool) {
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" || strings.HasPrefix(u.Path, "/") {
		return "", false
	}
	if !strings.EqualFold(path.Ext(u.Path), ".md") {
		return "", false
	}
	return anchor.LinkTarget(u.Path), true
}

func describe(pc content.PathConfig) string {
	parts := []string{pc.Locale, pc.Repo}
	if pc.Version != "" {
		parts = append(parts, pc.Version)
	}
	return strings.Join(parts, "/")
}

// flatten unwraps a classified error around an errors.Join into its parts.
func flatten(err error) []error {
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			return joined.Unwrap()
		}
	}
	return []error{err}
}
