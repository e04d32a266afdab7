package content

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// ErrNotFound is wrapped by lookups that find no document.
var ErrNotFound = stderrors.New("document not found")

// StableResolver reports the stable version of a repository ("" if unknown).
type StableResolver func(repo string) string

// IndexOptions configures how the content tree is interpreted.
type IndexOptions struct {
	DefaultLocale string
	// Unversioned repositories keep their documents directly below the
	// repository directory instead of per-version directories.
	Unversioned []string
	Stable      StableResolver
}

type docKey struct {
	locale, repo, version, name string
}

// Index is an immutable snapshot of the content tree
// `{root}/{locale}/{repo}/{version}/**/*.md`.
type Index struct {
	root     string
	opts     IndexOptions
	docs     map[docKey]*Document
	byURL    map[string]*Document
	versions map[string]map[string]struct{}
	ordered  []*Document
}

// BuildIndex walks root and loads every Markdown document.
func BuildIndex(root string, opts IndexOptions) (*Index, error) {
	if opts.Stable == nil {
		opts.Stable = func(string) string { return "" }
	}
	ix := &Index{
		root:     root,
		opts:     opts,
		docs:     map[docKey]*Document{},
		byURL:    map[string]*Document{},
		versions: map[string]map[string]struct{}{},
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key, filePath, ok := ix.classify(filepath.ToSlash(rel))
		if !ok {
			slog.Debug("Skipping file outside locale/repo layout", logfields.Path(rel))
			return nil
		}
		return ix.add(key, filePath, path)
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "failed to index content").
			WithContext("root", root).
			Build()
	}

	ix.finish()
	return ix, nil
}

// classify splits a root-relative path into its document key.
func (ix *Index) classify(rel string) (docKey, string, bool) {
	parts := strings.Split(rel, "/")
	if len(parts) < 3 {
		return docKey{}, "", false
	}
	key := docKey{locale: parts[0], repo: parts[1]}
	rest := parts[2:]
	if !slices.Contains(ix.opts.Unversioned, key.repo) {
		if len(rest) < 2 {
			return docKey{}, "", false
		}
		key.version = rest[0]
		rest = rest[1:]
	}
	filePath := strings.Join(rest, "/")
	key.name = strings.TrimSuffix(filePath, filepath.Ext(filePath))
	return key, filePath, true
}

func (ix *Index) add(key docKey, filePath, sourcePath string) error {
	raw, err := os.ReadFile(filepath.Clean(sourcePath))
	if err != nil {
		return err
	}
	fm, body, fingerprint, err := Parse(raw)
	if err != nil {
		slog.Warn("Skipping document with invalid front matter", logfields.File(sourcePath), logfields.Error(err))
		return nil
	}
	pc := PathConfig{Repo: key.repo, Version: key.version, Locale: key.locale}
	ix.docs[key] = &Document{
		Path:        pc,
		Name:        key.name,
		FilePath:    filePath,
		SourcePath:  sourcePath,
		FrontMatter: fm,
		Body:        body,
		URL:         PageURL(pc, key.name, ix.opts.Stable(key.repo), ix.opts.DefaultLocale),
		Fingerprint: fingerprint,
	}
	if key.version != "" {
		if ix.versions[key.repo] == nil {
			ix.versions[key.repo] = map[string]struct{}{}
		}
		ix.versions[key.repo][key.version] = struct{}{}
	}
	return nil
}

// finish computes availability sets and the URL table once every document is known.
func (ix *Index) finish() {
	for key, doc := range ix.docs {
		if key.version != "" {
			avail := AvailabilitySet{}
			stable := ix.opts.Stable(key.repo)
			for v := range ix.versions[key.repo] {
				sibling := docKey{locale: key.locale, repo: key.repo, version: v, name: key.name}
				if _, ok := ix.docs[sibling]; !ok {
					continue
				}
				avail[v] = struct{}{}
				if v == stable {
					avail[ChannelStable] = struct{}{}
				}
			}
			doc.AvailIn = avail
		}
		ix.byURL[doc.URL] = doc
		// Stable documents stay reachable under their concrete version too.
		if key.version != "" && key.version == ix.opts.Stable(key.repo) {
			alias := PageURL(PathConfig{Repo: key.repo, Version: key.version, Locale: key.locale}, key.name, "", ix.opts.DefaultLocale)
			if _, taken := ix.byURL[alias]; !taken {
				ix.byURL[alias] = doc
			}
		}
		ix.ordered = append(ix.ordered, doc)
	}
	sort.Slice(ix.ordered, func(i, j int) bool { return ix.ordered[i].URL < ix.ordered[j].URL })
}

// Lookup returns the document for pc and name.
func (ix *Index) Lookup(pc PathConfig, name string) (*Document, error) {
	doc, ok := ix.docs[docKey{locale: pc.Locale, repo: pc.Repo, version: pc.Version, name: name}]
	if !ok {
		return nil, errors.WrapError(ErrNotFound, errors.CategoryNotFound, "document not found").
			WithContext("repository", pc.Repo).
			WithContext("version", pc.Version).
			WithContext("locale", pc.Locale).
			WithContext("page", name).
			Build()
	}
	return doc, nil
}

// ResolveURL maps a request path onto a document. Trailing slashes are ignored.
func (ix *Index) ResolveURL(u string) (*Document, error) {
	clean := strings.TrimSuffix(u, "/")
	if doc, ok := ix.byURL[clean]; ok {
		return doc, nil
	}
	return nil, errors.WrapError(ErrNotFound, errors.CategoryNotFound, "document not found").
		WithContext("url", u).
		Build()
}

// Documents returns every document ordered by URL.
func (ix *Index) Documents() []*Document {
	return slices.Clone(ix.ordered)
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.ordered) }

// Root returns the indexed directory.
func (ix *Index) Root() string { return ix.root }

// Repos returns every repository that has at least one document.
func (ix *Index) Repos() []string {
	seen := map[string]struct{}{}
	for key := range ix.docs {
		seen[key.repo] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// KnownVersions returns the version directories found per repository.
func (ix *Index) KnownVersions() map[string][]string {
	out := make(map[string][]string, len(ix.versions))
	for repo, set := range ix.versions {
		vs := make([]string, 0, len(set))
		for v := range set {
			vs = append(vs, v)
		}
		sort.Strings(vs)
		out[repo] = vs
	}
	return out
}
