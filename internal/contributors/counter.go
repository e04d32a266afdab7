package contributors

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// GitCounter counts commit authors from local clones below Root. A version
// directory `{Root}/{repo}/{version}` is preferred over `{Root}/{repo}`.
type GitCounter struct {
	Root string
}

// Count implements Counter.
func (g GitCounter) Count(ctx context.Context, req Request) (Result, error) {
	dir := g.repoDir(req)
	repo, err := ggit.PlainOpen(dir)
	if err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryGit, "failed to open repository").
			WithContext("path", dir).
			Build()
	}
	file := filepath.ToSlash(req.FilePath)
	iter, err := repo.Log(&ggit.LogOptions{FileName: &file})
	if err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryGit, "failed to read history").
			WithContext("path", dir).
			WithContext("file", file).
			Build()
	}
	defer iter.Close()

	seen := map[string]struct{}{}
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		email := strings.ToLower(strings.TrimSpace(c.Author.Email))
		if email == "" {
			email = c.Author.Name
		}
		seen[email] = struct{}{}
		return nil
	})
	if err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryGit, "failed to walk history").
			WithContext("file", file).
			Build()
	}

	authors := make([]string, 0, len(seen))
	for a := range seen {
		authors = append(authors, a)
	}
	sort.Strings(authors)
	return Result{Authors: authors}, nil
}

func (g GitCounter) repoDir(req Request) string {
	if req.Path.Version != "" {
		dir := filepath.Join(g.Root, req.Path.Repo, req.Path.Version)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return filepath.Join(g.Root, req.Path.Repo)
}
