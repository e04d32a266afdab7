package compose

import "git.home.luguber.info/inful/docsite/internal/content"

// Command is a post-render effect the hosting shell executes after the
// page markup exists.
type Command interface {
	Name() string
}

// RewriteAnchors asks the shell to repair anchors in the rendered page.
type RewriteAnchors struct {
	Locale  string
	Repo    string
	Version string
}

func (RewriteAnchors) Name() string { return "rewrite_anchors" }

// CountContributors asks the shell to request a contributor count for the
// document file.
type CountContributors struct {
	Path     content.PathConfig
	FilePath string
}

func (CountContributors) Name() string { return "count_contributors" }
