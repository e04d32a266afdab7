// Package notice decides whether a document version gets a deprecation or
// DMR banner and renders that banner.
package notice

import (
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/versions"
)

// Kind is the notice variant selected for a document.
type Kind int

const (
	// KindNone means the document gets no banner.
	KindNone Kind = iota
	// KindDeprecated marks a version that is no longer maintained.
	KindDeprecated
	// KindDMR marks a development milestone release.
	KindDMR
)

func (k Kind) String() string {
	switch k {
	case KindDeprecated:
		return "deprecated"
	case KindDMR:
		return "dmr"
	default:
		return "none"
	}
}

// Request identifies the document a notice is selected for. Version is
// empty for unversioned documents.
type Request struct {
	Repo     string
	Version  string
	Name     string
	AvailIn  content.AvailabilitySet
	Language string
}

// Decision is the selected notice together with the links and values its
// messages need. It is computed per render and never stored.
type Decision struct {
	Kind          Kind
	Repo          string
	Version       string
	StableVersion string
	TargetLink    string
	DMRInfoLink   string
	Language      string
}

// Select picks the notice for req. Deprecated wins over DMR when a version
// is in both lists. The only failure is a missing or stable-less entry for
// req.Repo.
func Select(table *versions.Table, req Request) (Decision, error) {
	st, err := table.Lookup(req.Repo)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{
		Repo:          req.Repo,
		Version:       req.Version,
		StableVersion: st.Stable,
		Language:      req.Language,
	}
	switch {
	case st.IsDeprecated(req.Version):
		d.Kind = KindDeprecated
		d.TargetLink = StableLink(req.Repo, req.Name, req.AvailIn)
	case st.IsDMR(req.Version):
		d.Kind = KindDMR
		d.TargetLink = StableLink(req.Repo, req.Name, req.AvailIn)
		d.DMRInfoLink = DMRInfoLink(req.Version)
	}
	return d, nil
}

// StableLink is the redirect target from a notice: the same page in the
// stable channel when it exists there, otherwise the stable root.
func StableLink(repo, name string, availIn content.AvailabilitySet) string {
	if !availIn.Has(content.ChannelStable) || name == content.IndexName || name == "" {
		return "/" + repo + "/stable"
	}
	return "/" + repo + "/stable/" + name
}

// DMRInfoLink points at the versioning policy page. It always lives under
// the tidb docs, whichever repository the notice is shown for.
func DMRInfoLink(version string) string {
	return "/tidb/" + version + "/versioning"
}

// Separator is inserted between the two message fragments.
func Separator(language string) string {
	if language == "en" {
		return " "
	}
	return ""
}
