package site

import (
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/anchor"
	"git.home.luguber.info/inful/docsite/internal/compose"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/contributors"
	"git.home.luguber.info/inful/docsite/internal/customcontent"
	"git.home.luguber.info/inful/docsite/internal/i18n"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/notice"
	"git.home.luguber.info/inful/docsite/internal/pagetype"
	"git.home.luguber.info/inful/docsite/internal/shell"
	"git.home.luguber.info/inful/docsite/internal/versions"
)

// OpenOptions carries the runtime collaborators that do not come from the
// configuration file.
type OpenOptions struct {
	// Sink receives contributor requests; nil disables counting.
	Sink     contributors.Sink
	Recorder metrics.Recorder
	// BuildType overrides the configured build type when set.
	BuildType compose.BuildType
}

// Environment is a loaded site: its tables, its content index and a
// renderer wired to them.
type Environment struct {
	Config   *config.Config
	Versions *versions.Table
	Catalog  *i18n.Catalog
	Index    *content.Index
	Renderer *Renderer
}

// Open loads the version table, the message catalogs and the content index
// named by cfg and assembles a Renderer.
func Open(cfg *config.Config, opts OpenOptions) (*Environment, error) {
	table, err := versions.Load(cfg.Content.VersionTable)
	if err != nil {
		return nil, err
	}
	catalog, err := i18n.Load(cfg.Content.LocalesDir, cfg.Site.DefaultLocale)
	if err != nil {
		return nil, err
	}
	ix, err := content.BuildIndex(cfg.Content.Root, IndexOptions(cfg, table))
	if err != nil {
		return nil, err
	}
	layout, err := shell.NewLayout(cfg.Site.Layout)
	if err != nil {
		return nil, err
	}

	bt := opts.BuildType
	if bt == "" {
		if bt, err = compose.ParseBuildType(cfg.Site.BuildType); err != nil {
			return nil, err
		}
	}

	r := &Renderer{
		Settings: Settings{
			Title:         cfg.Site.Title,
			BaseURL:       cfg.Site.BaseURL,
			DefaultLocale: cfg.Site.DefaultLocale,
			BuildType:     bt,
			ClassName:     cfg.Site.ClassName,
		},
		Composer: &compose.Composer{
			Versions:   table,
			Registry:   customcontent.Registry{},
			Classifier: pagetype.RuleClassifier{Locales: cfg.Site.Locales},
			Notices:    notice.Renderer{Translator: catalog, DefaultLocale: cfg.Site.DefaultLocale},
			Renderer:   markdown.NewRenderer(),
		},
		Shell: &shell.Shell{
			Anchors:      anchor.Rewriter{DefaultLocale: cfg.Site.DefaultLocale},
			Contributors: opts.Sink,
			Recorder:     opts.Recorder,
		},
		Layout:   layout,
		Recorder: opts.Recorder,
	}
	metrics.OrNoop(opts.Recorder).SetDocuments(ix.Len())

	slog.Info("Site loaded",
		logfields.Path(cfg.Content.Root),
		logfields.Count(ix.Len()),
		logfields.BuildType(string(bt)),
		slog.Int("repositories", len(ix.Repos())),
		slog.Int("languages", len(catalog.Languages())))
	return &Environment{Config: cfg, Versions: table, Catalog: catalog, Index: ix, Renderer: r}, nil
}

// IndexOptions derives the content index options from cfg. Stable versions
// come from table; repositories without an entry have none.
func IndexOptions(cfg *config.Config, table *versions.Table) content.IndexOptions {
	return content.IndexOptions{
		DefaultLocale: cfg.Site.DefaultLocale,
		Unversioned:   cfg.Site.UnversionedRepos,
		Stable: func(repo string) string {
			st, err := table.Lookup(repo)
			if err != nil {
				return ""
			}
			return st.Stable
		},
	}
}

// Reindex rebuilds the content index of e.
func (e *Environment) Reindex() (*content.Index, error) {
	return content.BuildIndex(e.Config.Content.Root, IndexOptions(e.Config, e.Versions))
}
