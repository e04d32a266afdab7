package commands

import (
	"os"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/lint"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/versions"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	table, err := versions.Load(cfg.Content.VersionTable)
	if err != nil {
		return err
	}
	ix, err := content.BuildIndex(cfg.Content.Root, site.IndexOptions(cfg, table))
	if err != nil {
		return err
	}

	l := &lint.Linter{Versions: table, Index: ix, TablePath: cfg.Content.VersionTable}
	res := l.Run()
	if err := lint.NewFormatter(c.Format).Format(os.Stdout, res, cfg.Content.Root); err != nil {
		return err
	}
	return res.Err()
}
