package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/compose"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// RenderCmd implements the 'render' command. Contributor requests are not
// issued for pages rendered this way.
type RenderCmd struct {
	URL     string `arg:"" help:"Page URL, e.g. /tidb/stable/overview"`
	Output  string `short:"o" help:"Write the page to this file instead of stdout"`
	Archive bool   `help:"Render as an archive build"`
}

func (r *RenderCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	opts := site.OpenOptions{}
	if r.Archive {
		opts.BuildType = compose.BuildArchive
	}
	env, err := site.Open(cfg, opts)
	if err != nil {
		return err
	}
	doc, err := env.Index.ResolveURL(r.URL)
	if err != nil {
		return err
	}
	res, err := env.Renderer.Render(context.Background(), doc)
	if err != nil {
		return err
	}

	if r.Output == "" {
		_, err := os.Stdout.Write(res.HTML)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.Output), 0o750); err != nil {
		return errors.FileSystemError("failed to create output directory").WithCause(err).WithContext("path", r.Output).Build()
	}
	if err := os.WriteFile(r.Output, res.HTML, 0o600); err != nil {
		return errors.FileSystemError("failed to write page").WithCause(err).WithContext("path", r.Output).Build()
	}
	slog.Info("Page written", logfields.Page(doc.URL), logfields.Path(r.Output), logfields.Notice(res.Page.Notice.Kind.String()))
	return nil
}
