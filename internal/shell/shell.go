// Package shell hosts composed pages: it runs their post-render commands
// and wraps the markup in a full HTML document.
package shell

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/anchor"
	"git.home.luguber.info/inful/docsite/internal/compose"
	"git.home.luguber.info/inful/docsite/internal/contributors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// Shell executes page commands.
type Shell struct {
	Anchors anchor.Rewriter
	// Contributors receives count requests; nil disables counting.
	Contributors contributors.Sink
	Recorder     metrics.Recorder
}

// Execute runs page.Commands in order. Anchor rewriting mutates page.Nodes.
// Contributor requests are fire and forget: failures are logged and never
// returned, so Execute only fails on a cancelled context.
func (s *Shell) Execute(ctx context.Context, page *compose.Page) error {
	rec := metrics.OrNoop(s.Recorder)
	for _, cmd := range page.Commands {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch c := cmd.(type) {
		case compose.RewriteAnchors:
			changed := 0
			for _, n := range page.Nodes {
				changed += s.Anchors.Rewrite(n, c.Locale, c.Repo, c.Version)
			}
			rec.IncCommand(c.Name(), metrics.ResultSuccess)
			slog.Debug("Rewrote anchors", logfields.Command(c.Name()), logfields.Count(changed))
		case compose.CountContributors:
			if s.Contributors == nil {
				continue
			}
			req := contributors.NewRequest(c.Path, c.FilePath)
			err := s.Contributors.Submit(ctx, req)
			rec.IncCommand(c.Name(), metrics.ResultOf(err))
			if err != nil {
				slog.Debug("Contributor request not submitted",
					logfields.RequestID(req.ID),
					logfields.Repository(c.Path.Repo),
					logfields.File(c.FilePath),
					logfields.Error(err))
			}
		default:
			slog.Warn("Ignoring unknown page command", logfields.Command(cmd.Name()))
		}
	}
	return nil
}
