package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docsite/internal/contributors"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// ContributorsWorkerCmd implements the 'contributors-worker' command: it
// consumes the requests serve publishes over NATS and counts them locally.
type ContributorsWorkerCmd struct {
	Queue string `help:"NATS queue group (overrides contributors.nats.queue)"`
}

func (w *ContributorsWorkerCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	nc := cfg.Contributors.NATS
	if nc.URL == "" {
		return errors.ConfigError("contributors.nats.url is required for the contributors worker").Build()
	}
	if w.Queue != "" {
		nc.Queue = w.Queue
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Contributors.Store)
	if err != nil {
		return err
	}
	defer closeStore(store)

	svc, stopContributors, err := startContributors(ctx, cfg.Contributors, store, nil)
	if err != nil {
		return err
	}
	defer stopContributors()

	conn, err := contributors.Connect(nc.URL, "docsite-contributors-worker")
	if err != nil {
		return err
	}
	defer drain(conn)

	sub, err := contributors.Subscribe(conn, nc.Subject, nc.Queue, svc)
	if err != nil {
		return err
	}
	slog.Info("Contributors worker running", slog.String("subject", sub.Subject), slog.String("queue", nc.Queue))

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		slog.Warn("Failed to unsubscribe", logfields.Error(err))
	}
	return nil
}
