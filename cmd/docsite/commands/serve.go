package commands

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/contributors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/server/handlers"
	"git.home.luguber.info/inful/docsite/internal/server/httpserver"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr  string `help:"Override server.addr"`
	Watch bool   `help:"Rebuild the content index when files change (overrides server.watch_content)"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.Watch {
		cfg.Server.WatchContent = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		rec            metrics.Recorder
		metricsHandler http.Handler
	)
	if cfg.Server.EnableMetrics {
		p := metrics.NewPrometheusRecorder(nil)
		rec, metricsHandler = p, p.HTTPHandler()
	}

	var (
		sink    contributors.Sink
		records handlers.RecordReader
	)
	if cfg.Contributors.Enabled {
		store, err := openStore(ctx, cfg.Contributors.Store)
		if err != nil {
			return err
		}
		defer closeStore(store)
		records = store

		if cfg.Contributors.NATS.URL != "" {
			conn, err := contributors.Connect(cfg.Contributors.NATS.URL, "docsite-serve")
			if err != nil {
				return err
			}
			defer drain(conn)
			sink = contributors.NewNATSSink(conn, cfg.Contributors.NATS.Subject)
		} else {
			svc, stopContributors, err := startContributors(ctx, cfg.Contributors, store, rec)
			if err != nil {
				return err
			}
			defer stopContributors()
			sink = svc
		}
	}

	env, err := site.Open(cfg, site.OpenOptions{Sink: sink, Recorder: rec})
	if err != nil {
		return err
	}
	srv := httpserver.New(env.Renderer, env.Index, httpserver.Options{
		Addr:           cfg.Server.Addr,
		MetricsPath:    cfg.Server.MetricsPath,
		MetricsHandler: metricsHandler,
		Records:        records,
		Recorder:       rec,
	})
	if err := srv.Start(ctx); err != nil {
		return err
	}

	if cfg.Server.WatchContent {
		cw, err := httpserver.NewContentWatcher(cfg.Content.Root, config.Duration(cfg.Server.WatchDebounce), env.Reindex, srv.SetIndex)
		if err != nil {
			return err
		}
		if err := cw.Start(ctx); err != nil {
			return err
		}
		defer cw.Stop()
	}

	<-ctx.Done()
	slog.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout))
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func drain(conn *nats.Conn) {
	if err := conn.Drain(); err != nil {
		slog.Warn("Failed to drain NATS connection", logfields.Error(err))
	}
}
