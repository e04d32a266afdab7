package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/contributors"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/publish"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docsite.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init               InitCmd               `cmd:"" help:"Write an example configuration file"`
	Check              CheckCmd              `cmd:"" help:"Check the version table and content for defects"`
	Render             RenderCmd             `cmd:"" help:"Render a single page to stdout or a file"`
	Build              BuildCmd              `cmd:"" help:"Render every page and publish the site"`
	Serve              ServeCmd              `cmd:"" help:"Serve the site over HTTP"`
	ContributorsWorker ContributorsWorkerCmd `cmd:"" name:"contributors-worker" help:"Count contributors for requests received over NATS"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	slog.Debug("Configuration loaded", logfields.Path(root.Config))
	return cfg, nil
}

// openStore opens the configured contributor store.
func openStore(ctx context.Context, cfg config.StoreConfig) (contributors.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return contributors.NewPostgresStore(ctx, cfg.DSN)
	default:
		return contributors.NewSQLiteStore(cfg.DSN)
	}
}

// startContributors runs a local counting service over store and, when a
// refresh interval is set, the periodic refresh. The returned func stops both.
func startContributors(ctx context.Context, cfg config.ContributorsConfig, store contributors.Store, rec metrics.Recorder) (*contributors.Service, func(), error) {
	svc := contributors.NewService(contributors.GitCounter{Root: cfg.GitRoot}, store, contributors.ServiceOptions{
		QueueSize: cfg.QueueSize,
		Workers:   cfg.Workers,
		Recorder:  rec,
	})
	svc.Start(ctx)

	interval := config.Duration(cfg.RefreshInterval)
	if interval <= 0 {
		return svc, svc.Stop, nil
	}
	sched, err := contributors.NewScheduler(svc, interval)
	if err != nil {
		svc.Stop()
		return nil, nil, errors.InternalError("failed to create refresh scheduler").WithCause(err).Build()
	}
	if _, err := sched.ScheduleRefresh(interval); err != nil {
		svc.Stop()
		return nil, nil, errors.InternalError("failed to schedule contributor refresh").WithCause(err).Build()
	}
	sched.Start()
	return svc, func() {
		if err := sched.Stop(); err != nil {
			slog.Warn("Failed to stop refresh scheduler", logfields.Error(err))
		}
		svc.Stop()
	}, nil
}

func closeStore(store contributors.Store) {
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close contributor store", logfields.Error(err))
	}
}

// publishConfig maps the output section onto a publish.Config.
func publishConfig(cfg config.OutputConfig) publish.Config {
	return publish.Config{
		Driver:    publish.Driver(cfg.Driver),
		Directory: cfg.Directory,
		S3: publish.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			PathStyle:       cfg.S3.PathStyle,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		},
		Retry: retry.NewPolicy(cfg.Retry.Backoff, config.Duration(cfg.Retry.Initial), config.Duration(cfg.Retry.Max), cfg.Retry.MaxRetries),
	}
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
