package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docsite/internal/compose"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/publish"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Archive bool   `help:"Produce an archive build: no notices, no contributor counting"`
	Output  string `short:"o" help:"Override output.directory"`
	Driver  string `help:"Override output.driver" enum:",fs,s3,memory" default:""`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Driver != "" {
		cfg.Output.Driver = b.Driver
	}

	opts := site.OpenOptions{}
	if b.Archive {
		opts.BuildType = compose.BuildArchive
	}
	env, err := site.Open(cfg, opts)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := publish.Open(ctx, publishConfig(cfg.Output))
	if err != nil {
		return err
	}

	fmt.Println("Starting docsite build")
	start := time.Now()
	report, err := site.Build(ctx, env.Renderer, env.Index, store)
	if report != nil {
		fmt.Printf("Published %d pages (%d with notices, %d failed) via %s\n",
			report.Pages, report.Notices, len(report.Failures), store.Driver())
	}
	if err != nil {
		return err
	}
	slog.Debug("Build command completed",
		logfields.BuildType(string(env.Renderer.Settings.BuildType)),
		logfields.DurationMS(elapsedMS(start)))
	return nil
}
