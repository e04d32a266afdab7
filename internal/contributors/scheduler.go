package contributors

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Refresher re-counts stored contributor records.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Scheduler wraps a gocron scheduler that refreshes contributor counts
// periodically.
type Scheduler struct {
	scheduler gocron.Scheduler
	refresher Refresher
	timeout   time.Duration
}

// NewScheduler creates a scheduler for r. Each run is bounded by timeout
// (no bound when zero).
func NewScheduler(r Refresher, timeout time.Duration) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, refresher: r, timeout: timeout}, nil
}

// ScheduleRefresh registers the periodic refresh job and returns its id.
func (s *Scheduler) ScheduleRefresh(interval time.Duration) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.refresh),
		gocron.WithName("contributors-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create refresh job: %w", err)
	}
	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting contributor refresh scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down and waits for a running job.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping contributor refresh scheduler")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) refresh() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, err := s.refresher.Refresh(ctx); err != nil {
		slog.Error("Scheduled contributor refresh failed", logfields.Error(err))
	}
}
