package contributors

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

const defaultQueueSize = 256

// ServiceOptions configures a Service.
type ServiceOptions struct {
	QueueSize int
	Workers   int
	Recorder  metrics.Recorder
	// Now is the clock used for record timestamps.
	Now func() time.Time
}

// Service is the local Sink: a bounded queue drained by worker goroutines
// that count contributors and store the result. Requests arriving while the
// queue is full are dropped; requests for a document that is already queued
// are coalesced.
type Service struct {
	counter  Counter
	store    Store
	recorder metrics.Recorder
	now      func() time.Time
	workers  int

	queue chan Request

	mu      sync.Mutex
	pending map[Key]struct{}
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService wires a counter to a store.
func NewService(counter Counter, store Store, opts ServiceOptions) *Service {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		counter:  counter,
		store:    store,
		recorder: metrics.OrNoop(opts.Recorder),
		now:      opts.Now,
		workers:  opts.Workers,
		queue:    make(chan Request, opts.QueueSize),
		pending:  map[Key]struct{}{},
	}
}

// Start launches the workers. They stop when ctx is done or Stop is called.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	for range s.workers {
		s.wg.Add(1)
		go s.work(ctx)
	}
	slog.Info("Contributor service started", logfields.Count(s.workers))
}

// Stop halts the workers and waits for the in-flight request. Queued
// requests are discarded.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
	slog.Info("Contributor service stopped")
}

// Submit implements Sink. It never blocks.
func (s *Service) Submit(_ context.Context, req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrNotRunning
	}
	key := req.Key()
	if _, queued := s.pending[key]; queued {
		s.recorder.IncContributorRequest(metrics.ResultAccepted)
		return nil
	}
	select {
	case s.queue <- req:
		s.pending[key] = struct{}{}
		s.recorder.IncContributorRequest(metrics.ResultAccepted)
		return nil
	default:
		s.recorder.IncContributorRequest(metrics.ResultDropped)
		return ErrQueueFull
	}
}

func (s *Service) work(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.queue:
			s.mu.Lock()
			delete(s.pending, req.Key())
			s.mu.Unlock()
			if err := s.process(ctx, req); err != nil && !stderrors.Is(err, context.Canceled) {
				slog.Warn("Contributor count failed",
					logfields.RequestID(req.ID),
					logfields.Repository(req.Path.Repo),
					logfields.Version(req.Path.Version),
					logfields.File(req.FilePath),
					logfields.Error(err))
			}
		}
	}
}

// process counts one document and stores the result.
func (s *Service) process(ctx context.Context, req Request) error {
	start := time.Now()
	res, err := s.counter.Count(ctx, req)
	s.recorder.ObserveContributorCount(time.Since(start), metrics.ResultOf(err))
	if err != nil {
		return err
	}
	return s.store.Put(ctx, Record{
		Key:       req.Key(),
		Count:     len(res.Authors),
		Authors:   res.Authors,
		UpdatedAt: s.now(),
	})
}

// Refresh re-counts every stored record synchronously. Individual failures
// are logged and skipped; the number of refreshed records is returned.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	refreshed := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if err := s.process(ctx, NewRequest(pathOf(rec.Key), rec.FilePath)); err != nil {
			slog.Warn("Contributor refresh failed",
				logfields.Repository(rec.Repo),
				logfields.File(rec.FilePath),
				logfields.Error(err))
			continue
		}
		refreshed++
	}
	slog.Info("Contributor counts refreshed", logfields.Count(refreshed))
	return refreshed, nil
}

// Lookup returns the stored record for req's document.
func (s *Service) Lookup(ctx context.Context, key Key) (Record, error) {
	return s.store.Get(ctx, key)
}
