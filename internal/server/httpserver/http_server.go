// Package httpserver serves the documentation site: pages rendered per
// request from an atomically swappable content index, plus the JSON API,
// health and metrics endpoints.
package httpserver

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/server/handlers"
	smw "git.home.luguber.info/inful/docsite/internal/server/middleware"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// Options configures a Server.
type Options struct {
	Addr string
	// MetricsPath mounts MetricsHandler when both are set.
	MetricsPath    string
	MetricsHandler http.Handler
	// Records backs /api/contributors; nil disables the endpoint.
	Records  handlers.RecordReader
	Recorder metrics.Recorder
}

// Server owns the HTTP listener of the site.
type Server struct {
	opts         Options
	renderer     *site.Renderer
	index        atomic.Pointer[content.Index]
	errorAdapter *errors.HTTPErrorAdapter
	httpServer   *http.Server
	addr         string

	pageHandlers       *handlers.PageHandlers
	apiHandlers        *handlers.APIHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	// middleware chain
	mchain func(http.Handler) http.Handler
}

// New constructs a server that renders ix with renderer.
func New(renderer *site.Renderer, ix *content.Index, opts Options) *Server {
	s := &Server{
		opts:         opts,
		renderer:     renderer,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
	s.index.Store(ix)

	s.pageHandlers = handlers.NewPageHandlers(renderer, s.Index)
	s.apiHandlers = handlers.NewAPIHandlers(renderer, s.Index, opts.Records)
	s.monitoringHandlers = handlers.NewMonitoringHandlers(renderer, s.Index)

	s.mchain = smw.Chain(slog.Default(), s.errorAdapter, opts.Recorder)
	return s
}

// Index returns the index currently served.
func (s *Server) Index() *content.Index { return s.index.Load() }

// SetIndex swaps the served index. Requests already in flight finish with
// the index they started with.
func (s *Server) SetIndex(ix *content.Index) {
	s.index.Store(ix)
	metrics.OrNoop(s.opts.Recorder).SetDocuments(ix.Len())
	slog.Info("Content index swapped", logfields.Count(ix.Len()))
}

// Handler returns the routed and wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("/api/contributors", s.apiHandlers.HandleContributors)
	mux.HandleFunc("/api/notice", s.apiHandlers.HandleNotice)
	if s.opts.MetricsPath != "" && s.opts.MetricsHandler != nil {
		mux.Handle(s.opts.MetricsPath, s.opts.MetricsHandler)
	}
	mux.HandleFunc("/", s.pageHandlers.HandlePage)
	return s.mchain(mux)
}

// Start binds the listen address and serves in the background. Binding
// happens before Start returns so address conflicts fail fast.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("http startup failed: %w", err)
	}
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", logfields.Error(err))
		}
	}()
	slog.Info("HTTP server started", slog.String("addr", s.addr))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string { return s.addr }

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}
