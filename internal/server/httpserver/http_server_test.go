package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/server/middleware"
	"git.home.luguber.info/inful/docsite/internal/site"
	dtesting "git.home.luguber.info/inful/docsite/internal/testing"
	"git.home.luguber.info/inful/docsite/internal/versions"
)

func openSite(t *testing.T) (*dtesting.SiteBuilder, *site.Environment) {
	t.Helper()
	b := dtesting.NewSiteBuilder(t).
		WithVersions("tidb", versions.Status{Stable: "v7.1", Deprecated: []string{"v5.0"}}).
		WithDocument("en/tidb/v7.1/overview.md", "# Overview\n").
		WithDocument("en/tidb/v5.0/overview.md", "# Overview\n")
	env, err := site.Open(b.Build(), site.OpenOptions{})
	require.NoError(t, err)
	return b, env
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_Routes(t *testing.T) {
	_, env := openSite(t)
	rec := metrics.NewPrometheusRecorder(nil)
	env.Renderer.Recorder = rec
	srv := New(env.Renderer, env.Index, Options{
		MetricsPath:    "/metrics",
		MetricsHandler: rec.HTTPHandler(),
		Recorder:       rec,
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/tidb/v5.0/overview")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "no longer maintained")
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp, _ = get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/api/contributors?repo=tidb&path=overview.md")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "contributors disabled")

	resp, body = get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "docsite_http_requests_total")
	assert.Contains(t, body, "docsite_pages_rendered_total")
}

func TestServer_SetIndex(t *testing.T) {
	b, env := openSite(t)
	srv := New(env.Renderer, env.Index, Options{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/tidb/stable/new")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	b.WithDocument("en/tidb/v7.1/new.md", "# New\n")
	ix, err := env.Reindex()
	require.NoError(t, err)
	srv.SetIndex(ix)

	resp, _ = get(t, ts.URL+"/tidb/stable/new")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_StartStop(t *testing.T) {
	_, env := openSite(t)
	srv := New(env.Renderer, env.Index, Options{Addr: "127.0.0.1:0"})
	require.NoError(t, srv.Start(context.Background()))

	resp, _ := get(t, "http://"+srv.Addr()+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
}

func TestServer_StartFailsOnBusyAddress(t *testing.T) {
	_, env := openSite(t)
	first := New(env.Renderer, env.Index, Options{Addr: "127.0.0.1:0"})
	require.NoError(t, first.Start(context.Background()))
	t.Cleanup(func() { _ = first.Stop(context.Background()) })

	second := New(env.Renderer, env.Index, Options{Addr: first.Addr()})
	require.Error(t, second.Start(context.Background()))
}

func TestContentWatcher_Reindexes(t *testing.T) {
	b, env := openSite(t)
	applied := make(chan *content.Index, 4)
	cw, err := NewContentWatcher(env.Config.Content.Root, 20*time.Millisecond, env.Reindex, func(ix *content.Index) {
		select {
		case applied <- ix:
		default:
		}
	})
	require.NoError(t, err)
	require.NoError(t, cw.Start(context.Background()))
	t.Cleanup(cw.Stop)

	b.WithDocument("en/tidb/v7.1/sql/select.md", "# SELECT\n")

	select {
	case ix := <-applied:
		assert.GreaterOrEqual(t, ix.Len(), 2)
	case <-time.After(5 * time.Second):
		t.Fatal("index was not rebuilt")
	}
}

func TestContentWatcher_FailedRebuildKeepsIndex(t *testing.T) {
	_, env := openSite(t)
	applied := make(chan *content.Index, 1)
	rebuilt := make(chan struct{}, 4)
	cw, err := NewContentWatcher(env.Config.Content.Root, 10*time.Millisecond, func() (*content.Index, error) {
		select {
		case rebuilt <- struct{}{}:
		default:
		}
		return nil, os.ErrNotExist
	}, func(ix *content.Index) { applied <- ix })
	require.NoError(t, err)
	require.NoError(t, cw.Start(context.Background()))
	t.Cleanup(cw.Stop)

	require.NoError(t, os.WriteFile(filepath.Join(env.Config.Content.Root, "touch.md"), []byte("x"), 0o600))

	select {
	case <-rebuilt:
	case <-time.After(5 * time.Second):
		t.Fatal("rebuild was not attempted")
	}
	assert.Empty(t, applied)
}
