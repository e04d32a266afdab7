package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveRender("tidb", "deprecated", 15*time.Millisecond)
	pr.IncCommand("rewrite_anchors", ResultSuccess)
	pr.IncContributorRequest(ResultDropped)
	pr.ObserveContributorCount(time.Second, ResultFailed)
	pr.ObserveHTTPRequest("GET", 200, time.Millisecond)
	pr.SetDocuments(42)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["docsite_pages_rendered_total"])
	assert.True(t, names["docsite_post_render_commands_total"])
	assert.True(t, names["docsite_indexed_documents"])
}

func TestPrometheusRecorder_HTTPHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncContributorRequest(ResultAccepted)

	rec := httptest.NewRecorder()
	pr.HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `docsite_contributor_requests_total{result="accepted"} 1`)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveRender("home", "none", time.Millisecond)
		pr.SetDocuments(1)
	})
}

func TestResultOfAndOrNoop(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultOf(nil))
	assert.Equal(t, ResultFailed, ResultOf(errors.New("x")))
	assert.Equal(t, NoopRecorder{}, OrNoop(nil))
	pr := NewPrometheusRecorder(nil)
	assert.Same(t, pr, OrNoop(pr))
}
