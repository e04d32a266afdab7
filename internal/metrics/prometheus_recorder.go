package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg              *prom.Registry
	renderDuration   *prom.HistogramVec
	pagesRendered    *prom.CounterVec
	commands         *prom.CounterVec
	contributorQueue *prom.CounterVec
	contributorCount *prom.HistogramVec
	httpRequests     *prom.CounterVec
	httpDuration     *prom.HistogramVec
	documents        prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.renderDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Duration of page composition and rendering",
		Buckets:   prom.DefBuckets,
	}, []string{"page_type"})
	pr.pagesRendered = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "pages_rendered_total",
		Help:      "Rendered pages by page type and notice kind",
	}, []string{"page_type", "notice"})
	pr.commands = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "post_render_commands_total",
		Help:      "Post-render commands executed by command and result",
	}, []string{"command", "result"})
	pr.contributorQueue = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "contributor_requests_total",
		Help:      "Contributor count requests accepted or dropped by the queue",
	}, []string{"result"})
	pr.contributorCount = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "contributor_count_duration_seconds",
		Help:      "Duration of counting the contributors of one document",
		Buckets:   prom.DefBuckets,
	}, []string{"result"})
	pr.httpRequests = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status code",
	}, []string{"method", "code"})
	pr.httpDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prom.DefBuckets,
	}, []string{"method"})
	pr.documents = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "indexed_documents",
		Help:      "Documents in the current content index",
	})
	reg.MustRegister(pr.renderDuration, pr.pagesRendered, pr.commands, pr.contributorQueue,
		pr.contributorCount, pr.httpRequests, pr.httpDuration, pr.documents)
	return pr
}

// Registry returns the registry the metrics live in.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

// HTTPHandler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *PrometheusRecorder) ObserveRender(pageType, notice string, d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(pageType).Observe(d.Seconds())
	p.pagesRendered.WithLabelValues(pageType, notice).Inc()
}

func (p *PrometheusRecorder) IncCommand(command string, result ResultLabel) {
	if p == nil {
		return
	}
	p.commands.WithLabelValues(command, string(result)).Inc()
}

func (p *PrometheusRecorder) IncContributorRequest(result ResultLabel) {
	if p == nil {
		return
	}
	p.contributorQueue.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveContributorCount(d time.Duration, result ResultLabel) {
	if p == nil {
		return
	}
	p.contributorCount.WithLabelValues(string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveHTTPRequest(method string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetDocuments(n int) {
	if p == nil {
		return
	}
	p.documents.Set(float64(n))
}
