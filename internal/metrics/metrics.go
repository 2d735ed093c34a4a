package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label keys, kept stable so dashboards keep working.
const (
	AttrMethod = "method"
	AttrRoute  = "route"
	AttrStatus = "status"
	AttrResult = "result"
)

// Submission results
const (
	ResultStored  = "stored"
	ResultInvalid = "invalid"
	ResultFailed  = "failed"
)

// Recorder exposes the tracker's Prometheus metrics on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry     *prometheus.Registry
	submissions  *prometheus.CounterVec
	renders      prometheus.Counter
	exports      prometheus.Counter
	storedRows   prometheus.Gauge
	httpDuration *prometheus.HistogramVec
}

// NewRecorder registers every collector on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "submissions_total",
			Help:      "Check-in submissions by result.",
		}, []string{AttrResult}),
		renders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "results_renders_total",
			Help:      "Results view renders.",
		}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "workbook_exports_total",
			Help:      "Results workbooks downloaded.",
		}),
		storedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wellness",
			Name:      "stored_responses",
			Help:      "Rows currently held by the response store.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wellness",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{AttrMethod, AttrRoute, AttrStatus}),
	}

	reg.MustRegister(
		r.submissions,
		r.renders,
		r.exports,
		r.storedRows,
		r.httpDuration,
		collectors.NewGoCollector(),
	)
	return r
}

// RecordSubmission counts one submission outcome.
func (r *Recorder) RecordSubmission(result string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(result).Inc()
}

// RecordResultsRender counts one results page render.
func (r *Recorder) RecordResultsRender() {
	if r == nil {
		return
	}
	r.renders.Inc()
}

// RecordExport counts one workbook download.
func (r *Recorder) RecordExport() {
	if r == nil {
		return
	}
	r.exports.Inc()
}

// SetStoredRows reports the current row count.
func (r *Recorder) SetStoredRows(n int) {
	if r == nil {
		return
	}
	r.storedRows.Set(float64(n))
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
