package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamCalls   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	bootstraps      *prometheus.CounterVec
	buildLatency    *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
}

var (
	defaultRecorder *Recorder
	defaultOnce     sync.Once
)

// New returns the process-wide Prometheus recorder. Collectors register on
// the default registry once.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = NewWith(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// NewWith registers the recorder's collectors on reg.
func NewWith(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		upstreamCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcm_upstream_requests_total",
				Help: "Upstream market data requests by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),
		upstreamLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcm_upstream_request_seconds",
				Help:    "Upstream request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcm_snapshot_cache_lookups_total",
				Help: "Snapshot cache lookups by session and result",
			},
			[]string{"session", "result"},
		),
		bootstraps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcm_baseline_bootstraps_total",
				Help: "Baselines created from the previous close",
			},
			[]string{"symbol"},
		),
		buildLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcm_snapshot_build_seconds",
				Help:    "Time to assemble a snapshot on cache miss",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"session"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcm_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordUpstream records one upstream call.
func (r *Recorder) RecordUpstream(endpoint string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.upstreamCalls.WithLabelValues(endpoint, result).Inc()
	r.upstreamLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordCacheLookup records a snapshot cache hit or miss.
func (r *Recorder) RecordCacheLookup(session string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(session, result).Inc()
}

// RecordBootstrap records a baseline bootstrap.
func (r *Recorder) RecordBootstrap(symbol string) {
	r.bootstraps.WithLabelValues(symbol).Inc()
}

// RecordBuild records snapshot assembly latency.
func (r *Recorder) RecordBuild(session string, d time.Duration) {
	r.buildLatency.WithLabelValues(session).Observe(d.Seconds())
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
