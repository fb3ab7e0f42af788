package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mcm",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "cache"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcm",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by API endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	StreamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mcm",
			Subsystem: "api",
			Name:      "stream_clients",
			Help:      "Connected snapshot stream clients",
		},
	)
)

// Register registers the endpoint collectors once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors, StreamClients)
	})
}
