package iohttp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taillookup"

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lookups  *prometheus.CounterVec
	bulkSize prometheus.Histogram
}

// newRegistry creates a registry with Go runtime and process collectors.
func newRegistry() *prometheus.Registry {
	res := prometheus.NewRegistry()
	res.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return res
}

func newMetrics(r prometheus.Registerer) *metrics {
	return &metrics{
		requests: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		duration: promauto.With(r).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"route"}),
		lookups: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Number of looked up tail numbers by outcome",
		}, []string{"outcome"}),
		bulkSize: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bulk_request_size",
			Help:      "Number of tail numbers in bulk requests",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50},
		}),
	}
}

// snapshotMetrics describe the snapshot served by the watcher.
type snapshotMetrics struct {
	reloads         prometheus.Counter
	lastLoadSuccess prometheus.Gauge
	registrations   prometheus.Gauge
}

func newSnapshotMetrics(r prometheus.Registerer) *snapshotMetrics {
	return &snapshotMetrics{
		reloads: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_reloads_total",
			Help:      "Number of times a new snapshot was loaded",
		}),
		lastLoadSuccess: promauto.With(r).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_last_load_success",
			Help:      "Whether the last attempt to load a snapshot succeeded",
		}),
		registrations: promauto.With(r).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_registrations",
			Help:      "Number of registrations in the served snapshot",
		}),
	}
}
