package conn

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts websocket requests by action and response status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flatdb_requests_total",
			Help: "Total number of requests",
		},
		[]string{"action", "status"},
	)
	// RequestDuration is the time spent handling a request.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flatdb_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	// ConnectionsOpen is the number of live websocket connections.
	ConnectionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flatdb_connections_open",
		Help: "Open websocket connections",
	})
	// WritesTotal counts flushes of the schema to disk by outcome.
	WritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flatdb_disk_writes_total",
			Help: "Total number of writes to disk",
		},
		[]string{"result"},
	)
)

func observeRequest(action RequestAction, status int, started time.Time) {
	RequestTotal.WithLabelValues(string(action), strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(string(action)).Observe(time.Since(started).Seconds())
}
