package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Envelope outcomes recorded by the bridge.
const (
	OutcomeAccepted       = "accepted"
	OutcomeOriginRejected = "origin_rejected"
	OutcomeMalformed      = "malformed"
	OutcomeTicketRejected = "ticket_rejected"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tdsbridge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tdsbridge",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	envelopesInbound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tdsbridge",
			Subsystem: "envelope",
			Name:      "inbound_total",
			Help:      "Inbound envelopes by kind and outcome.",
		},
		[]string{"node", "kind", "outcome"},
	)
	envelopesOutbound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tdsbridge",
			Subsystem: "envelope",
			Name:      "outbound_total",
			Help:      "Envelopes posted to peers by kind.",
		},
		[]string{"node", "kind", "success"},
	)
	peersConnected = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tdsbridge",
			Subsystem: "ws",
			Name:      "peers",
			Help:      "Connected websocket peers.",
		},
		[]string{"node"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, envelopesInbound, envelopesOutbound, peersConnected)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordInbound counts one inbound event. kind is empty when the
// envelope could not be decoded.
func RecordInbound(node, kind, outcome string) {
	RegisterMetrics()
	if kind == "" {
		kind = "unknown"
	}
	envelopesInbound.WithLabelValues(node, kind, outcome).Inc()
}

func RecordOutbound(node, kind string, success bool) {
	RegisterMetrics()
	envelopesOutbound.WithLabelValues(node, kind, strconv.FormatBool(success)).Inc()
}

func SetPeers(node string, n int) {
	RegisterMetrics()
	peersConnected.WithLabelValues(node).Set(float64(n))
}
