package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	messagesSentTotal   *prometheus.CounterVec
	reactionsToggled    *prometheus.CounterVec
	realtimeConnections prometheus.Gauge
	realtimeEventsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the chat API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slate_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slate_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		messagesSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slate_messages_sent_total",
			Help: "Total number of messages created, by container kind.",
		}, []string{"container"})

		reactionsToggled = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slate_reactions_toggled_total",
			Help: "Total number of reaction toggles, by outcome.",
		}, []string{"action"})

		realtimeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slate_realtime_connections",
			Help: "Currently open realtime websocket connections.",
		})

		realtimeEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slate_realtime_events_total",
			Help: "Total number of realtime events fanned out, by type.",
		}, []string{"type"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			messagesSentTotal,
			reactionsToggled,
			realtimeConnections,
			realtimeEventsTotal,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the request latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// MessagesSent exposes the message creation counter.
func MessagesSent() *prometheus.CounterVec {
	RegisterMetrics()
	return messagesSentTotal
}

// ReactionsToggled exposes the reaction toggle counter.
func ReactionsToggled() *prometheus.CounterVec {
	RegisterMetrics()
	return reactionsToggled
}

// RealtimeConnections exposes the open-connection gauge.
func RealtimeConnections() prometheus.Gauge {
	RegisterMetrics()
	return realtimeConnections
}

// RealtimeEvents exposes the fan-out counter.
func RealtimeEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return realtimeEventsTotal
}
