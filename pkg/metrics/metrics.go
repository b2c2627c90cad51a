// Package metrics provides Prometheus instrumentation for the moderation
// pipeline: message and candidate throughput, classification verdicts,
// sanction outcomes and gateway health.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

//nolint: gochecknoglobals
var (
	// MessagesTotal counts handled messages by result: "exempt", "clean", "scam" or "error".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudwatch_messages_total",
		Help: "Total number of messages handled",
	}, []string{"result"})

	// MessageDuration records the time spent handling one message.
	MessageDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fraudwatch_message_duration_seconds",
		Help:    "Message handling latency in seconds",
		Buckets: DefaultBuckets,
	})

	// CandidatesTotal counts extracted URL candidates by result: "skipped",
	// "clean", "scam" or "error".
	CandidatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudwatch_candidates_total",
		Help: "Total number of URL candidates extracted from messages",
	}, []string{"result"})

	// SanctionsTotal counts officer activations by outcome.
	SanctionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudwatch_sanctions_total",
		Help: "Total number of officer activations",
	}, []string{"outcome"})

	// ActionFailuresTotal counts failed platform actions by step.
	ActionFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudwatch_action_failures_total",
		Help: "Total number of failed platform actions",
	}, []string{"step"})

	// PendingReleases tracks authors currently waiting for their cooldown to elapse.
	PendingReleases = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fraudwatch_pending_releases",
		Help: "Current number of scheduled cooldown releases",
	})

	// GatewayConnected is 1 while the chat gateway session is connected.
	GatewayConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fraudwatch_gateway_connected",
		Help: "Whether the chat gateway session is connected",
	})
)

func init() {
	prometheus.MustRegister(
		MessagesTotal,
		MessageDuration,
		CandidatesTotal,
		SanctionsTotal,
		ActionFailuresTotal,
		PendingReleases,
		GatewayConnected,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
