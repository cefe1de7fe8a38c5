// Package metrics holds the Prometheus collectors for chat turns and response streams.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fostercare_chat"

var (
	// TurnsSubmitted counts user turns accepted by a chat view.
	TurnsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "turns_submitted_total",
		Help:      "User turns accepted for submission.",
	})

	// TurnsRejected counts submissions refused by the busy gate or for empty input.
	TurnsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "turns_rejected_total",
		Help:      "Submissions that were ignored, by reason.",
	}, []string{"reason"})

	// StreamBytes counts response bytes read from the backend.
	StreamBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_bytes_total",
		Help:      "Bytes read from assistant response streams.",
	})

	// StreamFailures counts sequences that ended on the error path, by stage.
	StreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_failures_total",
		Help:      "Request/stream sequences that ended with the error reply.",
	}, []string{"stage"})

	// StreamDuration observes how long a sequence stays busy.
	StreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stream_duration_seconds",
		Help:      "Time from submission until the chat view is idle again.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// ActiveSessions tracks the number of live browser sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Browser sessions holding a chat view.",
	})
)

// Failure stages.
const (
	StageRequest = "request"
	StageRead    = "read"
	StageDecode  = "decode"
)

// Rejection reasons.
const (
	ReasonBusy  = "busy"
	ReasonEmpty = "empty"
)
