// Package observability provides Prometheus metrics for the turn engine.
// Metrics never influence control flow; directives are a pure function of
// the turn input and session attributes. Label cardinality is bounded to
// bot, step and reason names (no session or caller identifiers).
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal counts processed turns by bot and invocation source.
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "espalier_turns_total",
		Help: "Total number of processed turns, by bot and invocation source.",
	}, []string{"bot", "source"})

	// DirectivesTotal counts returned directives by type.
	DirectivesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "espalier_directives_total",
		Help: "Total number of returned directives, by dialog action type.",
	}, []string{"type"})

	// SlotRetriesTotal counts invalid-answer retries by bot and step.
	SlotRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "espalier_slot_retries_total",
		Help: "Total number of retry prompts issued, by bot and step.",
	}, []string{"bot", "step"})

	// TransfersTotal counts transfer closes by routing reason.
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "espalier_transfers_total",
		Help: "Total number of transfer directives, by reason.",
	}, []string{"reason"})

	// ConfigErrorsTotal counts turns aborted by bot-authoring bugs.
	ConfigErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "espalier_config_errors_total",
		Help: "Total number of turns aborted by configuration errors, by bot.",
	}, []string{"bot"})

	// TurnSeconds observes turn processing latency.
	TurnSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "espalier_turn_seconds",
		Help:    "Turn processing duration in seconds.",
		Buckets: prometheus.DefBuckets,
	})
)
