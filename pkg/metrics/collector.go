// Package metrics exposes Prometheus counters and gauges for the order flow.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/altynbek07/cafe-order-bot/internal/completion"
	"github.com/altynbek07/cafe-order-bot/internal/flow"
)

var (
	botEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_events_total",
			Help: "Total number of bot events received labeled by kind and status",
		},
		[]string{"kind", "status"},
	)
	eventDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_duration_seconds",
			Help:    "Duration of bot event handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	stepTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "step_transitions_total",
			Help: "Total number of order flow step transitions",
		},
		[]string{"from", "to"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	completionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_completions_total",
			Help: "Order completion attempts labeled by outcome",
		},
		[]string{"outcome"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of open order sessions",
		},
	)
	sessionsByStep = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessions_by_step",
			Help: "Number of sessions per flow step",
		},
		[]string{"step"},
	)
)

var trackedSteps = []flow.Step{
	flow.StepAwaitingCategory,
	flow.StepSelectingItems,
	flow.StepSelectingDates,
	flow.StepAwaitingConfirmation,
	flow.StepAwaitingEmail,
}

func init() {
	flow.RegisterTransitionRecorder(RecordStepTransition)
	completion.RegisterOutcomeRecorder(RecordCompletion)
}

// RecordEvent increments event counters and records duration.
func RecordEvent(kind, status string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botEventsTotal.WithLabelValues(kind, status).Inc()
	eventDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordStepTransition tracks order flow transitions.
func RecordStepTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stepTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	if code == "" {
		code = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(code, severity).Inc()
}

// RecordCompletion tracks a completion attempt outcome: success, persistence_failed,
// render_failed or delivery_failed.
func RecordCompletion(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}

	completionsTotal.WithLabelValues(outcome).Inc()
}

// SetActiveSessions updates the gauge for currently open sessions.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// SetSessionsByStep updates the gauge for the given step.
func SetSessionsByStep(step string, count int) {
	if step == "" {
		step = "unknown"
	}

	sessionsByStep.WithLabelValues(step).Set(float64(count))
}

// SessionCollector periodically gathers session step counts and emits gauge metrics.
type SessionCollector struct {
	store flow.Store
}

// NewSessionCollector builds a metrics collector bound to the session store.
func NewSessionCollector(store flow.Store) *SessionCollector {
	return &SessionCollector{store: store}
}

// Run polls the store every 10 seconds, updating session gauges until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func (c *SessionCollector) collect(ctx context.Context) error {
	sessions, err := c.store.GetAll(ctx)
	if err != nil {
		return err
	}

	SetActiveSessions(len(sessions))

	stepCounts := make(map[string]int, len(sessions))
	for _, session := range sessions {
		label := "unknown"
		if session != nil && session.Step != "" {
			label = string(session.Step)
		}
		stepCounts[label]++
	}

	sessionsByStep.Reset()

	for _, tracked := range trackedSteps {
		label := string(tracked)
		SetSessionsByStep(label, stepCounts[label])
		delete(stepCounts, label)
	}

	for label, count := range stepCounts {
		SetSessionsByStep(label, count)
	}

	return nil
}
