// Package metrics exposes Prometheus instruments for stake submissions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stakerd"

// Poll results.
const (
	PollPending   = "pending"
	PollConfirmed = "confirmed"
)

// Metrics holds every instrument the provider records into.
type Metrics struct {
	Broadcasts        *prometheus.CounterVec
	SignFallbacks     prometheus.Counter
	SignFailures      *prometheus.CounterVec
	ConfirmationPolls *prometheus.CounterVec
	ConfirmationTime  prometheus.Histogram
}

// New creates and registers the instruments on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Stake transactions accepted by the node, by kind and wire format.",
		}, []string{"kind", "format"}),
		SignFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_fallbacks_total",
			Help:      "Legacy signing failures retried in the current format.",
		}),
		SignFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_failures_total",
			Help:      "Signing attempts that failed, by wire format.",
		}, []string{"format"}),
		ConfirmationPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirmation_polls_total",
			Help:      "Transaction lookups performed while waiting for inclusion, by result.",
		}, []string{"result"}),
		ConfirmationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confirmation_seconds",
			Help:      "Time from broadcast to confirmed inclusion.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Broadcasts, m.SignFallbacks, m.SignFailures, m.ConfirmationPolls, m.ConfirmationTime)
	}
	return m
}

// ObserveBroadcast counts an accepted broadcast.
func (m *Metrics) ObserveBroadcast(kind, format string) {
	if m == nil {
		return
	}
	m.Broadcasts.WithLabelValues(kind, format).Inc()
}

// ObserveSignFailure counts a failed signing attempt.
func (m *Metrics) ObserveSignFailure(format string) {
	if m == nil {
		return
	}
	m.SignFailures.WithLabelValues(format).Inc()
}

// ObserveFallback counts a legacy-to-current retry.
func (m *Metrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.SignFallbacks.Inc()
}

// ObservePoll counts one confirmation lookup.
func (m *Metrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.ConfirmationPolls.WithLabelValues(result).Inc()
}

// ObserveConfirmation records how long a confirmation took.
func (m *Metrics) ObserveConfirmation(d time.Duration) {
	if m == nil {
		return
	}
	m.ConfirmationTime.Observe(d.Seconds())
}
