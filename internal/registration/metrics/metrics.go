// Package metrics provides observability for the registration flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the signup funnel.
type Metrics struct {
	SignupsStarted prometheus.Counter
	Verifications  *prometheus.CounterVec
}

// New creates a new Metrics instance with all registration metrics registered.
func New() *Metrics {
	return &Metrics{
		SignupsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talenthunt_signups_started_total",
			Help: "Total number of signup submissions that produced a pending record",
		}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "talenthunt_signup_verifications_total",
			Help: "Total number of OTP verification attempts by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementStarted records a pending signup created.
func (m *Metrics) IncrementStarted() {
	m.SignupsStarted.Inc()
}

// IncrementVerification records an OTP attempt outcome
// ("success", "wrong_code", "expired").
func (m *Metrics) IncrementVerification(outcome string) {
	m.Verifications.WithLabelValues(outcome).Inc()
}
