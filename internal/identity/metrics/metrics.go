// Package metrics provides observability for the identity module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks login outcomes and search latency.
type Metrics struct {
	LoginsTotal     *prometheus.CounterVec
	PasswordChanges prometheus.Counter
	SearchDuration  prometheus.Histogram
	UsersCreated    prometheus.Counter
}

// New creates a new Metrics instance with all identity metrics registered.
func New() *Metrics {
	return &Metrics{
		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "talenthunt_logins_total",
			Help: "Total number of login attempts by outcome",
		}, []string{"outcome"}),
		PasswordChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talenthunt_password_changes_total",
			Help: "Total number of successful password changes",
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "talenthunt_user_search_duration_seconds",
			Help:    "Duration of user keyword searches",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talenthunt_users_created_total",
			Help: "Total number of users created in the system",
		}),
	}
}

// IncrementLogin records a login attempt outcome ("success" or "failure").
func (m *Metrics) IncrementLogin(outcome string) {
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

// IncrementPasswordChanged records a successful password change.
func (m *Metrics) IncrementPasswordChanged() {
	m.PasswordChanges.Inc()
}

// ObserveSearch records the duration of a search operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSearch(start time.Time) {
	m.SearchDuration.Observe(time.Since(start).Seconds())
}

// IncrementUsersCreated records a successful account creation.
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}
