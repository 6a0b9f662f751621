// Package metrics provides observability for the review module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks review lifecycle operations and vote outcomes.
type Metrics struct {
	ReviewsTotal *prometheus.CounterVec
	VotesTotal   *prometheus.CounterVec
}

// New creates a new Metrics instance with all review metrics registered.
func New() *Metrics {
	return &Metrics{
		ReviewsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "talenthunt_reviews_total",
			Help: "Total number of review operations by action",
		}, []string{"action"}),
		VotesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "talenthunt_review_votes_total",
			Help: "Total number of vote applications by resulting state",
		}, []string{"result"}),
	}
}

// IncrementReview records a review operation ("created", "edited", "deleted").
func (m *Metrics) IncrementReview(action string) {
	m.ReviewsTotal.WithLabelValues(action).Inc()
}

// IncrementVote records a vote application by resulting state
// ("up", "down", "none").
func (m *Metrics) IncrementVote(result string) {
	m.VotesTotal.WithLabelValues(result).Inc()
}
