// Package metrics provides observability for the profile module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks profile mutations by kind.
type Metrics struct {
	UpdatesTotal *prometheus.CounterVec
	PhotoUploads prometheus.Counter
}

// New creates a new Metrics instance with all profile metrics registered.
func New() *Metrics {
	return &Metrics{
		UpdatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "talenthunt_profile_updates_total",
			Help: "Total number of successful profile updates by kind",
		}, []string{"kind"}),
		PhotoUploads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talenthunt_profile_photo_uploads_total",
			Help: "Total number of profile photos stored",
		}),
	}
}

// IncrementUpdate records a successful profile update ("details", "bio", "photo").
func (m *Metrics) IncrementUpdate(kind string) {
	m.UpdatesTotal.WithLabelValues(kind).Inc()
}

// IncrementPhotoUpload records a stored photo.
func (m *Metrics) IncrementPhotoUpload() {
	m.PhotoUploads.Inc()
}
