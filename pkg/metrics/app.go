package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Rating submission results.
const (
	RatingCreated = "created"
	RatingUpdated = "updated"
	RatingFailed  = "failed"
)

// AppMetrics tracks rating activity and platform totals.
type AppMetrics struct {
	ratingSubmissions *prometheus.CounterVec
	users             prometheus.Gauge
	stores            prometheus.Gauge
	ratings           prometheus.Gauge
}

// NewAppMetrics registers the application metrics on the provided registerer.
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	if reg == nil {
		return &AppMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rating_submissions_total",
		Help: "Rating submissions by result.",
	}, []string{"result"})
	users := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "platform_users",
		Help: "Registered users.",
	})
	stores := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "platform_stores",
		Help: "Registered stores.",
	})
	ratings := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "platform_ratings",
		Help: "Stored ratings.",
	})
	reg.MustRegister(submissions, users, stores, ratings)
	return &AppMetrics{
		ratingSubmissions: submissions,
		users:             users,
		stores:            stores,
		ratings:           ratings,
	}
}

// IncRatingSubmission counts one submission with the given result.
func (m *AppMetrics) IncRatingSubmission(result string) {
	if m == nil || m.ratingSubmissions == nil {
		return
	}
	m.ratingSubmissions.WithLabelValues(normalizeLabel(result)).Inc()
}

// SetPlatformTotals updates the platform gauges.
func (m *AppMetrics) SetPlatformTotals(users, stores, ratings int64) {
	if m == nil || m.users == nil {
		return
	}
	m.users.Set(float64(users))
	m.stores.Set(float64(stores))
	m.ratings.Set(float64(ratings))
}
