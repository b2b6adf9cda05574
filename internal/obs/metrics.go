package obs

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthMetrics counts authentication attempts and provisioned accounts.
type AuthMetrics struct {
	attempts    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	provisioned *prometheus.CounterVec
}

// NewAuthMetrics creates the collectors and registers them on reg.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "memberauth",
				Name:      "auth_attempts_total",
				Help:      "Authentication attempts by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "memberauth",
				Name:      "auth_duration_seconds",
				Help:      "Authentication latency in seconds, including password hashing.",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"outcome"},
		),
		provisioned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "memberauth",
				Name:      "accounts_provisioned_total",
				Help:      "Accounts provisioned by granted role.",
			},
			[]string{"role"},
		),
	}
	reg.MustRegister(m.attempts, m.duration, m.provisioned)
	return m
}

// ObserveAttempt records one authentication attempt.
func (m *AuthMetrics) ObserveAttempt(outcome string, elapsed time.Duration) {
	m.attempts.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveProvisioned records the roles granted to a new account.
func (m *AuthMetrics) ObserveProvisioned(roles []string) {
	for _, role := range roles {
		m.provisioned.WithLabelValues(role).Inc()
	}
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
