package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "estate"

// Metrics holds the service-level collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	rateLimitRejections *prometheus.CounterVec
	notificationTasks   *prometheus.CounterVec
	cleanupDeleted      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rateLimitRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ratelimit",
			Name:      "rejections_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"scope"}),
		notificationTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "notifications",
			Name:      "tasks_total",
			Help:      "Notification task outcomes.",
		}, []string{"kind", "outcome"}),
		cleanupDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cleanup",
			Name:      "deleted_total",
			Help:      "Documents removed by the retention job.",
		}, []string{"collection"}),
	}
	reg.MustRegister(m.rateLimitRejections, m.notificationTasks, m.cleanupDeleted)
	return m
}

func (m *Metrics) rateLimited(scope string) {
	if m != nil {
		m.rateLimitRejections.WithLabelValues(scope).Inc()
	}
}

// Task outcomes.
const (
	outcomeDelivered    = "delivered"
	outcomeRetried      = "retried"
	outcomeDeadLettered = "dead_lettered"
)

func (m *Metrics) taskOutcome(kind TaskKind, outcome string) {
	if m != nil {
		m.notificationTasks.WithLabelValues(string(kind), outcome).Inc()
	}
}

func (m *Metrics) cleaned(collection string, n int) {
	if m != nil && n > 0 {
		m.cleanupDeleted.WithLabelValues(collection).Add(float64(n))
	}
}
