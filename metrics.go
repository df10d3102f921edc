package session

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector receives session lifecycle measurements. The gateway and
// route guard call it best-effort; a nil collector degrades to a no-op.
type MetricsCollector interface {
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
	RecordSessionExpired()
	RecordGuardDecision(decision string)
	RecordHydration(outcome string, duration time.Duration)
}

// Collector is the Prometheus-backed MetricsCollector.
type Collector struct {
	loginSuccess   prometheus.Counter
	loginFail      *prometheus.CounterVec
	sessionExpired prometheus.Counter
	guardDecision  *prometheus.CounterVec
	hydration      *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aaroth_session_login_success_total",
			Help: "Successful credential exchanges.",
		}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aaroth_session_login_fail_total",
			Help: "Failed login attempts by failure class.",
		}, []string{"reason"}),
		sessionExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aaroth_session_expired_total",
			Help: "Forced logouts after an unauthorized response.",
		}),
		guardDecision: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aaroth_session_guard_decision_total",
			Help: "Route guard evaluations by decision.",
		}, []string{"decision"}),
		hydration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aaroth_session_hydration_seconds",
			Help:    "Boot-time identity check latency by outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFail,
		c.sessionExpired,
		c.guardDecision,
		c.hydration,
	)

	return c
}

func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFail.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordSessionExpired() {
	c.sessionExpired.Inc()
}

func (c *Collector) RecordGuardDecision(decision string) {
	c.guardDecision.WithLabelValues(decision).Inc()
}

func (c *Collector) RecordHydration(outcome string, duration time.Duration) {
	c.hydration.WithLabelValues(outcome).Observe(duration.Seconds())
}

type noopMetrics struct{}

func (noopMetrics) RecordLoginSuccess()                   {}
func (noopMetrics) RecordLoginFailure(string)             {}
func (noopMetrics) RecordSessionExpired()                 {}
func (noopMetrics) RecordGuardDecision(string)            {}
func (noopMetrics) RecordHydration(string, time.Duration) {}

func normalizeMetrics(m MetricsCollector) MetricsCollector {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

var _ MetricsCollector = (*Collector)(nil)
