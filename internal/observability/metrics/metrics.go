package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters for the lead-capture flow. All observe methods are
// nil-safe so handlers can run without a registry in tests.
type Metrics struct {
	leadsTotal       *prometheus.CounterVec
	alertsTotal      *prometheus.CounterVec
	rateLimitedTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homevisit",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total lead form submissions by outcome",
		}, []string{"status"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homevisit",
			Subsystem: "notify",
			Name:      "alerts_total",
			Help:      "Total owner alert deliveries by channel and outcome",
		}, []string{"channel", "status"}),
		rateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homevisit",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter",
		}, []string{"endpoint"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadsTotal, m.alertsTotal, m.rateLimitedTotal)
	return m
}

// ObserveLead records a submission outcome: accepted, invalid, rate_limited
// or error.
func (m *Metrics) ObserveLead(status string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(status).Inc()
}

// ObserveAlert records one delivery attempt on a channel.
func (m *Metrics) ObserveAlert(channel string, delivered bool) {
	if m == nil {
		return
	}
	status := "failed"
	if delivered {
		status = "delivered"
	}
	m.alertsTotal.WithLabelValues(channel, status).Inc()
}

// ObserveRateLimited records a 429 on the named endpoint.
func (m *Metrics) ObserveRateLimited(endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitedTotal.WithLabelValues(endpoint).Inc()
}
