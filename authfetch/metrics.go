package authfetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes
const (
	OutcomeOK             = "ok"
	OutcomeHTTPError      = "http_error"
	OutcomeAuthFailed     = "auth_failed"
	OutcomeTransportError = "transport_error"
)

// Refresh triggers and results
const (
	TriggerProactive = "proactive"
	TriggerReactive  = "reactive"

	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics holds the Prometheus collectors of a Client
type Metrics struct {
	Requests  *prometheus.CounterVec
	Refreshes *prometheus.CounterVec
	Retries   prometheus.Counter
}

// NewMetrics registers the client collectors with registry
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rental_session_requests_total",
				Help: "Authenticated requests by outcome",
			},
			[]string{"method", "outcome"},
		),
		Refreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rental_session_refreshes_total",
				Help: "Access token refresh calls by trigger and result",
			},
			[]string{"trigger", "result"},
		),
		Retries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rental_session_retries_total",
				Help: "Requests retried after a 401 or 403",
			},
		),
	}
}

func (m *Metrics) request(method, outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) refresh(trigger, result string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(trigger, result).Inc()
}

func (m *Metrics) retry() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}
