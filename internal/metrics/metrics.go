package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginDisabled           = "disabled"
	LoginLocked             = "locked"
	LoginError              = "error"
)

// Authorization filter outcomes.
const (
	FilterAnonymous     = "anonymous"
	FilterInvalidToken  = "invalid_token"
	FilterUnknownUser   = "unknown_user"
	FilterInactiveUser  = "inactive_user"
	FilterAuthenticated = "authenticated"
	FilterError         = "error"
)

// Metrics holds the authentication counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	LoginAttempts  *prometheus.CounterVec
	Lockouts       prometheus.Counter
	TokensIssued   prometheus.Counter
	FilterOutcomes *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"result"},
		),
		Lockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_account_lockouts_total",
			Help: "Accounts locked after repeated failed logins",
		}),
		TokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Session tokens issued",
		}),
		FilterOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_filter_requests_total",
				Help: "Requests seen by the authorization filter by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_http_requests_total",
				Help: "HTTP requests by method and status class",
			},
			[]string{"method", "status"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.LoginAttempts,
		m.Lockouts,
		m.TokensIssued,
		m.FilterOutcomes,
		m.HTTPRequests,
	)

	return m
}

func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveLockout() {
	if m == nil {
		return
	}
	m.Lockouts.Inc()
}

func (m *Metrics) ObserveTokenIssued() {
	if m == nil {
		return
	}
	m.TokensIssued.Inc()
}

func (m *Metrics) ObserveFilter(outcome string) {
	if m == nil {
		return
	}
	m.FilterOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(method string, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, status).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
