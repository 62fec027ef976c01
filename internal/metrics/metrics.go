package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth operation names used as the "operation" label.
const (
	OpLogin          = "login"
	OpLogout         = "logout"
	OpRefresh        = "refresh"
	OpForgotPassword = "forgot_password"
	OpResetPassword  = "reset_password"
	OpValidateEmail  = "validate_email"
	OpChangePassword = "change_password"
)

// Metrics holds the api counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	AuthOutcomes     *prometheus.CounterVec
	CategoryFallback prometheus.Counter
	MailEnqueueFails prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		AuthOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_auth_outcomes_total",
				Help: "Authentication operations by operation and result status",
			},
			[]string{"operation", "status"},
		),
		CategoryFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_category_fallback_total",
			Help: "Category listings served from the built-in dataset because the store was unreachable",
		}),
		MailEnqueueFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_mail_enqueue_failures_total",
			Help: "Password reset emails that could not be handed to the mail gateway",
		}),
	}

	registry.MustRegister(m.AuthOutcomes, m.CategoryFallback, m.MailEnqueueFails)
	return m
}

func (m *Metrics) RecordAuth(operation, status string) {
	if m == nil {
		return
	}
	m.AuthOutcomes.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) RecordCategoryFallback() {
	if m == nil {
		return
	}
	m.CategoryFallback.Inc()
}

func (m *Metrics) RecordMailFailure() {
	if m == nil {
		return
	}
	m.MailEnqueueFails.Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
