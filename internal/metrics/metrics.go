// Package metrics exposes the gateway's prometheus registry: counters and
// histograms for payment state transitions, bank call latency, and webhook
// delivery outcomes, plus an HTTP handler that serves them for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"payment-gateway/internal/payment"
)

// Registry bundles every metric the gateway records, all under one
// namespace so they render together on a shared dashboard.
type Registry struct {
	registry *prometheus.Registry

	transitionsTotal   *prometheus.CounterVec
	transitionDuration *prometheus.HistogramVec

	bankCallsTotal   *prometheus.CounterVec
	bankCallDuration *prometheus.HistogramVec

	webhookDeliveriesTotal *prometheus.CounterVec
}

var _ payment.TransitionObserver = (*Registry)(nil)

// New builds a Registry with its own prometheus.Registry, so gateway metrics
// never collide with the default global registry's process/go collectors.
func New(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	return &Registry{
		registry: reg,

		transitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "transitions_total",
			Help:      "Count of attempted payment status transitions by outcome.",
		}, []string{"from", "to", "outcome"}),

		transitionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "transition_duration_seconds",
			Help:      "Wall-clock duration of a Transition call, including CAS retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"to"}),

		bankCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bank",
			Name:      "calls_total",
			Help:      "Count of calls to the simulated issuing bank by operation and outcome.",
		}, []string{"operation", "outcome"}),

		bankCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bank",
			Name:      "call_duration_seconds",
			Help:      "Latency of calls to the simulated issuing bank.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"operation"}),

		webhookDeliveriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "deliveries_total",
			Help:      "Count of webhook delivery attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry's metrics in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveTransition implements payment.TransitionObserver.
func (r *Registry) ObserveTransition(from, to payment.Status, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	r.transitionsTotal.WithLabelValues(string(from), string(to), outcome).Inc()
	r.transitionDuration.WithLabelValues(string(to)).Observe(d.Seconds())
}

// BankCallOutcome classifies a completed bank call for the calls_total counter.
type BankCallOutcome string

const (
	BankOutcomeSuccess     BankCallOutcome = "success"
	BankOutcomeDeclined    BankCallOutcome = "declined"
	BankOutcomeUnavailable BankCallOutcome = "unavailable"
)

// ObserveBankCall records one completed call to the bank client.
func (r *Registry) ObserveBankCall(operation string, outcome BankCallOutcome, duration time.Duration) {
	r.bankCallsTotal.WithLabelValues(operation, string(outcome)).Inc()
	r.bankCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// WebhookOutcome classifies a completed webhook delivery attempt.
type WebhookOutcome string

const (
	WebhookDelivered WebhookOutcome = "delivered"
	WebhookRetried   WebhookOutcome = "retried"
	WebhookDeadLettered WebhookOutcome = "dead_lettered"
)

// ObserveWebhookDelivery records one webhook delivery outcome.
func (r *Registry) ObserveWebhookDelivery(outcome WebhookOutcome) {
	r.webhookDeliveriesTotal.WithLabelValues(string(outcome)).Inc()
}
