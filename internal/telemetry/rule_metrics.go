package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RuleMetrics holds Prometheus metrics for the booking rules: how often each
// form step passes, how many methods land in each bucket and how checkouts
// end. A nil *RuleMetrics records nothing.
type RuleMetrics struct {
	// Validation
	ValidationRuns *prometheus.CounterVec

	// Method ranking
	MethodsRanked *prometheus.CounterVec

	// Checkout
	Checkouts       *prometheus.CounterVec
	ShipmentsBooked *prometheus.CounterVec
	CartValue       prometheus.Histogram
}

// NewRuleMetrics creates the rule metrics and registers them with reg.
func NewRuleMetrics(namespace string, reg prometheus.Registerer) *RuleMetrics {
	if namespace == "" {
		namespace = "shippor"
	}

	subsystem := "rules"
	factory := promauto.With(reg)

	return &RuleMetrics{
		ValidationRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validation_runs_total",
				Help:      "Total draft validations per form step",
			},
			[]string{"step", "result"}, // result: valid, invalid
		),
		MethodsRanked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "methods_ranked_total",
				Help:      "Total shipping methods ranked, by bucket",
			},
			[]string{"bucket", "sort_mode"}, // bucket: home, pickup, return
		),
		Checkouts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkouts_total",
				Help:      "Total checkout attempts by outcome",
			},
			[]string{"payment", "outcome"}, // outcome: shipped, partial, failed-payment, rejected
		),
		ShipmentsBooked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "shipments_booked_total",
				Help:      "Total shipment bookings by result",
			},
			[]string{"result"}, // result: created, failed
		),
		CartValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_total",
				Help:      "Cart total at checkout, fee included",
				Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000},
			},
		),
	}
}

func result(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

// ObserveValidation counts one validation of step.
func (m *RuleMetrics) ObserveValidation(step string, valid bool) {
	if m == nil {
		return
	}
	m.ValidationRuns.WithLabelValues(step, result(valid, "valid", "invalid")).Inc()
}

// ObserveRanking counts the methods placed in each bucket.
func (m *RuleMetrics) ObserveRanking(sortMode string, home, pickup, ret int) {
	if m == nil {
		return
	}
	m.MethodsRanked.WithLabelValues("home", sortMode).Add(float64(home))
	m.MethodsRanked.WithLabelValues("pickup", sortMode).Add(float64(pickup))
	m.MethodsRanked.WithLabelValues("return", sortMode).Add(float64(ret))
}

// ObserveBooking counts one shipment booking attempt.
func (m *RuleMetrics) ObserveBooking(created bool) {
	if m == nil {
		return
	}
	m.ShipmentsBooked.WithLabelValues(result(created, "created", "failed")).Inc()
}

// ObserveCheckout counts a checkout and, when money was taken, its value.
func (m *RuleMetrics) ObserveCheckout(payment, outcome string, total float64) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(payment, outcome).Inc()
	if total > 0 {
		m.CartValue.Observe(total)
	}
}
