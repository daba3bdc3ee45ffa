package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// OrderMetrics counts placed orders, checkout failures and status transitions.
type OrderMetrics struct {
	placed      *prometheus.CounterVec
	totals      prometheus.Histogram
	failures    *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders placed, labelled by coupon outcome.",
	}, []string{"coupon"})
	totals := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_total_amount",
		Help:    "Order totals in major currency units.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_failures_total",
		Help: "Failed checkouts by error code.",
	}, []string{"code"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_transitions_total",
		Help: "Order status transitions.",
	}, []string{"from", "to"})
	reg.MustRegister(placed, totals, failures, transitions)
	return &OrderMetrics{placed: placed, totals: totals, failures: failures, transitions: transitions}
}

func (m *OrderMetrics) ObserveOrderPlaced(total money.Money, couponStatus string) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.WithLabelValues(normalizeLabel(couponStatus)).Inc()
	m.totals.Observe(total.Decimal().InexactFloat64())
}

func (m *OrderMetrics) ObserveCheckoutFailure(code string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(code)).Inc()
}

func (m *OrderMetrics) RecordTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}
