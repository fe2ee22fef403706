package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart mutations and checkout outcomes.
type CartMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	checkouts  *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart mutations by operation and result.",
	}, []string{"operation", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_operation_duration_seconds",
		Help:    "Duration of cart operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	reg.MustRegister(operations, duration, checkouts)
	return &CartMetrics{
		operations: operations,
		duration:   duration,
		checkouts:  checkouts,
	}
}

// ObserveOperation records one cart mutation with its outcome and duration.
func (c *CartMetrics) ObserveOperation(operation string, err error, elapsed time.Duration) {
	if c == nil || c.operations == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.operations.WithLabelValues(normalizeLabel(operation), result).Inc()
	c.duration.WithLabelValues(normalizeLabel(operation)).Observe(elapsed.Seconds())
}

// IncCheckout counts a checkout attempt by result.
func (c *CartMetrics) IncCheckout(result string) {
	if c == nil || c.checkouts == nil {
		return
	}
	c.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
