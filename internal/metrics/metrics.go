package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

// Metrics holds the booking service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	bookingCreated  *prometheus.CounterVec
	bookingDecision *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookingCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_created_total",
				Help:      "Count of booking creation attempts by result.",
			},
			[]string{"result"},
		),
		bookingDecision: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_decision_total",
				Help:      "Count of owner decisions over bookings.",
			},
			[]string{"decision"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
	reg.MustRegister(m.bookingCreated, m.bookingDecision, m.httpDuration)
	return m
}

func (m *Metrics) IncBookingCreated(result string) {
	if m == nil {
		return
	}
	m.bookingCreated.WithLabelValues(result).Inc()
}

func (m *Metrics) IncBookingDecision(decision string) {
	if m == nil {
		return
	}
	m.bookingDecision.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}
