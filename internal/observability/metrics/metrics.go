package metrics

import "github.com/prometheus/client_golang/prometheus"

// QueueMetrics exposes counters/histograms for the booking pipeline.
type QueueMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	tokensIssued       prometheus.Counter
	statusTransitions  *prometheus.CounterVec
	bookingLatency     prometheus.Histogram
	estimatedWait      prometheus.Histogram
	notificationsTotal *prometheus.CounterVec
}

func NewQueueMetrics(reg prometheus.Registerer) *QueueMetrics {
	m := &QueueMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicq",
			Subsystem: "booking",
			Name:      "requests_total",
			Help:      "Total booking requests",
		}, []string{"priority", "status"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicq",
			Subsystem: "booking",
			Name:      "tokens_issued_total",
			Help:      "Total queue tokens issued",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicq",
			Subsystem: "booking",
			Name:      "status_transitions_total",
			Help:      "Total appointment status transitions",
		}, []string{"to"}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinicq",
			Subsystem: "booking",
			Name:      "latency_seconds",
			Help:      "Latency of the booking pipeline",
			Buckets:   prometheus.DefBuckets,
		}),
		estimatedWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinicq",
			Subsystem: "queue",
			Name:      "estimated_wait_minutes",
			Help:      "Estimated wait handed to patients at booking time",
			Buckets:   []float64{0, 10, 20, 30, 60, 120, 240, 480},
		}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicq",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Total notification delivery attempts",
		}, []string{"channel", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.bookingsTotal, m.tokensIssued, m.statusTransitions,
		m.bookingLatency, m.estimatedWait, m.notificationsTotal,
	)
	return m
}

func (m *QueueMetrics) ObserveBooking(priority, status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(priority, status).Inc()
}

func (m *QueueMetrics) ObserveTokenIssued() {
	if m == nil {
		return
	}
	m.tokensIssued.Inc()
}

func (m *QueueMetrics) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(to).Inc()
}

func (m *QueueMetrics) ObserveBookingLatency(seconds float64) {
	if m == nil {
		return
	}
	m.bookingLatency.Observe(seconds)
}

func (m *QueueMetrics) ObserveEstimatedWait(minutes float64) {
	if m == nil {
		return
	}
	m.estimatedWait.Observe(minutes)
}

func (m *QueueMetrics) ObserveNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(channel, status).Inc()
}
