package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestQueueMetricsRegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQueueMetrics(reg)

	m.ObserveBooking("Normal", "booked")
	m.ObserveBooking("Normal", "booked")
	m.ObserveBooking("Emergency", "rejected")
	m.ObserveTokenIssued()
	m.ObserveTransition("Completed")
	m.ObserveBookingLatency(0.05)
	m.ObserveEstimatedWait(20)
	m.ObserveNotification("email", "ok")

	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("Normal", "booked")); got != 2 {
		t.Errorf("booked count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("Emergency", "rejected")); got != 1 {
		t.Errorf("rejected count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.tokensIssued); got != 1 {
		t.Errorf("tokens issued = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.statusTransitions.WithLabelValues("Completed")); got != 1 {
		t.Errorf("transitions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.notificationsTotal.WithLabelValues("email", "ok")); got != 1 {
		t.Errorf("deliveries = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 6 {
		t.Errorf("registered families = %d, want 6", len(families))
	}
}

func TestQueueMetricsNilSafe(t *testing.T) {
	var m *QueueMetrics
	m.ObserveBooking("Normal", "booked")
	m.ObserveTokenIssued()
	m.ObserveTransition("Completed")
	m.ObserveBookingLatency(1)
	m.ObserveEstimatedWait(5)
	m.ObserveNotification("sms", "error")
}
