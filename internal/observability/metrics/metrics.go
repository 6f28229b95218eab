package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flows.
type BookingMetrics struct {
	createdTotal    *prometheus.CounterVec
	conflictsTotal  *prometheus.CounterVec
	cancelledTotal  *prometheus.CounterVec
	slotGenDuration prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		createdTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendafacil",
			Subsystem: "booking",
			Name:      "created_total",
			Help:      "Appointments created, by origin (professional or public)",
		}, []string{"origin"}),
		conflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendafacil",
			Subsystem: "booking",
			Name:      "conflicts_total",
			Help:      "Bookings rejected due to an overlapping appointment",
		}, []string{"operation"}),
		cancelledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendafacil",
			Subsystem: "booking",
			Name:      "cancelled_total",
			Help:      "Appointments cancelled, by actor",
		}, []string{"actor"}),
		slotGenDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agendafacil",
			Subsystem: "booking",
			Name:      "slot_generation_seconds",
			Help:      "Time spent computing an availability listing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.conflictsTotal, m.cancelledTotal, m.slotGenDuration)
	return m
}

func (m *BookingMetrics) ObserveCreated(origin string) {
	if m == nil {
		return
	}
	m.createdTotal.WithLabelValues(origin).Inc()
}

func (m *BookingMetrics) ObserveConflict(operation string) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(operation).Inc()
}

func (m *BookingMetrics) ObserveCancelled(actor string) {
	if m == nil {
		return
	}
	m.cancelledTotal.WithLabelValues(actor).Inc()
}

func (m *BookingMetrics) ObserveSlotGeneration(seconds float64) {
	if m == nil {
		return
	}
	m.slotGenDuration.Observe(seconds)
}
