package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name, labelValue string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestBookingMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveCreated("professional")
	m.ObserveCreated("professional")
	m.ObserveCreated("public")
	m.ObserveConflict("create")
	m.ObserveCancelled("client")
	m.ObserveSlotGeneration(0.002)

	assert.Equal(t, 2.0, counterValue(t, reg, "agendafacil_booking_created_total", "professional"))
	assert.Equal(t, 1.0, counterValue(t, reg, "agendafacil_booking_created_total", "public"))
	assert.Equal(t, 1.0, counterValue(t, reg, "agendafacil_booking_conflicts_total", "create"))
	assert.Equal(t, 1.0, counterValue(t, reg, "agendafacil_booking_cancelled_total", "client"))

	families, err := reg.Gather()
	require.NoError(t, err)
	var hist *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "agendafacil_booking_slot_generation_seconds" {
			hist = mf
		}
	}
	require.NotNil(t, hist)
	assert.Equal(t, uint64(1), hist.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveCreated("professional")
	m.ObserveConflict("create")
	m.ObserveCancelled("client")
	m.ObserveSlotGeneration(0.1)
}
