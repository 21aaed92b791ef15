package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRecalculation(t *testing.T) {
	m := New()

	m.RecordRecalculation("all", 9, 1, false, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecalculationRuns.WithLabelValues("all", "partial")))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.ProductsRecalculated.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductsRecalculated.WithLabelValues("error")))
}

func TestRecordStageTransition(t *testing.T) {
	m := New()

	m.RecordStageTransition("advance", "Prototipagem")
	m.RecordStageTransition("advance", "Prototipagem")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StageTransitions.WithLabelValues("advance", "Prototipagem")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordStageTransition("move", "Aprovado")
		m.RecordRecalculation("product", 1, 0, false, time.Millisecond)
		m.IncInFlight()
		m.DecInFlight()
	})
}
