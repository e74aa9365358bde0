package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveStage("summarize", nil, 20*time.Millisecond)
	m.ObserveStage("summarize", errors.New("boom"), time.Second)
	m.ObserveModelCall("embed-chunk", nil)
	m.ObserveTrigger("fired")
	m.ObserveTrigger("fired")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageRuns.WithLabelValues("summarize", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageRuns.WithLabelValues("summarize", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelCalls.WithLabelValues("embed-chunk", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.triggers.WithLabelValues("fired")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveStage("chunk", nil, time.Millisecond)
		m.ObserveModelCall("embed-chunk", errors.New("x"))
		m.ObserveTrigger("ignored")
		_ = m.Handler()
	})
}
