package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservePath(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObservePath(10, nil)
	c.ObservePath(5, nil)
	c.ObservePath(0, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Paths.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Paths.WithLabelValues("error")))
	assert.Equal(t, 15.0, testutil.ToFloat64(c.PathSteps))
}

func TestObserveTick(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObserveTick(nil)
	c.ObserveTick(nil)
	c.ObserveTick(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TickErrors))
}

func TestObserveStatusIsOneHot(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObserveStatus("running")
	c.ObserveStatus("paused")

	assert.Equal(t, 0.0, testutil.ToFloat64(c.Status.WithLabelValues("running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Status.WithLabelValues("paused")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Status.WithLabelValues("stopped")))
}

func TestRegistryExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.ObserveTick(nil)

	expected := `
# HELP pricegen_ticks_total Total number of live ticks that produced a price
# TYPE pricegen_ticks_total counter
pricegen_ticks_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "pricegen_ticks_total"))
}

func TestNewWithNilRegisterer(t *testing.T) {
	c := New(nil)
	c.ObserveTick(nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Ticks))
}
