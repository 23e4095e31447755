package postprocess

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seq replays fixed draws.
type seq []float64

func (s *seq) Float64() float64 {
	v := (*s)[0]
	*s = (*s)[1:]
	return v
}

func TestParseDataType(t *testing.T) {
	for in, want := range map[string]DataType{"": Float, "float": Float, "FLOAT": Float, " int ": Int} {
		got, err := ParseDataType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDataType("decimal")
	assert.True(t, errors.Is(err, ErrUnknownDataType))
}

func TestBoundDisabled(t *testing.T) {
	e := seq{}
	assert.Equal(t, 123.456, Bound(123.456, 0, 0, &e))
}

func TestBoundInBandUntouched(t *testing.T) {
	e := seq{}
	assert.Equal(t, 100.0, Bound(100, 90, 110, &e))
	assert.Equal(t, 90.0, Bound(90, 90, 110, &e))
	assert.Equal(t, 110.0, Bound(110, 90, 110, &e))
}

func TestBoundBelowMinPullsUp(t *testing.T) {
	// pick spread 0 (7.5), multiplier 0.5*7.5+0.1, magnitude 0.5*0.1+0.001.
	e := seq{0, 0.5, 0.5}
	want := 80 + 80*0.051*3.85
	assert.InDelta(t, want, Bound(80, 90, 110, &e), 1e-9)
}

func TestBoundAboveMaxPullsDown(t *testing.T) {
	// pick the last spread (0.5).
	e := seq{0.99, 1, 0}
	want := 200 - 200*0.001*0.6
	assert.InDelta(t, want, Bound(200, 90, 110, &e), 1e-9)
}

func TestBoundAlwaysMovesTowardBand(t *testing.T) {
	for i := 0; i < 200; i++ {
		assert.Greater(t, Bound(50, 90, 110, nil), 50.0)
		assert.Less(t, Bound(150, 90, 110, nil), 150.0)
	}
}

func TestDiscretize(t *testing.T) {
	assert.Equal(t, 10100.0, Discretize(10061, 100))
	assert.Equal(t, 10000.0, Discretize(10049.99, 100))
	assert.Equal(t, 12.5, Discretize(12.4, 0.5))
	assert.Equal(t, 0.3, Discretize(0.29, 0.1))
	assert.Equal(t, 10061.0, Discretize(10061, 0))
	assert.Equal(t, 10061.0, Discretize(10061, -5))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, 10012.35, Format(10012.3456, Float))
	assert.Equal(t, 10012.0, Format(10012.3456, Int))
	assert.Equal(t, 10013.0, Format(10012.5, Int))
	assert.Equal(t, -3.0, Format(-3.4, Int))
	assert.Equal(t, -3.0, Format(-2.5, Int))
	assert.Equal(t, 3.0, Format(2.5, Int))
	assert.Equal(t, 1.01, Format(1.005, Float))
	assert.Equal(t, -1.01, Format(-1.005, Float))
	assert.True(t, math.IsInf(Format(math.Inf(1), Float), 1))
}

func TestApplyOrder(t *testing.T) {
	// Step first, then typing: 10061 -> 10100 -> 10100.
	assert.Equal(t, 10100.0, Apply(10061.789, Config{Step: 100, DataType: Int}, nil))

	// Float typing of a step multiple keeps the multiple.
	got := Apply(10.26, Config{Step: 0.25, DataType: Float}, nil)
	assert.Equal(t, 10.25, got)
}

func TestApplyDelistingPassesNegativePrices(t *testing.T) {
	e := seq{}
	cfg := Config{Min: 90, Max: 110, Delisting: true}
	assert.Equal(t, -4.5, Apply(-4.5, cfg, &e))
	assert.Equal(t, 0.0, Apply(0, cfg, &e))
	assert.False(t, cfg.BoundsEnabled())
}

func TestApplyBounds(t *testing.T) {
	e := seq{0, 0.5, 0.5}
	cfg := Config{Min: 90, Max: 110}
	require.True(t, cfg.BoundsEnabled())
	assert.Equal(t, 95.71, Apply(80, cfg, &e))
}

func TestFloatOutputHasTwoDecimals(t *testing.T) {
	for _, p := range []float64{1.005, 99.999, 12345.6789, 0.001, 7} {
		out := Format(p, Float)
		assert.GreaterOrEqual(t, decimal.NewFromFloat(out).Exponent(), int32(-2), "%v", p)
	}
}
