package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/pricegen/internal/model"
	"github.com/zappabad/pricegen/internal/postprocess"
	"github.com/zappabad/pricegen/internal/random"
)

type recorded struct {
	steps int
	err   error
}

type fakeRecorder struct{ calls []recorded }

func (f *fakeRecorder) ObservePath(steps int, err error) {
	f.calls = append(f.calls, recorded{steps, err})
}

func seeded(seed int64) Params {
	p := DefaultParams()
	p.Seed = random.NewSeed(seed)
	return p
}

func spread(data []float64) float64 {
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}

func TestPathLengthAndStart(t *testing.T) {
	g := NewGenerator()
	for _, n := range []int{1, 2, 10, 100} {
		path, err := g.Path(12345, n, DefaultParams())
		require.NoError(t, err)
		require.Len(t, path.Data, n)
		assert.Equal(t, 12345.0, path.Data[0])
		assert.Equal(t, path.Data[n-1], path.Price)
	}
}

func TestPathStartIsNotPostProcessed(t *testing.T) {
	p := seeded(1)
	p.Post = postprocess.Config{Step: 100, DataType: postprocess.Int}

	path, err := NewGenerator().Path(10033.337, 5, p)
	require.NoError(t, err)
	assert.Equal(t, 10033.337, path.Data[0])
}

func TestPathSeedReproducible(t *testing.T) {
	g := NewGenerator()
	for _, algo := range []model.Name{model.RandomWalk, model.GBM} {
		p := seeded(123)
		p.Algorithm = algo

		a, err := g.Path(10000, 10, p)
		require.NoError(t, err)
		b, err := g.Path(10000, 10, p)
		require.NoError(t, err)

		assert.Equal(t, a.Data, b.Data, algo)
		assert.Equal(t, 10000.0, a.Data[0])
	}
}

func TestPathSeedReusedEveryStep(t *testing.T) {
	// Same seed each step: the log return is identical for every step
	// (up to two-decimal output rounding).
	p := seeded(77)
	path, err := NewGenerator().Path(10000, 20, p)
	require.NoError(t, err)

	first := math.Log(path.Data[1] / path.Data[0])
	for i := 2; i < len(path.Data); i++ {
		assert.InDelta(t, first, math.Log(path.Data[i]/path.Data[i-1]), 2e-6)
	}
}

func TestPathStepMultiples(t *testing.T) {
	for _, step := range []float64{100, 500} {
		p := DefaultParams()
		p.Post.Step = step

		path, err := NewGenerator().Path(10000, 50, p)
		require.NoError(t, err)
		for _, v := range path.Data {
			assert.Zero(t, math.Mod(v, step), "%v not a multiple of %v", v, step)
		}
	}
}

func TestPathDataTypes(t *testing.T) {
	p := DefaultParams()
	p.Post.DataType = postprocess.Int
	path, err := NewGenerator().Path(10000, 50, p)
	require.NoError(t, err)
	for _, v := range path.Data {
		assert.Equal(t, math.Trunc(v), v)
	}

	p.Post.DataType = postprocess.Float
	path, err = NewGenerator().Path(10000.5, 50, p)
	require.NoError(t, err)
	for _, v := range path.Data {
		assert.GreaterOrEqual(t, decimal.NewFromFloat(v).Exponent(), int32(-2), "%v", v)
	}
}

func TestPathVolatilityWidensRange(t *testing.T) {
	g := NewGenerator()
	for _, algo := range []model.Name{model.RandomWalk, model.GBM} {
		for _, seed := range []int64{12345, 456, 42} {
			low := seeded(seed)
			low.Algorithm = algo
			low.Drift = 0
			low.Volatility = 0.01

			high := low
			high.Volatility = 0.3

			a, err := g.Path(10000, 30, low)
			require.NoError(t, err)
			b, err := g.Path(10000, 30, high)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, spread(b.Data), spread(a.Data), "%s seed %d", algo, seed)
		}
	}
}

func TestPathNegativeVolatilityFails(t *testing.T) {
	rec := &fakeRecorder{}
	p := DefaultParams()
	p.Volatility = -1

	_, err := NewGenerator(WithRecorder(rec)).Path(10000, 10, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNegativeVolatility))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, 0, rec.calls[0].steps)
}

func TestPathInvalidLength(t *testing.T) {
	_, err := NewGenerator().Path(10000, 0, DefaultParams())
	assert.True(t, errors.Is(err, ErrInvalidLength))
}

func TestPathDelistingSkipsBounds(t *testing.T) {
	// A steep negative drift with delisting is never corrected back into the band.
	p := seeded(3)
	p.Drift = -400
	p.Volatility = 0
	p.Post = postprocess.Config{Min: 50, Max: 150, Delisting: true, DataType: postprocess.Float}

	path, err := NewGenerator().Path(100, 10, p)
	require.NoError(t, err)
	assert.Less(t, path.Price, 50.0)
	for i := 1; i < len(path.Data); i++ {
		assert.LessOrEqual(t, path.Data[i], path.Data[i-1])
	}
}

func TestPathBoundsPullTowardBand(t *testing.T) {
	// One percent down per step; unbounded this ends near 13.5.
	p := seeded(3)
	p.Drift = -3.65
	p.Volatility = 0
	p.Post = postprocess.Config{Min: 90, Max: 150, DataType: postprocess.Float}

	path, err := NewGenerator().Path(100, 200, p)
	require.NoError(t, err)
	assert.Greater(t, path.Price, 60.0)
}

func TestPathRecordsSuccess(t *testing.T) {
	rec := &fakeRecorder{}
	_, err := NewGenerator(WithRecorder(rec)).Path(1, 7, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, []recorded{{7, nil}}, rec.calls)
}

func TestEnsemble(t *testing.T) {
	g := NewGenerator()
	p := seeded(10)

	paths, err := g.Ensemble(context.Background(), 100, 25, 8, p)
	require.NoError(t, err)
	require.Len(t, paths, 8)

	single, err := g.Path(100, 25, p)
	require.NoError(t, err)
	assert.Equal(t, single.Data, paths[0].Data)

	again, err := g.Ensemble(context.Background(), 100, 25, 8, p)
	require.NoError(t, err)
	for i := range paths {
		assert.Equal(t, paths[i].Data, again[i].Data)
		assert.Equal(t, 100.0, paths[i].Data[0])
	}
	assert.NotEqual(t, paths[0].Data, paths[1].Data)
}

func TestEnsembleErrors(t *testing.T) {
	g := NewGenerator()

	_, err := g.Ensemble(context.Background(), 100, 10, 0, DefaultParams())
	assert.Error(t, err)

	p := DefaultParams()
	p.Volatility = -1
	_, err = g.Ensemble(context.Background(), 100, 10, 3, p)
	assert.True(t, errors.Is(err, ErrNegativeVolatility))

	_, err = g.Ensemble(context.Background(), 100, 0, 3, DefaultParams())
	assert.True(t, errors.Is(err, ErrInvalidLength))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Ensemble(ctx, 100, 10, 3, DefaultParams())
	assert.True(t, errors.Is(err, context.Canceled))
}
