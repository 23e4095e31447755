package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/zappabad/pricegen/internal/random"
)

// Path is a generated batch: Data[0] is the start price, Price the last value.
type Path struct {
	Data  []float64
	Price float64
}

// Recorder observes generated paths.
type Recorder interface {
	ObservePath(steps int, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObservePath(int, error) {}

// Generator produces batch paths.
type Generator struct {
	entropy  random.Entropy
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Generator.
type Option func(*Generator)

// WithEntropy sets the ambient source for unseeded draws and bound corrections.
func WithEntropy(e random.Entropy) Option {
	return func(g *Generator) { g.entropy = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithRecorder sets the path recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// NewGenerator returns a Generator with the given options applied.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		entropy:  random.Ambient,
		logger:   slog.New(slog.DiscardHandler),
		recorder: nopRecorder{},
	}
	for _, o := range opts {
		o(g)
	}
	if g.entropy == nil {
		g.entropy = random.Ambient
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}
	if g.recorder == nil {
		g.recorder = nopRecorder{}
	}
	return g
}

// Path builds length prices starting at start. Each step feeds the previous
// output back in as the current price with the same p, seed included, so a
// fixed seed reproduces the whole path.
//
// Because the seed is not advanced, every step of a seeded path sees the same
// draw; variation comes only from the compounding price.
func (g *Generator) Path(start float64, length int, p Params) (Path, error) {
	if length < 1 {
		err := fmt.Errorf("%w: got %d", ErrInvalidLength, length)
		g.recorder.ObservePath(0, err)
		return Path{}, err
	}
	if err := p.Validate(); err != nil {
		g.recorder.ObservePath(0, err)
		return Path{}, err
	}

	data := make([]float64, length)
	data[0] = start
	current := start
	for i := 1; i < length; i++ {
		next, err := Step(current, p, g.entropy)
		if err != nil {
			g.recorder.ObservePath(i, err)
			return Path{}, err
		}
		data[i] = next
		current = next
	}

	g.recorder.ObservePath(length, nil)
	g.logger.Debug("path generated",
		"component", "engine",
		"algorithm", string(p.Algorithm),
		"seed", p.Seed.String(),
		"length", length,
		"start", start,
		"last", current,
	)
	return Path{Data: data, Price: current}, nil
}

// Ensemble generates count independent paths concurrently. With a seed, path i
// uses Seed.Offset(i), so the ensemble is reproducible and path 0 equals Path.
// Results are ordered by index; the first failure cancels the rest.
func (g *Generator) Ensemble(ctx context.Context, start float64, length, count int, p Params) ([]Path, error) {
	if count < 1 {
		return nil, fmt.Errorf("ensemble size must be at least 1: got %d", count)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := make([]Path, count)
	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pi := p
			pi.Seed = p.Seed.Offset(int64(i))
			path, err := g.Path(start, length, pi)
			if err != nil {
				return fmt.Errorf("path %d: %w", i, err)
			}
			out[i] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
