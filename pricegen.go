package pricegen

import (
	"context"
	"fmt"

	"github.com/zappabad/pricegen/internal/engine"
	"github.com/zappabad/pricegen/internal/stream"
)

// Result is a generated batch path. Data[0] is the start price and Price is
// the last element.
type Result struct {
	Data  []float64 `json:"data"`
	Price float64   `json:"price"`
}

// Live is a running price stream. See NewLive.
type Live = stream.Generator

// Status is the lifecycle state of a Live generator.
type Status = stream.Status

const (
	Idle    = stream.Idle
	Running = stream.Running
	Paused  = stream.Paused
	Stopped = stream.Stopped
)

var ErrStopped = stream.ErrStopped

// Generate builds a path of the configured length starting at startPrice.
// Invalid parameters fail before any price is computed; no partial path is
// returned.
func Generate(startPrice float64, opts ...Option) (Result, error) {
	o, err := build(opts)
	if err != nil {
		return Result{}, err
	}

	path, err := o.generator().Path(startPrice, o.Length, o.params())
	if err != nil {
		return Result{}, fmt.Errorf("generate path: %w", err)
	}
	return Result(path), nil
}

// GenerateEnsemble builds count paths concurrently. With a seed, path i uses
// seed+i, so path 0 matches Generate with the same options.
func GenerateEnsemble(ctx context.Context, startPrice float64, count int, opts ...Option) ([]Result, error) {
	o, err := build(opts)
	if err != nil {
		return nil, err
	}

	paths, err := o.generator().Ensemble(ctx, startPrice, o.Length, count, o.params())
	if err != nil {
		return nil, fmt.Errorf("generate ensemble: %w", err)
	}

	out := make([]Result, len(paths))
	for i, p := range paths {
		out[i] = Result(p)
	}
	return out, nil
}

// NewLive returns an idle generator at startPrice. Only construction problems
// fail here; step errors such as negative volatility reach OnError per tick.
func NewLive(startPrice float64, opts ...Option) (*Live, error) {
	o, err := build(opts)
	if err != nil {
		return nil, err
	}
	if o.Interval <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidInterval, o.Interval)
	}

	cfg := stream.Config{
		Interval:  o.Interval,
		Scheduler: o.Scheduler,
		Logger:    o.Logger,
		Entropy:   o.Entropy,
	}
	if o.Recorder != nil {
		cfg.Recorder = o.Recorder
	}

	cb := stream.Callbacks{
		OnStart:    o.OnStart,
		OnPrice:    o.OnPrice,
		OnStop:     o.OnStop,
		OnComplete: o.OnComplete,
		OnError:    o.OnError,
	}
	return stream.New(startPrice, o.params(), cb, cfg), nil
}

func (o Options) generator() *engine.Generator {
	opts := []engine.Option{
		engine.WithEntropy(o.Entropy),
		engine.WithLogger(o.Logger),
	}
	if o.Recorder != nil {
		opts = append(opts, engine.WithRecorder(o.Recorder))
	}
	return engine.NewGenerator(opts...)
}
