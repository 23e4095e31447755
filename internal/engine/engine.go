// Package engine computes prices: one model step plus post-processing, and
// batch paths built from repeated steps.
package engine

import (
	"errors"
	"fmt"

	"github.com/zappabad/pricegen/internal/model"
	"github.com/zappabad/pricegen/internal/postprocess"
	"github.com/zappabad/pricegen/internal/random"
)

var (
	ErrNegativeVolatility = errors.New("volatility must be a non-negative number")
	ErrInvalidLength      = errors.New("path length must be at least 1")
)

// Params configure a single step. The same Params are reused for every step
// of a path.
type Params struct {
	Volatility float64
	Drift      float64
	Algorithm  model.Name
	Seed       random.Seed
	Post       postprocess.Config
}

// DefaultParams mirrors the library defaults.
func DefaultParams() Params {
	return Params{
		Volatility: 0.1,
		Drift:      0.05,
		Algorithm:  model.RandomWalk,
		Post:       postprocess.Config{DataType: postprocess.Float},
	}
}

// Validate checks p before any draw is taken.
func (p Params) Validate() error {
	if p.Volatility < 0 {
		return fmt.Errorf("%w: got %v", ErrNegativeVolatility, p.Volatility)
	}
	if _, err := model.Lookup(p.Algorithm); err != nil {
		return err
	}
	return nil
}

// Step computes the next price from current. Unseeded model draws and all
// bound corrections read from e (random.Ambient when nil).
func Step(current float64, p Params, e random.Entropy) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	m, _ := model.Lookup(p.Algorithm)

	raw := m(model.Params{
		CurrentPrice: current,
		Volatility:   p.Volatility,
		Drift:        p.Drift,
	}, p.Seed, e)

	return postprocess.Apply(raw, p.Post, e), nil
}
