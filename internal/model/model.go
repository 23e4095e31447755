// Package model holds the stochastic price models. Each model maps the current
// price, volatility, drift and a seed to the raw next price, with no hidden state.
package model

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/zappabad/pricegen/internal/random"
)

// DT is the simulation time step: one day as a fraction of a year.
const DT = 1.0 / 365

var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Params are the model inputs for one step.
type Params struct {
	CurrentPrice float64
	Volatility   float64
	Drift        float64
}

// Model computes the raw next price. Unseeded draws come from e.
type Model func(p Params, seed random.Seed, e random.Entropy) float64

// Name identifies a registered model.
type Name string

const (
	RandomWalk Name = "RandomWalk"
	GBM        Name = "GBM"
)

// registry is the closed set of models. The long GBM name is accepted as an alias.
var registry = map[Name]Model{
	RandomWalk:                Walk,
	GBM:                       GeometricBrownianMotion,
	"GeometricBrownianMotion": GeometricBrownianMotion,
}

// Lookup returns the model registered under name.
func Lookup(name Name) (Model, error) {
	m, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(name))
	}
	return m, nil
}

// Names returns the canonical model names, sorted.
func Names() []Name {
	names := []Name{RandomWalk, GBM}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// driftTerm is the Itô-corrected drift over one step.
func driftTerm(p Params) float64 {
	return (p.Drift - 0.5*p.Volatility*p.Volatility) * DT
}

// Walk is the bounded-shock random walk: a uniform shock scaled to [-1,1].
func Walk(p Params, seed random.Seed, e random.Entropy) float64 {
	u := random.Draw(seed, e)
	epsilon := (u - 0.5) * 2
	diffusion := p.Volatility * math.Sqrt(DT) * epsilon
	return p.CurrentPrice * math.Exp(driftTerm(p)+diffusion)
}

// GeometricBrownianMotion draws a standard normal via Box–Muller from two
// uniforms taken from seed and seed+1.
func GeometricBrownianMotion(p Params, seed random.Seed, e random.Entropy) float64 {
	u1 := random.Draw(seed, e)
	u2 := random.Draw(seed.Offset(1), e)
	if u1 == 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return p.CurrentPrice * math.Exp(driftTerm(p)+p.Volatility*math.Sqrt(DT)*z)
}
