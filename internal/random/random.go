// Package random provides the uniform draws behind every price model.
//
// A seeded draw is a pure function of the seed: the same seed always yields the
// same value, across calls and across releases. The mixing function below is
// part of that contract; altering any constant changes every reproducible path
// downstream and must ship as a breaking change.
package random

import (
	"math/rand/v2"
	"strconv"
)

// SplitMix64 constants.
const (
	golden = 0x9E3779B97F4A7C15
	mix1   = 0xBF58476D1CE4E5B9
	mix2   = 0x94D049BB133111EB
)

// twoTo64 is 2^64 as a float64. Dividing by it keeps every result below 1.
const twoTo64 = float64(1<<32) * float64(1<<32)

// Seed is an optional seed value. The zero value means "no seed".
type Seed struct {
	value int64
	set   bool
}

// NoSeed is the absent seed; draws fall back to ambient entropy.
var NoSeed = Seed{}

// NewSeed returns a present seed.
func NewSeed(v int64) Seed {
	return Seed{value: v, set: true}
}

// Value returns the seed and whether it is present.
func (s Seed) Value() (int64, bool) {
	return s.value, s.set
}

// IsSet reports whether the seed is present.
func (s Seed) IsSet() bool {
	return s.set
}

// Offset derives the n-th companion seed. Models needing several independent
// draws use Offset(1), Offset(2), ... instead of drawing the same seed twice.
// An absent seed stays absent.
func (s Seed) Offset(n int64) Seed {
	if !s.set {
		return s
	}
	return Seed{value: s.value + n, set: true}
}

func (s Seed) String() string {
	if !s.set {
		return "none"
	}
	return strconv.FormatInt(s.value, 10)
}

// Entropy is a non-deterministic uniform source.
type Entropy interface {
	Float64() float64
}

type ambient struct{}

func (ambient) Float64() float64 { return rand.Float64() }

// Ambient is the process-wide entropy source. It is safe for concurrent use.
var Ambient Entropy = ambient{}

// Mix applies the SplitMix64 avalanche to x.
func Mix(x uint64) uint64 {
	x += golden
	x = (x ^ (x >> 30)) * mix1
	x = (x ^ (x >> 27)) * mix2
	return x ^ (x >> 31)
}

// Draw returns a float in [0,1). A present seed is mixed deterministically;
// an absent seed delegates to e (Ambient when e is nil).
func Draw(seed Seed, e Entropy) float64 {
	if !seed.set {
		if e == nil {
			e = Ambient
		}
		return e.Float64()
	}
	u := float64(Mix(uint64(seed.value))) / twoTo64
	if u >= 1 {
		// float64 rounding of values within 2^11 of 2^64.
		u = 0x1.fffffffffffffp-1
	}
	return u
}
