// Package pricegen simulates asset price paths.
//
// Generate builds a finite batch path in one call. NewLive returns a
// generator that emits one price per interval until paused or stopped.
// Both use the same step: a stochastic model (RandomWalk or GBM) followed by
// bounding or delisting, optional step rounding, and output typing.
//
// A seed makes the model draws reproducible:
//
//	res, err := pricegen.Generate(10000,
//		pricegen.WithSeed(123),
//		pricegen.WithLength(10),
//	)
//
// Bound corrections always use ambient randomness, so bounded paths are not
// reproducible even when seeded.
package pricegen
