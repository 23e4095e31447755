// Package postprocess turns a raw model price into an output price.
//
// The order is fixed: delisting or bounding, then step rounding, then output
// typing. Reordering changes observable values.
package postprocess

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zappabad/pricegen/internal/random"
)

var ErrUnknownDataType = errors.New("unknown data type")

// DataType selects the output representation.
type DataType string

const (
	Float DataType = "float"
	Int   DataType = "int"
)

// ParseDataType accepts "float" or "int" in any case. Empty means Float.
func ParseDataType(s string) (DataType, error) {
	switch DataType(strings.ToLower(strings.TrimSpace(s))) {
	case "", Float:
		return Float, nil
	case Int:
		return Int, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDataType, s)
}

// Config controls post-processing.
type Config struct {
	Min       float64
	Max       float64
	Delisting bool
	Step      float64
	DataType  DataType
}

// BoundsEnabled reports whether min/max correction is active.
func (c Config) BoundsEnabled() bool {
	return !c.Delisting && !(c.Min == 0 && c.Max == 0)
}

// Apply runs the full pipeline on price. Bound corrections draw from e
// (random.Ambient when nil), never from the model seed.
func Apply(price float64, cfg Config, e random.Entropy) float64 {
	if !cfg.Delisting {
		price = Bound(price, cfg.Min, cfg.Max, e)
	}
	price = Discretize(price, cfg.Step)
	return Format(price, cfg.DataType)
}

// spreads are the maximum multipliers of the pull magnitude; one is picked
// per correction.
var spreads = [...]float64{7.5, 5.5, 4.5, 3.5, 2.5, 1.5, 0.5}

// Bound nudges an out-of-band price back toward [min, max]. min == max == 0
// disables bounding. In-band prices are returned unchanged.
func Bound(price, min, max float64, e random.Entropy) float64 {
	if min == 0 && max == 0 {
		return price
	}
	if price >= min && price <= max {
		return price
	}
	if e == nil {
		e = random.Ambient
	}

	pick := int(e.Float64() * float64(len(spreads)))
	if pick >= len(spreads) {
		pick = len(spreads) - 1
	}
	multiplier := e.Float64()*spreads[pick] + 0.1
	pull := price * (e.Float64()*0.1 + 0.001) * multiplier

	if price < min {
		return price + pull
	}
	return price - pull
}

// Discretize rounds price to the nearest multiple of step. step <= 0 is a no-op.
func Discretize(price, step float64) float64 {
	if step <= 0 || !finite(price) {
		return price
	}
	s := decimal.NewFromFloat(step)
	return decimal.NewFromFloat(price).Div(s).Round(0).Mul(s).InexactFloat64()
}

// Format applies the output type: integers for Int, two decimals otherwise.
// Ties round half away from zero on the decimal value, so -2.5 becomes -3 and
// 1.005 becomes 1.01 where binary float rounding would give -2 and 1.00.
func Format(price float64, dt DataType) float64 {
	if !finite(price) {
		return price
	}
	places := int32(2)
	if dt == Int {
		places = 0
	}
	return decimal.NewFromFloat(price).Round(places).InexactFloat64()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
