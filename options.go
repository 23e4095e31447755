package pricegen

import (
	"errors"
	"log/slog"
	"time"

	"github.com/zappabad/pricegen/internal/engine"
	"github.com/zappabad/pricegen/internal/model"
	"github.com/zappabad/pricegen/internal/postprocess"
	"github.com/zappabad/pricegen/internal/random"
	"github.com/zappabad/pricegen/internal/stream"
)

var ErrInvalidInterval = errors.New("interval must be positive")

// Algorithm names a price model.
type Algorithm = model.Name

const (
	RandomWalk Algorithm = model.RandomWalk
	GBM        Algorithm = model.GBM
)

// DataType selects the output representation of each price.
type DataType = postprocess.DataType

const (
	Float DataType = postprocess.Float
	Int   DataType = postprocess.Int
)

// Entropy supplies ambient randomness for unseeded draws and bound corrections.
type Entropy = random.Entropy

// Scheduler arms the live generator's recurring tick.
type Scheduler = stream.Scheduler

// Recorder observes batch paths, live ticks and live status changes.
// *metrics.Collector implements it.
type Recorder interface {
	engine.Recorder
	stream.Recorder
}

// Options is the full generator configuration.
type Options struct {
	Length     int
	Volatility float64
	Drift      float64
	Algorithm  Algorithm
	Seed       random.Seed
	Min        float64
	Max        float64
	Delisting  bool
	Step       float64
	DataType   DataType
	Interval   time.Duration

	OnStart    func()
	OnPrice    func(price, previous float64)
	OnStop     func()
	OnComplete func()
	OnError    func(err error)

	Logger    *slog.Logger
	Recorder  Recorder
	Scheduler Scheduler
	Entropy   Entropy
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the defaults used when an option is not given.
func DefaultOptions() Options {
	return Options{
		Length:     100,
		Volatility: 0.1,
		Drift:      0.05,
		Algorithm:  RandomWalk,
		DataType:   Float,
		Interval:   60 * time.Second,
	}
}

// WithLength sets the batch path length, start price included.
func WithLength(n int) Option {
	return func(o *Options) { o.Length = n }
}

// WithVolatility sets the annualized volatility. Negative values are rejected
// when a price is computed.
func WithVolatility(v float64) Option {
	return func(o *Options) { o.Volatility = v }
}

// WithDrift sets the annualized drift.
func WithDrift(d float64) Option {
	return func(o *Options) { o.Drift = d }
}

// WithSeed makes model draws reproducible. The same seed is used for every step.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = random.NewSeed(seed) }
}

// WithBounds sets the soft price bounds. (0, 0) disables bounding.
func WithBounds(min, max float64) Option {
	return func(o *Options) {
		o.Min = min
		o.Max = max
	}
}

// WithDelisting lets prices fall to zero or below and disables bounding.
func WithDelisting(on bool) Option {
	return func(o *Options) { o.Delisting = on }
}

// WithStep rounds every price to the nearest multiple of step.
func WithStep(step float64) Option {
	return func(o *Options) { o.Step = step }
}

// WithDataType selects Float (two decimals) or Int output.
func WithDataType(dt DataType) Option {
	return func(o *Options) { o.DataType = dt }
}

// WithAlgorithm selects the price model.
func WithAlgorithm(a Algorithm) Option {
	return func(o *Options) { o.Algorithm = a }
}

// WithInterval sets the live tick interval.
func WithInterval(d time.Duration) Option {
	return func(o *Options) { o.Interval = d }
}

func OnStart(fn func()) Option {
	return func(o *Options) { o.OnStart = fn }
}

func OnPrice(fn func(price, previous float64)) Option {
	return func(o *Options) { o.OnPrice = fn }
}

func OnStop(fn func()) Option {
	return func(o *Options) { o.OnStop = fn }
}

func OnComplete(fn func()) Option {
	return func(o *Options) { o.OnComplete = fn }
}

func OnError(fn func(err error)) Option {
	return func(o *Options) { o.OnError = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(o *Options) { o.Recorder = r }
}

// WithScheduler replaces the wall-clock ticker, typically with a virtual clock.
func WithScheduler(s Scheduler) Option {
	return func(o *Options) { o.Scheduler = s }
}

// WithEntropy replaces the ambient random source.
func WithEntropy(e Entropy) Option {
	return func(o *Options) { o.Entropy = e }
}

func build(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	dt, err := postprocess.ParseDataType(string(o.DataType))
	if err != nil {
		return Options{}, err
	}
	o.DataType = dt
	return o, nil
}

func (o Options) params() engine.Params {
	return engine.Params{
		Volatility: o.Volatility,
		Drift:      o.Drift,
		Algorithm:  o.Algorithm,
		Seed:       o.Seed,
		Post: postprocess.Config{
			Min:       o.Min,
			Max:       o.Max,
			Delisting: o.Delisting,
			Step:      o.Step,
			DataType:  o.DataType,
		},
	}
}
