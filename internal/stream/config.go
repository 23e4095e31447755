package stream

import (
	"log/slog"
	"time"

	"github.com/zappabad/pricegen/internal/random"
)

// Config holds configuration for a live generator.
type Config struct {
	// Interval is the time between ticks.
	Interval time.Duration
	// TapeSize is the number of recent prices kept for History.
	TapeSize int
	// Scheduler arms the recurring tick. Defaults to TickerScheduler.
	Scheduler Scheduler
	// Logger receives lifecycle and tick-failure records.
	Logger *slog.Logger
	// Recorder observes ticks and status changes.
	Recorder Recorder
	// Entropy feeds unseeded draws and bound corrections.
	Entropy random.Entropy
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Interval:  60 * time.Second,
		TapeSize:  256,
		Scheduler: TickerScheduler{},
		Logger:    slog.New(slog.DiscardHandler),
		Recorder:  nopRecorder{},
		Entropy:   random.Ambient,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.TapeSize <= 0 {
		c.TapeSize = d.TapeSize
	}
	if c.Scheduler == nil {
		c.Scheduler = d.Scheduler
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	if c.Recorder == nil {
		c.Recorder = d.Recorder
	}
	if c.Entropy == nil {
		c.Entropy = d.Entropy
	}
	return c
}

// Recorder observes a live generator.
type Recorder interface {
	ObserveTick(err error)
	ObserveStatus(status string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTick(error)    {}
func (nopRecorder) ObserveStatus(string) {}
