// Package stream runs a price simulation on a timer: one engine step per tick,
// controlled through Start, Pause, Continue and Stop.
package stream

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/zappabad/pricegen/internal/engine"
)

var ErrStopped = errors.New("generator stopped")

// Status is the lifecycle state of a Generator.
type Status uint8

const (
	Idle Status = iota
	Running
	Paused
	Stopped
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Callbacks receive generator output. Any of them may be nil.
type Callbacks struct {
	OnStart    func()
	OnPrice    func(price, previous float64)
	OnStop     func()
	OnComplete func()
	OnError    func(err error)
}

// Generator is a live price stream over one session.
//
// Price and error callbacks run on the scheduler's goroutine, one at a time and
// outside the state lock, so they may call Pause, Continue or Stop. A Stop that
// lands while a tick is delivering leaves OnStop and OnComplete to that tick's
// goroutine, so they always follow the last OnPrice.
type Generator struct {
	id       string
	cfg      Config
	cb       Callbacks
	logger   *slog.Logger
	tape     *Tape
	tickMu   sync.Mutex
	mu       sync.Mutex
	params   engine.Params
	current  float64
	previous float64
	hasPrev  bool
	status   Status
	cancel   func()
	// epoch invalidates ticks from canceled registrations.
	epoch uint64
	// inTick is set while a tick delivers its callbacks. A Stop landing in
	// that window leaves OnStop and OnComplete to the tick.
	inTick      bool
	stopPending bool
}

// New creates an idle Generator starting at start.
func New(start float64, p engine.Params, cb Callbacks, cfg Config) *Generator {
	cfg = cfg.withDefaults()
	id := uuid.NewString()

	g := &Generator{
		id:      id,
		cfg:     cfg,
		cb:      cb,
		logger:  cfg.Logger.With("component", "stream", "session_id", id),
		tape:    NewTape(cfg.TapeSize),
		params:  p,
		current: start,
		status:  Idle,
	}
	g.tape.Append(start)
	cfg.Recorder.ObserveStatus(Idle.String())
	return g
}

// ID returns the session id.
func (g *Generator) ID() string { return g.id }

// Start invokes OnStart and begins ticking. It is a no-op while running and
// fails with ErrStopped after Stop. From Paused it re-arms the timer and
// invokes OnStart again.
func (g *Generator) Start() error {
	g.mu.Lock()
	switch g.status {
	case Stopped:
		g.mu.Unlock()
		return ErrStopped
	case Running:
		g.mu.Unlock()
		return nil
	}
	from := g.setStatus(Running)
	epoch := g.epoch
	g.mu.Unlock()

	g.logger.Info("generator started", "from", from.String(), "interval", g.cfg.Interval)
	if g.cb.OnStart != nil {
		g.cb.OnStart()
	}

	// OnStart may have paused or stopped the session.
	g.mu.Lock()
	if g.status == Running && g.epoch == epoch {
		g.arm(epoch)
	}
	g.mu.Unlock()
	return nil
}

// Pause cancels ticking and keeps the current price. No callback fires.
func (g *Generator) Pause() {
	g.mu.Lock()
	if g.status != Running {
		g.mu.Unlock()
		return
	}
	g.setStatus(Paused)
	cancel := g.disarm()
	g.mu.Unlock()

	cancel()
	g.logger.Info("generator paused", "price", g.CurrentPrice())
}

// Continue resumes ticking without invoking OnStart. It is a no-op while
// running and fails with ErrStopped after Stop.
func (g *Generator) Continue() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.status {
	case Stopped:
		return ErrStopped
	case Running:
		return nil
	}
	from := g.setStatus(Running)
	g.arm(g.epoch)
	g.logger.Info("generator continued", "from", from.String())
	return nil
}

// Stop cancels ticking, invokes OnStop then OnComplete, and ends the session.
// Stopping twice is a no-op. When a tick is delivering OnPrice or OnError,
// Stop returns at once and the tick's goroutine fires OnStop and OnComplete
// after that callback returns, so callbacks never overlap or reorder.
func (g *Generator) Stop() {
	g.mu.Lock()
	if g.status == Stopped {
		g.mu.Unlock()
		return
	}
	from := g.setStatus(Stopped)
	cancel := g.disarm()
	price := g.current
	deferred := g.inTick
	if deferred {
		g.stopPending = true
	}
	g.mu.Unlock()

	cancel()
	g.logger.Info("generator stopped", "from", from.String(), "price", price)
	if !deferred {
		g.complete()
	}
}

func (g *Generator) complete() {
	if g.cb.OnStop != nil {
		g.cb.OnStop()
	}
	if g.cb.OnComplete != nil {
		g.cb.OnComplete()
	}
}

// CurrentPrice returns the latest price (the start price before any tick).
func (g *Generator) CurrentPrice() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// PreviousPrice returns the price before the latest tick. ok is false until
// the first successful tick.
func (g *Generator) PreviousPrice() (price float64, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.previous, g.hasPrev
}

// Status returns the lifecycle state.
func (g *Generator) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Params returns the step parameters used by the next tick.
func (g *Generator) Params() engine.Params {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.params
}

// Reconfigure replaces the step parameters for subsequent ticks.
func (g *Generator) Reconfigure(p engine.Params) {
	g.mu.Lock()
	g.params = p
	g.mu.Unlock()
	g.logger.Info("generator reconfigured",
		"algorithm", string(p.Algorithm),
		"volatility", p.Volatility,
		"drift", p.Drift,
	)
}

// History returns up to n recent prices, oldest first. The start price is the
// first entry until the tape wraps.
func (g *Generator) History(n int) []float64 {
	return g.tape.Latest(n)
}

// setStatus must be called with mu held. Every transition bumps the epoch.
func (g *Generator) setStatus(s Status) Status {
	from := g.status
	g.status = s
	g.epoch++
	g.cfg.Recorder.ObserveStatus(s.String())
	return from
}

// arm must be called with mu held.
func (g *Generator) arm(epoch uint64) {
	g.cancel = g.cfg.Scheduler.Every(g.cfg.Interval, func() { g.tick(epoch) })
}

// disarm must be called with mu held. The returned func is safe to call after
// unlocking.
func (g *Generator) disarm() func() {
	cancel := g.cancel
	g.cancel = nil
	if cancel == nil {
		return func() {}
	}
	return cancel
}

func (g *Generator) tick(epoch uint64) {
	g.tickMu.Lock()
	defer g.tickMu.Unlock()

	g.mu.Lock()
	if g.status != Running || g.epoch != epoch {
		g.mu.Unlock()
		return
	}
	next, err := engine.Step(g.current, g.params, g.cfg.Entropy)
	previous := g.current
	if err == nil {
		g.previous, g.hasPrev = previous, true
		g.current = next
		g.tape.Append(next)
	}
	g.inTick = true
	g.mu.Unlock()

	g.cfg.Recorder.ObserveTick(err)
	if err != nil {
		g.logger.Warn("tick failed", "error", err)
		if g.cb.OnError != nil {
			g.cb.OnError(err)
		}
	} else if g.cb.OnPrice != nil {
		g.cb.OnPrice(next, previous)
	}

	g.mu.Lock()
	g.inTick = false
	stopped := g.stopPending
	g.stopPending = false
	g.mu.Unlock()

	if stopped {
		g.complete()
	}
}
