// Package metrics exposes generator activity as Prometheus collectors.
// Only counts and states are published, never prices.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var statuses = []string{"idle", "running", "paused", "stopped"}

// Collector records batch paths and live ticks. It satisfies both the engine
// and the stream recorder interfaces.
type Collector struct {
	Ticks      prometheus.Counter
	TickErrors prometheus.Counter
	Paths      *prometheus.CounterVec
	PathSteps  prometheus.Counter
	Status     *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	c := &Collector{
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "pricegen_ticks_total",
			Help: "Total number of live ticks that produced a price",
		}),
		TickErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "pricegen_tick_errors_total",
			Help: "Total number of live ticks that failed",
		}),
		Paths: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pricegen_paths_total",
			Help: "Total number of batch paths by result",
		}, []string{"result"}),
		PathSteps: f.NewCounter(prometheus.CounterOpts{
			Name: "pricegen_path_steps_total",
			Help: "Total number of prices emitted in successful batch paths",
		}),
		Status: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pricegen_generator_status",
			Help: "Most recent live generator status, one-hot by label",
		}, []string{"status"}),
	}
	for _, s := range statuses {
		c.Status.WithLabelValues(s)
	}
	return c
}

// ObservePath records a finished batch path.
func (c *Collector) ObservePath(steps int, err error) {
	if err != nil {
		c.Paths.WithLabelValues("error").Inc()
		return
	}
	c.Paths.WithLabelValues("ok").Inc()
	c.PathSteps.Add(float64(steps))
}

// ObserveTick records one live tick.
func (c *Collector) ObserveTick(err error) {
	if err != nil {
		c.TickErrors.Inc()
		return
	}
	c.Ticks.Inc()
}

// ObserveStatus marks status as the current one.
func (c *Collector) ObserveStatus(status string) {
	for _, s := range statuses {
		v := 0.0
		if s == status {
			v = 1
		}
		c.Status.WithLabelValues(s).Set(v)
	}
}
