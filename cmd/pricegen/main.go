package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/zappabad/pricegen"
	"github.com/zappabad/pricegen/internal/config"
	"github.com/zappabad/pricegen/internal/logger"
	"github.com/zappabad/pricegen/internal/metrics"
)

const usage = `usage: pricegen <command> [flags]

commands:
  batch   generate a finite path (or --paths n) and print it
  live    stream prices until --ticks n or interrupted (--metrics-addr serves /metrics)
`

// liveScheduler overrides the live generator's ticker when set. Tests swap in
// a virtual clock.
var liveScheduler pricegen.Scheduler

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "batch":
		err = runBatch(ctx, os.Args[2:], os.Stdout)
	case "live":
		err = runLive(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pricegen: %v\n", err)
		os.Exit(1)
	}
}

// setup parses flags, loads the profile and builds the logger and metrics.
type setup struct {
	profile     config.Profile
	log         *slog.Logger
	closeLog    func() error
	registry    *prometheus.Registry
	collector   *metrics.Collector
	metricsAddr string
}

// newSetup registers --metrics-addr only when serveMetrics is set. A batch run
// exits as soon as it has written its output, too soon for a scrape.
func newSetup(name string, args []string, serveMetrics bool) (*setup, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	configPath := fs.String("config", "", "profile file (yaml, toml or json)")
	var metricsAddr string
	if serveMetrics {
		fs.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	}
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	profile, err := config.Load(*configPath, fs)
	if err != nil {
		return nil, err
	}

	logCfg, err := logger.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logger.New(logCfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	return &setup{
		profile:     profile,
		log:         log.With("command", name),
		closeLog:    closeLog,
		registry:    reg,
		collector:   metrics.New(reg),
		metricsAddr: metricsAddr,
	}, nil
}

func (s *setup) options() []pricegen.Option {
	return append(s.profile.Options(),
		pricegen.WithLogger(s.log),
		pricegen.WithRecorder(s.collector),
	)
}

// serveMetrics starts the metrics endpoint when an address was given and
// returns its shutdown func.
func (s *setup) serveMetrics() func() {
	if s.metricsAddr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              s.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.log.Info("serving metrics", "addr", s.metricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func runBatch(ctx context.Context, args []string, out io.Writer) error {
	s, err := newSetup("batch", args, false)
	if err != nil {
		return err
	}
	defer s.closeLog()

	var results []pricegen.Result
	if s.profile.Paths == 1 {
		res, err := pricegen.Generate(s.profile.Start, s.options()...)
		if err != nil {
			return err
		}
		results = []pricegen.Result{res}
	} else {
		results, err = pricegen.GenerateEnsemble(ctx, s.profile.Start, s.profile.Paths, s.options()...)
		if err != nil {
			return err
		}
	}

	s.log.Info("batch generated", "paths", len(results), "length", s.profile.Length)
	return writeResults(out, s.profile.Format, results)
}

func runLive(ctx context.Context, args []string) error {
	s, err := newSetup("live", args, true)
	if err != nil {
		return err
	}
	defer s.closeLog()
	defer s.serveMetrics()()

	done := make(chan struct{})
	var ticks atomic.Int64
	var live *pricegen.Live

	opts := append(s.options(),
		pricegen.OnPrice(func(price, previous float64) {
			n := ticks.Add(1)
			s.log.Info("price", "tick", n, "price", price, "previous", previous)
			if limit := s.profile.Ticks; limit > 0 && n >= int64(limit) {
				live.Stop()
			}
		}),
		pricegen.OnError(func(err error) {
			s.log.Error("tick failed", "error", err)
		}),
		pricegen.OnComplete(func() { close(done) }),
	)
	if liveScheduler != nil {
		opts = append(opts, pricegen.WithScheduler(liveScheduler))
	}

	live, err = pricegen.NewLive(s.profile.Start, opts...)
	if err != nil {
		return err
	}
	if err := live.Start(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		s.log.Info("interrupted")
		live.Stop()
		<-done
	case <-done:
	}

	s.log.Info("live session finished", "session_id", live.ID(), "ticks", ticks.Load(), "price", live.CurrentPrice())
	return nil
}
