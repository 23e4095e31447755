package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/zappabad/pricegen"
	"github.com/zappabad/pricegen/internal/config"
	"github.com/zappabad/pricegen/internal/logger"
	"github.com/zappabad/pricegen/tui"
)

func main() {
	fs := pflag.NewFlagSet("pricegen-tui", pflag.ExitOnError)
	configPath := fs.String("config", "", "profile file (yaml, toml or json)")
	label := fs.String("label", "DEMO", "chart caption")
	perCandle := fs.Int("ticks-per-candle", 5, "ticks aggregated into one candle")
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	profile, err := config.Load(*configPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so records only go to LOG_FILE.
	logCfg, err := logger.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading logger config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Discard()
	if logCfg.File != "" {
		l, closeLog, err := logger.New(logCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
			os.Exit(1)
		}
		defer closeLog()
		log = l
	}

	feed := tui.NewFeed(1024)
	opts := append(profile.Options(), pricegen.WithLogger(log))
	opts = append(opts, feed.Options()...)

	live, err := pricegen.NewLive(profile.Start, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating generator: %v\n", err)
		os.Exit(1)
	}
	defer live.Stop()

	model := tui.NewModel(live, feed, *label, *perCandle)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
