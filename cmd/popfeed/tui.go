package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/popfeed/internal/adapter/input"
	"github.com/jmylchreest/popfeed/internal/audio"
	"github.com/jmylchreest/popfeed/internal/config"
	"github.com/jmylchreest/popfeed/internal/dbus"
	"github.com/jmylchreest/popfeed/internal/producer"
	"github.com/jmylchreest/popfeed/internal/store"
	"github.com/jmylchreest/popfeed/internal/tui"
)

var tuiOpts struct {
	noProducer bool
	noDBus     bool
	seed       string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive feed",
	Long: `Launch the terminal feed.

New items arrive at the bottom. Scroll up to read older items; the view
stays where you left it while items keep arriving. Scroll to the end to
follow new items again.

Key bindings:
  j/k, ↑/↓    Scroll
  pgup/pgdn   Scroll a page
  g/G         Oldest / newest
  a, enter    Add an item
  c           Copy newest visible item
  C           Copy all items as YAML
  p           Pause or resume the producer
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&tuiOpts.noProducer, "no-producer", false,
		"Do not start the background producer")
	tuiCmd.Flags().BoolVar(&tuiOpts.noDBus, "no-dbus", false,
		"Do not export the D-Bus service")
	tuiCmd.Flags().StringVar(&tuiOpts.seed, "seed", "",
		"Append items from a file (or - for stdin) before starting")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("the feed needs a terminal; use 'popfeed dump' for headless output")
	}

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	coll := store.NewCollection()
	defer func() { _ = coll.Close() }()
	logger.Debug("session started", "session", coll.SessionID())

	if err := seed(ctx, coll, tuiOpts.seed); err != nil {
		return err
	}

	loop := newProducer(coll, cfg)

	if cfg.DBus.Enabled && !tuiOpts.noDBus {
		server := dbus.NewFeedServer(coll, logger)
		server.SetTriggerHandler(loop.Trigger)
		if err := server.Start(); err != nil {
			logger.Warn("D-Bus service unavailable", "error", err)
		} else {
			defer func() { _ = server.Stop() }()
		}
	}

	chime := audio.NewChime(cfg.Audio, logger)
	chime.Attach(coll)
	defer chime.Stop()

	var runLoop *producer.Loop
	if cfg.Producer.Enabled && !tuiOpts.noProducer {
		runLoop = loop
	}

	return tui.Run(ctx, tui.RunOptions{
		Config:     cfg,
		ConfigPath: configPath(),
		Collection: coll,
		Producer:   runLoop,
		Logger:     logger,
		InputTTY:   isStdin(tuiOpts.seed),
		OnReload: func(c *config.Config) {
			chime.ApplyConfig(c.Audio)
		},
	})
}

// newProducer builds the background producer from the [producer] section.
func newProducer(coll *store.Collection, c *config.Config) *producer.Loop {
	return producer.New(coll, producer.Options{
		Latency:  c.Producer.Latency.Duration(),
		Interval: c.Producer.Interval.Duration(),
		Logger:   logger,
	})
}

// seed appends the items read from source, if any.
func seed(ctx context.Context, coll *store.Collection, source string) error {
	if source == "" {
		return nil
	}
	n, err := input.Seed(ctx, source, coll)
	if err != nil {
		return fmt.Errorf("failed to seed feed: %w", err)
	}
	logger.Debug("seeded feed", "source", source, "items", n)
	return nil
}

func isStdin(source string) bool {
	return source == "-" || source == "stdin"
}

// withSignals returns a context cancelled on SIGINT or SIGTERM.
func withSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
