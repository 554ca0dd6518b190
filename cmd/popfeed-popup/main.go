// Package main is the entry point for the popfeed GTK popup.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/jmylchreest/popfeed/internal/adapter/input"
	"github.com/jmylchreest/popfeed/internal/audio"
	"github.com/jmylchreest/popfeed/internal/config"
	"github.com/jmylchreest/popfeed/internal/dbus"
	"github.com/jmylchreest/popfeed/internal/display"
	"github.com/jmylchreest/popfeed/internal/notice"
	"github.com/jmylchreest/popfeed/internal/producer"
	"github.com/jmylchreest/popfeed/internal/store"
	"github.com/jmylchreest/popfeed/internal/theme"
)

const (
	appID   = "io.github.jmylchreest.popfeed"
	appName = "popfeed-popup"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/popfeed/config.toml)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	noProducer := flag.Bool("no-producer", false, "Do not start the background producer")
	seed := flag.String("seed", "", "Append items from a file (or - for stdin) before showing the window")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		println(appName, "version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}

	os.Exit(run(path, *seed, !*noProducer, logger))
}

func run(configPath, seed string, withProducer bool, logger *slog.Logger) int {
	logger.Info("starting popfeed popup", "version", version)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	app := adw.NewApplication(appID, 0)

	coll := store.NewCollection()
	if seed != "" {
		n, err := input.Seed(context.Background(), seed, coll)
		if err != nil {
			logger.Error("failed to seed feed", "source", seed, "error", err)
			return 1
		}
		logger.Info("seeded feed", "source", seed, "items", n)
	}

	loop := producer.New(coll, producer.Options{
		Latency:  cfg.Producer.Latency.Duration(),
		Interval: cfg.Producer.Interval.Duration(),
		Logger:   logger,
	})

	// Shared state between GTK main loop and signal handlers
	var (
		window        *display.FeedWindow
		themeLoader   *theme.Loader
		chime         *audio.Chime
		feedServer    *dbus.FeedServer
		configWatcher *config.Watcher
		running       atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := notice.NewNotifier(nil, logger)
	if sender, err := notice.NewDesktopSender(); err != nil {
		logger.Warn("desktop notices unavailable", "error", err)
	} else {
		notifier = notice.NewNotifier(sender, logger)
	}

	shutdown := func() {
		if !running.Swap(false) {
			return
		}
		loop.Stop()
		if configWatcher != nil {
			_ = configWatcher.Stop()
		}
		if chime != nil {
			chime.Stop()
		}
		if themeLoader != nil {
			themeLoader.Close()
		}
		if feedServer != nil {
			_ = feedServer.Stop()
		}
		if window != nil {
			window.Close()
		}
		_ = coll.Close()
		app.Quit()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			glib.IdleAdd(shutdown)
		case <-ctx.Done():
		}
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			window.Present()
			return
		}
		running.Store(true)

		display.ApplyColorScheme(config.ColorScheme(cfg.Window.ColorScheme))

		themeLoader = theme.NewLoader(logger)
		themeLoader.LoadTheme(display.ThemeFor(cfg.Window.Theme, display.SystemIsDark()))
		themeLoader.Apply(nil)
		themeLoader.SetReloadCallback(func(t *theme.Theme) {
			notifier.ThemeReloaded(t.Name)
		})

		chime = audio.NewChime(cfg.Audio, logger)
		chime.Attach(coll)

		window = display.NewFeedWindow(&app.Application, coll, cfg, logger)
		window.SetProducer(loop)
		window.ConnectClosed(func() {
			cancel()
			glib.IdleAdd(shutdown)
		})
		window.Attach()

		if cfg.DBus.Enabled {
			feedServer = dbus.NewFeedServer(coll, logger)
			feedServer.SetTriggerHandler(loop.Trigger)
			if err := feedServer.Start(); err != nil {
				logger.Warn("D-Bus service unavailable", "error", err)
				feedServer = nil
			}
		}

		configWatcher = watchConfig(configPath, logger, func(c *config.Config) {
			chime.ApplyConfig(c.Audio)
			window.ApplyConfig(c)
			themeLoader.LoadTheme(display.ThemeFor(c.Window.Theme, display.SystemIsDark()))
			notifier.ConfigReloaded()
		}, notifier.ConfigError)

		if cfg.Producer.Enabled && withProducer {
			loop.Start(ctx)
			go watchProducer(ctx, loop, notifier)
		}

		window.Present()
		logger.Info("popfeed popup ready", "session", coll.SessionID())
	})

	// Our flags were parsed already; GApplication sees only the program name.
	if code := app.Run([]string{os.Args[0]}); code != 0 {
		return code
	}
	logger.Info("popfeed popup stopped", "items", coll.Len())
	return 0
}

// watchConfig hot-reloads the config file. Reloads are applied on the GTK
// main loop.
func watchConfig(path string, logger *slog.Logger, apply func(*config.Config), onError func(error)) *config.Watcher {
	w, err := config.NewWatcher(path, logger)
	if err != nil {
		logger.Warn("failed to create config watcher", "error", err)
		return nil
	}
	w.SetReloadCallback(func(c *config.Config) {
		glib.IdleAdd(func() { apply(c) })
	})
	w.SetErrorCallback(func(err error) {
		glib.IdleAdd(func() { onError(err) })
	})
	if err := w.Start(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
		return nil
	}
	return w
}

// watchProducer reports a producer that stopped on a failed append.
func watchProducer(ctx context.Context, loop *producer.Loop, notifier *notice.Notifier) {
	select {
	case <-ctx.Done():
	case <-loop.Done():
		if err := loop.Err(); err != nil {
			notifier.ProducerStopped(err)
		}
	}
}
