// Package producer simulates items arriving in the background: a cancellable
// loop that waits for a simulated latency, appends a synthetic item, and stops
// for good on the first failed append.
package producer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/popfeed/internal/model"
)

// DefaultLatency is the simulated per-item work time.
const DefaultLatency = 100 * time.Millisecond

// Appender is the mutation surface the loop needs. *store.Collection
// implements it.
type Appender interface {
	AppendFunc(build func(length int) model.Item) (model.Item, error)
}

// AddItem is the user "Add Item" action. It goes through the same append
// path as the loop.
func AddItem(target Appender) (model.Item, error) {
	return target.AppendFunc(model.Synthetic)
}

// Options configures a Loop.
type Options struct {
	Latency  time.Duration // simulated work before each append
	Interval time.Duration // extra pause after each append
	Logger   *slog.Logger

	// OnAppend is called after every successful append made by the loop.
	OnAppend func(model.Item)
}

// Loop appends synthetic items to a target until stopped or until an append
// fails.
type Loop struct {
	target   Appender
	latency  time.Duration
	interval time.Duration
	onAppend func(model.Item)
	logger   *slog.Logger

	trigger  chan struct{}
	appended atomic.Int64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// New creates a Loop. A zero Latency and Interval fall back to DefaultLatency.
func New(target Appender, opts Options) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	latency := opts.Latency
	if latency < 0 {
		latency = 0
	}
	interval := opts.Interval
	if interval < 0 {
		interval = 0
	}
	if latency+interval == 0 {
		latency = DefaultLatency
	}

	return &Loop{
		target:   target,
		latency:  latency,
		interval: interval,
		onAppend: opts.OnAppend,
		logger:   logger,
		trigger:  make(chan struct{}, 64),
	}
}

// Period returns the time between two timer-driven appends.
func (l *Loop) Period() time.Duration {
	return l.latency + l.interval
}

// Trigger requests one extra append outside the timer. It reports false if
// too many triggers are already pending.
func (l *Loop) Trigger() bool {
	select {
	case l.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Appended returns how many items the loop has appended.
func (l *Loop) Appended() int {
	return int(l.appended.Load())
}

// Run blocks until ctx is done (returning nil) or an append fails (returning
// that error). A failed append is logged and never retried.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("producer started", "latency", l.latency, "interval", l.interval)

	timer := time.NewTimer(l.latency)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("producer cancelled", "appended", l.Appended())
			return nil

		case <-l.trigger:
			if err := l.produce("trigger"); err != nil {
				return err
			}

		case <-timer.C:
			if err := l.produce("timer"); err != nil {
				return err
			}
			timer.Reset(l.Period())
		}
	}
}

func (l *Loop) produce(cause string) error {
	item, err := l.target.AppendFunc(model.Synthetic)
	if err != nil {
		l.logger.Error("producer stopped: append failed", "cause", cause, "error", err)
		return fmt.Errorf("append item: %w", err)
	}

	l.appended.Add(1)
	l.logger.Debug("item produced", "title", item.Title, "cause", cause)
	if l.onAppend != nil {
		l.onAppend(item)
	}
	return nil
}

// Start runs the loop in a goroutine. It is a no-op if already running.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return
	}
	l.running = true
	l.err = nil

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go func() {
		defer close(done)
		err := l.Run(ctx)

		l.mu.Lock()
		l.err = err
		l.running = false
		l.mu.Unlock()
		cancel()
	}()
}

// Stop cancels a started loop and waits for it to exit.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when a started loop exits. It is nil before Start.
func (l *Loop) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// Running reports whether a started loop is still producing.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Err returns the append error that terminated the last started loop.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
