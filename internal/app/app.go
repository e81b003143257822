// Package app runs mudra's frame loop. An acquisition stage turns camera
// frames into classified observations; a dispatch stage owns the gesture
// machine and applies the intents it produces.
package app

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/gesture"
)

// Options is the frame loop policy.
type Options struct {
	// MinConfidence is the classifier confidence a frame must exceed to
	// reach the machine.
	MinConfidence float64
	// SkipFailedFrames logs and skips recoverable acquisition failures.
	// When false the first one stops the loop.
	SkipFailedFrames bool
	// MaxConsecutiveFailures makes a run of recoverable failures fatal.
	// Zero means unlimited.
	MaxConsecutiveFailures int
	// AcquireTimeout bounds one acquisition. Zero disables the bound.
	AcquireTimeout time.Duration
}

// DefaultOptions returns the hardened defaults.
func DefaultOptions() Options {
	return Options{
		MinConfidence:          0.95,
		SkipFailedFrames:       true,
		MaxConsecutiveFailures: 30,
	}
}

// Stats counts what the loop has done.
type Stats struct {
	Frames   int64 `json:"frames"`    // observations that reached the dispatch stage
	Gated    int64 `json:"gated"`     // dropped by the confidence gate
	NoHand   int64 `json:"no_hand"`   // frames without a usable hand
	Skipped  int64 `json:"skipped"`   // recoverable acquisition failures
	Replaced int64 `json:"replaced"`  // frames overwritten before dispatch
	Intents  int64 `json:"intents"`   // intents handed to the dispatcher
	Failures int64 `json:"failures"`  // frames whose dispatch reported an error
}

type counters struct {
	frames, gated, noHand, skipped, replaced, intents, failures atomic.Int64
}

// App wires a FrameSource to the gesture machine and dispatcher.
type App struct {
	opts       Options
	source     FrameSource
	analyzer   gesture.Analyzer
	machine    *gesture.Machine
	dispatcher *dispatch.Dispatcher
	publisher  events.Publisher
	log        *slog.Logger

	stats   counters
	running atomic.Bool

	mu      sync.Mutex
	closers []func() error
	closed  bool
}

// New creates an App. publisher may be nil.
func New(opts Options, source FrameSource, machine *gesture.Machine, d *dispatch.Dispatcher, publisher events.Publisher, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		opts:       opts,
		source:     source,
		analyzer:   gesture.NewAnalyzer(),
		machine:    machine,
		dispatcher: d,
		publisher:  publisher,
		log:        logger,
	}
}

// Dispatcher returns the dispatcher, for the pause toggle.
func (a *App) Dispatcher() *dispatch.Dispatcher {
	return a.dispatcher
}

// Running reports whether Run is active.
func (a *App) Running() bool {
	return a.running.Load()
}

// Stats returns a copy of the loop counters.
func (a *App) Stats() Stats {
	return Stats{
		Frames:   a.stats.frames.Load(),
		Gated:    a.stats.gated.Load(),
		NoHand:   a.stats.noHand.Load(),
		Skipped:  a.stats.skipped.Load(),
		Replaced: a.stats.replaced.Load(),
		Intents:  a.stats.intents.Load(),
		Failures: a.stats.failures.Load(),
	}
}

// OnClose registers fn to run during Close, after the source is closed.
// Functions run in reverse registration order.
func (a *App) OnClose(fn func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

// Close releases the source and everything registered with OnClose.
// Call it after Run has returned.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	closers := a.closers
	a.mu.Unlock()

	var errs []error
	if a.source != nil {
		if err := a.source.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
