// Package dispatch applies gesture intents to the OS through an Actuator.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/gesture"
)

// ErrActuator wraps every failure reported by the actuator.
var ErrActuator = errors.New("actuator error")

// Dispatcher translates intents into actuator calls. It keeps no
// interaction state; ordering is whatever the caller passes in.
type Dispatcher struct {
	act       actuator.Actuator
	publisher events.Publisher
	log       *slog.Logger

	enabled atomic.Bool
	applied atomic.Int64
	failed  atomic.Int64
}

// New creates an enabled Dispatcher. publisher may be nil.
func New(act actuator.Actuator, publisher events.Publisher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{act: act, publisher: publisher, log: logger}
	d.enabled.Store(true)
	return d
}

// SetEnabled pauses or resumes dispatching. While paused, Dispatch drops
// every intent except button and modifier releases, so pausing mid-drag
// cannot leave input held down.
func (d *Dispatcher) SetEnabled(on bool) {
	if d.enabled.Swap(on) != on {
		d.log.Info("dispatch toggled", "enabled", on)
	}
}

// Enabled reports whether intents reach the actuator.
func (d *Dispatcher) Enabled() bool {
	return d.enabled.Load()
}

// Dispatch applies intents in order. A failing intent does not stop the
// rest of the frame; all failures come back joined and wrapped in
// ErrActuator. Nothing is retried.
func (d *Dispatcher) Dispatch(ctx context.Context, intents []gesture.Intent) error {
	if len(intents) == 0 {
		return nil
	}
	enabled := d.enabled.Load()

	var errs []error
	for _, in := range intents {
		if !enabled && !isRelease(in) {
			continue
		}
		err := d.apply(in)
		if err != nil {
			d.failed.Add(1)
			d.log.WarnContext(ctx, "intent failed", "intent", in.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", in, err))
		} else {
			d.applied.Add(1)
			d.log.DebugContext(ctx, "intent applied", "intent", in.String())
		}
		if d.publisher != nil {
			d.publisher.Publish(events.IntentEvent(in, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrActuator, errors.Join(errs...))
	}
	return nil
}

func (d *Dispatcher) apply(in gesture.Intent) error {
	switch v := in.(type) {
	case gesture.MoveBy:
		return d.act.MoveBy(v.DX, v.DY)
	case gesture.MoveTo:
		return d.act.MoveTo(v.X, v.Y)
	case gesture.ButtonDown:
		return d.act.ButtonDown(v.Button)
	case gesture.ButtonUp:
		return d.act.ButtonUp(v.Button)
	case gesture.ModifierDown:
		return d.act.KeyDown(v.Key)
	case gesture.ModifierUp:
		return d.act.KeyUp(v.Key)
	case gesture.ScrollBy:
		return d.act.Scroll(v.Ticks)
	default:
		return fmt.Errorf("unsupported intent %T", in)
	}
}

func isRelease(in gesture.Intent) bool {
	switch in.(type) {
	case gesture.ButtonUp, gesture.ModifierUp:
		return true
	}
	return false
}

// Stats returns how many intents were applied and how many failed.
func (d *Dispatcher) Stats() (applied, failed int64) {
	return d.applied.Load(), d.failed.Load()
}
