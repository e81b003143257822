package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/gesture"
)

// ErrAlreadyRunning is returned by a second concurrent Run.
var ErrAlreadyRunning = errors.New("frame loop already running")

// Run drives the loop until ctx is cancelled or acquisition fails fatally.
//
// Acquisition runs in its own goroutine and hands observations over a
// single-slot mailbox, so a slow frame is replaced rather than queued.
// The calling goroutine owns the gesture machine: it gates, analyzes,
// observes and dispatches each frame in order. Cancellation is checked
// between frames; on the way out any held button and modifier are
// released. A cancelled run returns nil; a fatal failure returns an
// *AcquisitionError.
func (a *App) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	a.log.Info("frame loop started",
		"min_confidence", a.opts.MinConfidence,
		"skip_failed_frames", a.opts.SkipFailedFrames,
		"max_consecutive_failures", a.opts.MaxConsecutiveFailures)

	acqCtx, stopAcquire := context.WithCancel(ctx)
	mailbox := newLatest[*gesture.Observation]()
	fatal := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := a.acquireLoop(acqCtx, mailbox); err != nil {
			fatal <- err
		}
	}()

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-fatal:
			// A frame acquired just before the failure still counts.
			if obs, ok := mailbox.take(); ok {
				a.Process(ctx, obs)
			}
			runErr = err
			break loop
		case <-mailbox.wait():
			obs, ok := mailbox.take()
			if !ok {
				continue
			}
			a.Process(ctx, obs)
		}
	}

	stopAcquire()
	<-done

	a.release(context.WithoutCancel(ctx))

	if runErr != nil {
		a.log.Error("frame loop stopped", "error", runErr)
		return runErr
	}
	a.log.Info("frame loop stopped", "frames", a.stats.frames.Load(), "intents", a.stats.intents.Load())
	return nil
}

// acquireLoop feeds the mailbox until ctx ends or a fatal error occurs.
func (a *App) acquireLoop(ctx context.Context, mailbox *latest[*gesture.Observation]) error {
	consecutive := 0

	for ctx.Err() == nil {
		obs, err := a.acquire(ctx)
		switch {
		case err == nil:
			consecutive = 0
			if mailbox.put(obs) {
				a.stats.replaced.Add(1)
			}

		case errors.Is(err, ErrNoHand):
			consecutive = 0
			a.stats.noHand.Add(1)

		case ctx.Err() != nil:
			return nil

		case recoverable(err) && a.opts.SkipFailedFrames:
			consecutive++
			a.stats.skipped.Add(1)
			if limit := a.opts.MaxConsecutiveFailures; limit > 0 && consecutive >= limit {
				return &AcquisitionError{Err: fmt.Errorf("%d consecutive failures, last: %w", consecutive, err)}
			}
			a.log.Warn("skipping frame", "error", err, "consecutive", consecutive)

		default:
			var acq *AcquisitionError
			if errors.As(err, &acq) {
				return &AcquisitionError{Err: acq.Err}
			}
			return &AcquisitionError{Err: err}
		}
	}
	return nil
}

// acquire calls the source, bounded by AcquireTimeout when set. An
// abandoned acquisition finishes in the background and its result is
// discarded.
func (a *App) acquire(ctx context.Context) (*gesture.Observation, error) {
	if a.opts.AcquireTimeout <= 0 {
		return a.source.Acquire(ctx)
	}

	tctx, cancel := context.WithTimeout(ctx, a.opts.AcquireTimeout)
	defer cancel()

	type result struct {
		obs *gesture.Observation
		err error
	}
	ch := make(chan result, 1)
	go func() {
		obs, err := a.source.Acquire(tctx)
		ch <- result{obs, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return nil, &AcquisitionError{Recoverable: true, Err: ErrAcquireTimeout}
		}
		return r.obs, r.err
	case <-tctx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &AcquisitionError{Recoverable: true, Err: ErrAcquireTimeout}
	}
}

// Process runs one observation through the dispatch stage and returns the
// intents it produced. It must only be called from the goroutine that
// owns the machine: Run's, or a test's.
func (a *App) Process(ctx context.Context, obs *gesture.Observation) []gesture.Intent {
	a.stats.frames.Add(1)

	if obs.Confidence <= a.opts.MinConfidence {
		a.stats.gated.Add(1)
		a.log.Debug("frame below confidence gate", "label", obs.Label, "confidence", obs.Confidence)
		return nil
	}

	sig := a.analyzer.Analyze(*obs)
	before := a.machine.State()
	intents := a.machine.Observe(obs.Label, sig)
	after := a.machine.State()

	if before != after {
		a.log.Info("state changed", "from", before, "to", after, "label", obs.Label)
	}
	a.log.Debug("frame processed", "label", obs.Label, "pinch", sig.Pinch, "spread", sig.Spread, "intents", len(intents))

	a.dispatch(ctx, intents)

	if a.publisher != nil {
		a.publisher.Publish(events.SnapshotEvent(a.machine.Snapshot()))
	}
	return intents
}

// release lets go of anything the machine still holds.
func (a *App) release(ctx context.Context) {
	intents := a.machine.Release()
	if len(intents) == 0 {
		return
	}
	a.log.Info("releasing held input", "intents", len(intents))
	a.dispatch(ctx, intents)
	if a.publisher != nil {
		a.publisher.Publish(events.SnapshotEvent(a.machine.Snapshot()))
	}
}

func (a *App) dispatch(ctx context.Context, intents []gesture.Intent) {
	if len(intents) == 0 {
		return
	}
	a.stats.intents.Add(int64(len(intents)))
	if err := a.dispatcher.Dispatch(ctx, intents); err != nil {
		a.stats.failures.Add(1)
		a.log.Warn("dispatch reported failures", "error", err)
	}
}
