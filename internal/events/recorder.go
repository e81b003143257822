package events

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// EventAppender stores event log entries. *store.EventRepository
// implements it.
type EventAppender interface {
	Append(e *store.Event) error
}

// Recorder writes hub events to the session's event log. Intents and
// failures are recorded as they come; snapshots only when the state
// changes, so an idle hand does not fill the database.
type Recorder struct {
	sink      EventAppender
	sessionID string
	log       *slog.Logger

	written atomic.Int64
	failed  atomic.Int64
}

// NewRecorder creates a Recorder for one session.
func NewRecorder(sink EventAppender, sessionID string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{sink: sink, sessionID: sessionID, log: logger}
}

// Run records events from ch until ch is closed or ctx is done. On
// cancellation it still stores whatever is already buffered, so the
// release intents sent at shutdown make it into the log.
func (r *Recorder) Run(ctx context.Context, ch <-chan Event) {
	var last *gesture.State

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case e, ok := <-ch:
					if !ok {
						return
					}
					r.record(e, &last)
				default:
					return
				}
			}
		case e, ok := <-ch:
			if !ok {
				return
			}
			r.record(e, &last)
		}
	}
}

func (r *Recorder) record(e Event, last **gesture.State) {
	rec := &store.Event{
		SessionID: r.sessionID,
		Type:      string(e.Type),
		Kind:      e.Kind,
		Detail:    e.Detail,
		CreatedAt: e.Time,
	}
	if e.Type == TypeError {
		rec.Detail = e.Detail + ": " + e.Error
	}
	if e.Snapshot != nil {
		state := e.Snapshot.State
		if *last != nil && **last == state {
			return
		}
		*last = &state
		rec.State = state.String()
	}

	if err := r.sink.Append(rec); err != nil {
		if r.failed.Add(1) == 1 {
			r.log.Warn("failed to record event", "error", err)
		}
		return
	}
	r.written.Add(1)
}

// Written returns how many events were stored.
func (r *Recorder) Written() int64 {
	return r.written.Load()
}

// Failed returns how many events could not be stored.
func (r *Recorder) Failed() int64 {
	return r.failed.Load()
}
