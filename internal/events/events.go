// Package events fans engine activity out to observers: websocket
// clients, the MQTT bridge and the sqlite recorder.
package events

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Type distinguishes event payloads.
type Type string

const (
	// TypeIntent is an intent that was applied to the actuator.
	TypeIntent Type = "intent"
	// TypeSnapshot is the machine state after a processed frame.
	TypeSnapshot Type = "snapshot"
	// TypeError is an intent the actuator refused.
	TypeError Type = "error"
)

// DefaultBuffer is the per-subscriber channel size.
const DefaultBuffer = 64

// Event is one published occurrence. Events are values; subscribers may
// keep them.
type Event struct {
	Type     Type              `json:"type"`
	Time     time.Time         `json:"time"`
	Kind     string            `json:"kind,omitempty"`
	Detail   string            `json:"detail,omitempty"`
	Error    string            `json:"error,omitempty"`
	Snapshot *gesture.Snapshot `json:"snapshot,omitempty"`
}

// IntentEvent describes an applied intent. A non-nil err marks it failed.
func IntentEvent(i gesture.Intent, err error) Event {
	e := Event{Type: TypeIntent, Time: time.Now(), Kind: gesture.Kind(i), Detail: i.String()}
	if err != nil {
		e.Type = TypeError
		e.Error = err.Error()
	}
	return e
}

// SnapshotEvent carries a copy of the machine state.
func SnapshotEvent(s gesture.Snapshot) Event {
	return Event{Type: TypeSnapshot, Time: time.Now(), Kind: s.State.String(), Snapshot: &s}
}

// Publisher accepts events. Publish must not block.
type Publisher interface {
	Publish(Event)
}

// Hub is a non-blocking fan-out. A subscriber whose buffer is full misses
// events; the publisher never waits.
type Hub struct {
	log    *slog.Logger
	buffer int

	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	closed bool

	latest   atomic.Pointer[gesture.Snapshot]
	dropped  atomic.Uint64
	received atomic.Uint64
}

// NewHub creates a Hub. A non-positive buffer selects DefaultBuffer.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log:    logger,
		buffer: buffer,
		subs:   make(map[int]chan Event),
	}
}

// Publish delivers e to every subscriber that has room for it.
func (h *Hub) Publish(e Event) {
	h.received.Add(1)
	if e.Type == TypeSnapshot && e.Snapshot != nil {
		s := *e.Snapshot
		h.latest.Store(&s)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			if h.dropped.Add(1)%100 == 1 {
				h.log.Debug("subscriber too slow, dropping events", "subscriber", id)
			}
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func removes
// it and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
		})
	}
}

// Latest returns the most recently published snapshot.
func (h *Hub) Latest() (gesture.Snapshot, bool) {
	s := h.latest.Load()
	if s == nil {
		return gesture.Snapshot{}, false
	}
	return *s, true
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stats returns how many events were published and how many deliveries
// were dropped.
func (h *Hub) Stats() (published, dropped uint64) {
	return h.received.Load(), h.dropped.Load()
}

// Close closes every subscriber channel. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
