package app

import "sync"

// latest is a single-slot mailbox. A put replaces any value not yet taken,
// so the consumer always sees the freshest frame and never a backlog.
type latest[T any] struct {
	mu    sync.Mutex
	value T
	full  bool
	ready chan struct{}
}

func newLatest[T any]() *latest[T] {
	return &latest[T]{ready: make(chan struct{}, 1)}
}

// put stores v and reports whether an untaken value was overwritten.
func (l *latest[T]) put(v T) (replaced bool) {
	l.mu.Lock()
	replaced = l.full
	l.value = v
	l.full = true
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
	return replaced
}

// take empties the slot.
func (l *latest[T]) take() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.value, l.full
	var zero T
	l.value = zero
	l.full = false
	return v, ok
}

// wait fires after a put. A signal may be stale; take reports whether the
// slot actually holds a value.
func (l *latest[T]) wait() <-chan struct{} {
	return l.ready
}
