package actuator

import (
	"fmt"
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// Recorder is a test Actuator that records every call as a string such as
// "ButtonDown(right)". Individual operations can be made to fail.
type Recorder struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]error
	width   int
	height  int
	pointer [2]int
}

// NewRecorder returns a Recorder reporting the given screen size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height, fail: make(map[string]error)}
}

// FailOn makes the named operation ("MoveBy", "ButtonDown", ...) return err.
func (r *Recorder) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[op] = err
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset clears recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) record(op string, format string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.fail[op]; ok {
		return err
	}
	r.calls = append(r.calls, op+"("+fmt.Sprintf(format, args...)+")")
	return nil
}

func (r *Recorder) MoveBy(dx, dy int) error {
	if err := r.record("MoveBy", "%d,%d", dx, dy); err != nil {
		return err
	}
	r.mu.Lock()
	r.pointer[0] += dx
	r.pointer[1] += dy
	r.mu.Unlock()
	return nil
}

func (r *Recorder) MoveTo(x, y int) error {
	if err := r.record("MoveTo", "%d,%d", x, y); err != nil {
		return err
	}
	r.mu.Lock()
	r.pointer = [2]int{x, y}
	r.mu.Unlock()
	return nil
}

func (r *Recorder) ButtonDown(b gesture.Button) error { return r.record("ButtonDown", "%s", b) }
func (r *Recorder) ButtonUp(b gesture.Button) error   { return r.record("ButtonUp", "%s", b) }
func (r *Recorder) KeyDown(k gesture.Key) error       { return r.record("KeyDown", "%s", k) }
func (r *Recorder) KeyUp(k gesture.Key) error         { return r.record("KeyUp", "%s", k) }
func (r *Recorder) Scroll(ticks int) error            { return r.record("Scroll", "%d", ticks) }

func (r *Recorder) ScreenSize() (int, int) {
	return r.width, r.height
}

func (r *Recorder) Location() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pointer[0], r.pointer[1]
}
