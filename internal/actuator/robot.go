package actuator

import (
	"fmt"
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/mudra/internal/gesture"
)

// Robot drives the real pointer and keyboard through robotgo.
type Robot struct {
	// robotgo's C backends are not reentrant on every platform.
	mu sync.Mutex
}

// NewRobot returns a robotgo-backed Actuator. It fails if no display is
// reachable, which is how missing permissions or headless sessions show up.
func NewRobot() (*Robot, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("no display available (screen size %dx%d)", w, h)
	}
	return &Robot{}, nil
}

// MoveBy moves the pointer relative to its current position.
func (r *Robot) MoveBy(dx, dy int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	robotgo.MoveRelative(dx, dy)
	return nil
}

// MoveTo moves the pointer to an absolute position.
func (r *Robot) MoveTo(x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	robotgo.Move(x, y)
	return nil
}

// ButtonDown presses a mouse button.
func (r *Robot) ButtonDown(b gesture.Button) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := robotgo.Toggle(string(b), "down"); err != nil {
		return fmt.Errorf("press %s button: %w", b, err)
	}
	return nil
}

// ButtonUp releases a mouse button.
func (r *Robot) ButtonUp(b gesture.Button) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := robotgo.Toggle(string(b), "up"); err != nil {
		return fmt.Errorf("release %s button: %w", b, err)
	}
	return nil
}

// KeyDown presses a modifier key.
func (r *Robot) KeyDown(k gesture.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := robotgo.KeyToggle(string(k), "down"); err != nil {
		return fmt.Errorf("press %s: %w", k, err)
	}
	return nil
}

// KeyUp releases a modifier key.
func (r *Robot) KeyUp(k gesture.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := robotgo.KeyToggle(string(k), "up"); err != nil {
		return fmt.Errorf("release %s: %w", k, err)
	}
	return nil
}

// Scroll scrolls vertically by ticks.
func (r *Robot) Scroll(ticks int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	robotgo.Scroll(0, ticks)
	return nil
}

// ScreenSize returns the main display size.
func (r *Robot) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

// Location returns the pointer position.
func (r *Robot) Location() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return robotgo.Location()
}
