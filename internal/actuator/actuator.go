// Package actuator injects pointer and keyboard events into the host OS.
package actuator

import "github.com/ayusman/mudra/internal/gesture"

// Actuator is the OS input facility. Every call is fire-and-forget: an
// error means the OS refused the event, and callers do not retry.
type Actuator interface {
	MoveBy(dx, dy int) error
	MoveTo(x, y int) error
	ButtonDown(b gesture.Button) error
	ButtonUp(b gesture.Button) error
	KeyDown(k gesture.Key) error
	KeyUp(k gesture.Key) error
	// Scroll scrolls vertically; positive ticks scroll up.
	Scroll(ticks int) error
	// ScreenSize returns the main display size in pixels.
	ScreenSize() (width, height int)
	// Location returns the current pointer position.
	Location() (x, y int)
}
