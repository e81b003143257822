package gesture

import "fmt"

// Button is a pointer button.
type Button string

// Pointer buttons.
const (
	ButtonLeft      Button = "left"
	ButtonSecondary Button = "right"
	ButtonMiddle    Button = "center"
)

// Key is a modifier key.
type Key string

// Modifier keys.
const (
	KeyControl Key = "ctrl"
	KeyShift   Key = "shift"
	KeyAlt     Key = "alt"
	KeyCommand Key = "cmd"
)

// Intent is an input action decided by the Machine but not yet applied.
// The set of implementations is closed: only this package can add one.
type Intent interface {
	fmt.Stringer
	intent()
}

// MoveBy moves the pointer relative to its current position.
type MoveBy struct{ DX, DY int }

// MoveTo moves the pointer to an absolute screen position.
type MoveTo struct{ X, Y int }

// ButtonDown presses a pointer button.
type ButtonDown struct{ Button Button }

// ButtonUp releases a pointer button.
type ButtonUp struct{ Button Button }

// ModifierDown presses a modifier key.
type ModifierDown struct{ Key Key }

// ModifierUp releases a modifier key.
type ModifierUp struct{ Key Key }

// ScrollBy scrolls vertically by whole ticks; positive is up.
type ScrollBy struct{ Ticks int }

func (MoveBy) intent()       {}
func (MoveTo) intent()       {}
func (ButtonDown) intent()   {}
func (ButtonUp) intent()     {}
func (ModifierDown) intent() {}
func (ModifierUp) intent()   {}
func (ScrollBy) intent()     {}

func (i MoveBy) String() string       { return fmt.Sprintf("MoveBy(%d,%d)", i.DX, i.DY) }
func (i MoveTo) String() string       { return fmt.Sprintf("MoveTo(%d,%d)", i.X, i.Y) }
func (i ButtonDown) String() string   { return fmt.Sprintf("ButtonDown(%s)", i.Button) }
func (i ButtonUp) String() string     { return fmt.Sprintf("ButtonUp(%s)", i.Button) }
func (i ModifierDown) String() string { return fmt.Sprintf("ModifierDown(%s)", i.Key) }
func (i ModifierUp) String() string   { return fmt.Sprintf("ModifierUp(%s)", i.Key) }
func (i ScrollBy) String() string     { return fmt.Sprintf("ScrollBy(%d)", i.Ticks) }

// Kind returns a short stable name for an intent, used in logs and events.
func Kind(i Intent) string {
	switch i.(type) {
	case MoveBy:
		return "move_by"
	case MoveTo:
		return "move_to"
	case ButtonDown:
		return "button_down"
	case ButtonUp:
		return "button_up"
	case ModifierDown:
		return "modifier_down"
	case ModifierUp:
		return "modifier_up"
	case ScrollBy:
		return "scroll_by"
	default:
		return "unknown"
	}
}
