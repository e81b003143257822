package gesture

import (
	"errors"
	"fmt"
)

// State is the interaction state of the Machine.
type State int

const (
	// StateIdle means no button is held and no scroll is in progress.
	StateIdle State = iota
	// StatePressEngaged means the drag button and modifier are held.
	StatePressEngaged
	// StateReleased follows a release and collapses to StateIdle on the
	// next observed frame.
	StateReleased
	// StateScrolling means scroll-class frames are being tracked.
	StateScrolling
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePressEngaged:
		return "press_engaged"
	case StateReleased:
		return "released"
	case StateScrolling:
		return "scrolling"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText lets states appear by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Thresholds tune the Machine. Distances are in scaled Analyzer units
// except DeadZone, which is in frame pixels.
type Thresholds struct {
	// Press engages the drag when the pinch closes below it.
	Press float64
	// Release disengages when the pinch opens beyond it. Keeping it above
	// Press gives the hysteresis band that stops down/up chatter.
	Release float64
	// Movement bounds the pinch distance at which drags are tracked.
	Movement float64
	// DeadZone is the fingertip travel in pixels ignored as tremor.
	DeadZone float64
	// RequireBothAxes only moves when both axes exceed DeadZone.
	RequireBothAxes bool

	// ScrollMin and ScrollMax bound accepted spread deltas (exclusive).
	// Smaller deltas are tremor, larger ones are tracking glitches.
	ScrollMin float64
	ScrollMax float64
	// ScrollDivisor converts a spread delta into scroll ticks.
	ScrollDivisor float64

	// AnchorOnPress centers the pointer on the screen when a drag starts.
	AnchorOnPress bool
	// DragButton and DragModifier are held for the duration of a drag.
	DragButton   Button
	DragModifier Key
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Press:         8.0,
		Release:       12.0,
		Movement:      15.0,
		DeadZone:      5.0,
		ScrollMin:     1.0,
		ScrollMax:     30.0,
		ScrollDivisor: 5.0,
		AnchorOnPress: true,
		DragButton:    ButtonSecondary,
		DragModifier:  KeyControl,
	}
}

// Validate reports inconsistent thresholds.
func (t Thresholds) Validate() error {
	var errs []error
	if t.Press <= 0 {
		errs = append(errs, fmt.Errorf("press threshold must be positive, got %v", t.Press))
	}
	if t.Release <= t.Press {
		errs = append(errs, fmt.Errorf("release threshold %v must exceed press threshold %v", t.Release, t.Press))
	}
	if t.DeadZone < 0 {
		errs = append(errs, fmt.Errorf("dead zone must not be negative, got %v", t.DeadZone))
	}
	if t.ScrollMin < 0 || t.ScrollMax <= t.ScrollMin {
		errs = append(errs, fmt.Errorf("scroll bounds must satisfy 0 <= min < max, got %v..%v", t.ScrollMin, t.ScrollMax))
	}
	if t.ScrollDivisor <= 0 {
		errs = append(errs, fmt.Errorf("scroll divisor must be positive, got %v", t.ScrollDivisor))
	}
	if t.DragButton == "" {
		errs = append(errs, errors.New("drag button is required"))
	}
	if t.DragModifier == "" {
		errs = append(errs, errors.New("drag modifier is required"))
	}
	return errors.Join(errs...)
}
