package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Screen is the host display size in pixels. A zero Screen disables the
// press anchor.
type Screen struct {
	Width  int
	Height int
}

// Snapshot is a copy of the Machine's state, safe to hand to other
// goroutines.
type Snapshot struct {
	State       State               `json:"state"`
	ButtonDown  bool                `json:"button_down"`
	HasBaseline bool                `json:"has_baseline"`
	Baseline    float64             `json:"baseline"`
	Pointer     detector.PixelPoint `json:"pointer"`
}

// Machine is the gesture state machine. It is not safe for concurrent use:
// exactly one goroutine owns it and feeds it frames in order.
type Machine struct {
	th     Thresholds
	screen Screen

	state      State
	buttonDown bool

	// Scroll baseline; absent until the first scroll-class frame.
	hasBaseline bool
	baseline    float64

	// Last fingertip position a drag delta was measured from.
	pointer detector.PixelPoint
}

// NewMachine returns a Machine in the idle state.
func NewMachine(th Thresholds, screen Screen) *Machine {
	return &Machine{th: th, screen: screen}
}

// State returns the current interaction state.
func (m *Machine) State() State {
	return m.state
}

// ButtonDown reports whether the drag button is currently held.
func (m *Machine) ButtonDown() bool {
	return m.buttonDown
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		State:       m.state,
		ButtonDown:  m.buttonDown,
		HasBaseline: m.hasBaseline,
		Baseline:    m.baseline,
		Pointer:     m.pointer,
	}
}

// Observe feeds one classified frame and returns the intents it produces,
// in the order they must be applied. Other labels produce nothing; they
// only end a scroll gesture, leaving the latch and pointer alone.
func (m *Machine) Observe(label Label, s Signals) []Intent {
	switch label {
	case LabelPinch:
		return m.observePinch(s)
	case LabelScroll:
		return m.observeScroll(s)
	default:
		m.leaveScroll()
		return nil
	}
}

// Release lets go of anything held and returns the machine to idle. Call
// it before shutting down so no button or modifier stays pressed.
func (m *Machine) Release() []Intent {
	var out []Intent
	if m.buttonDown {
		out = m.release()
	}
	m.state = StateIdle
	m.hasBaseline = false
	m.baseline = 0
	return out
}

// Reset returns the machine to its initial state without emitting anything.
// It is for tests and for re-arming a machine whose held input was already
// released some other way; use Release when input may still be held.
func (m *Machine) Reset() {
	*m = Machine{th: m.th, screen: m.screen}
}

func (m *Machine) observePinch(s Signals) []Intent {
	var out []Intent

	if m.state == StateReleased {
		m.state = StateIdle
	}
	m.leaveScroll()

	switch {
	case !m.buttonDown && s.Pinch < m.th.Press:
		out = append(out, ButtonDown{m.th.DragButton}, ModifierDown{m.th.DragModifier})
		if m.th.AnchorOnPress && m.screen.Width > 0 && m.screen.Height > 0 {
			out = append(out, MoveTo{X: m.screen.Width / 2, Y: m.screen.Height / 2})
		}
		m.buttonDown = true
		m.state = StatePressEngaged
		m.pointer = s.Fingertip

	case m.buttonDown && s.Pinch > m.th.Release:
		out = append(out, m.release()...)
	}

	if m.buttonDown && s.Pinch < m.th.Movement {
		if mv, ok := m.drag(s.Fingertip); ok {
			out = append(out, mv)
		}
	}

	return out
}

// leaveScroll clears the scroll baseline so the next scroll gesture starts
// fresh instead of inheriting a stale delta.
func (m *Machine) leaveScroll() {
	m.hasBaseline = false
	m.baseline = 0
	if m.state == StateScrolling {
		m.state = StateIdle
	}
}

func (m *Machine) drag(tip detector.PixelPoint) (MoveBy, bool) {
	dx := tip.X - m.pointer.X
	dy := tip.Y - m.pointer.Y

	overX := math.Abs(dx) > m.th.DeadZone
	overY := math.Abs(dy) > m.th.DeadZone

	moved := overX || overY
	if m.th.RequireBothAxes {
		moved = overX && overY
	}
	if !moved {
		return MoveBy{}, false
	}

	m.pointer = tip
	return MoveBy{DX: int(math.Round(dx)), DY: int(math.Round(dy))}, true
}

func (m *Machine) observeScroll(s Signals) []Intent {
	var out []Intent

	if m.buttonDown {
		out = append(out, m.release()...)
	}
	m.state = StateScrolling

	if !m.hasBaseline {
		m.hasBaseline = true
		m.baseline = s.Spread
		return out
	}

	delta := s.Spread - m.baseline
	m.baseline = s.Spread

	if mag := math.Abs(delta); mag > m.th.ScrollMin && mag < m.th.ScrollMax {
		if ticks := int(delta / m.th.ScrollDivisor); ticks != 0 {
			out = append(out, ScrollBy{Ticks: ticks})
		}
	}

	return out
}

func (m *Machine) release() []Intent {
	m.buttonDown = false
	m.state = StateReleased
	return []Intent{ModifierUp{m.th.DragModifier}, ButtonUp{m.th.DragButton}}
}
