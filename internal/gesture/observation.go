package gesture

import (
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

// Label is the classifier's decision about the hand pose in a frame.
type Label int

const (
	// LabelPinch is the pointing/pinch class: press, drag and release.
	LabelPinch Label = 0
	// LabelScroll is the spread class: hand openness drives scrolling.
	LabelScroll Label = 1
)

// String returns a readable name for the label.
func (l Label) String() string {
	switch l {
	case LabelPinch:
		return "pinch"
	case LabelScroll:
		return "scroll"
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}

// Observation is one classified frame. It is produced by the acquisition
// stage and consumed once by the engine.
type Observation struct {
	Hand       detector.HandLandmarks
	Label      Label
	Confidence float64
	// Width and Height are the frame's pixel dimensions, used to
	// denormalize the landmarks.
	Width  int
	Height int
}
