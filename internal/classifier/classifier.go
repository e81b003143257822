// Package classifier assigns a gesture label and confidence to a hand pose.
package classifier

import (
	"errors"

	"github.com/ayusman/mudra/internal/gesture"
)

var (
	// ErrNoTemplates is returned when a template classifier has nothing to
	// match against.
	ErrNoTemplates = errors.New("no templates loaded")
	// ErrBadFeatures is returned when the feature vector is not 63 floats.
	ErrBadFeatures = errors.New("feature vector must hold 21 x {x,y,z} values")
)

// Result is a classification decision.
type Result struct {
	Label      gesture.Label `json:"label"`
	Confidence float64       `json:"confidence"`
}

// Classifier maps a flattened landmark vector (see
// detector.HandLandmarks.Flatten) to a label and a confidence in [0,1].
type Classifier interface {
	Classify(features []float64) (Result, error)
	Close() error
}
