package gesture

import "github.com/ayusman/mudra/internal/detector"

// DefaultScale brings raw pixel distances into the threshold range the
// Machine works in.
const DefaultScale = 10.0

// Signals are the per-frame scalars the Machine reacts to.
type Signals struct {
	// Pinch is the thumb tip to index tip distance, scaled.
	Pinch float64
	// Spread is the summed pairwise distance between the thumb, index and
	// middle tips, scaled. It grows as the hand opens.
	Spread float64
	// Fingertip is the index tip in frame pixels, used for drag deltas.
	Fingertip detector.PixelPoint
}

// Analyzer converts landmarks into Signals. It keeps no state between frames.
type Analyzer struct {
	// Scale divides every distance. Zero means DefaultScale.
	Scale float64
}

// NewAnalyzer returns an Analyzer with the default scale.
func NewAnalyzer() Analyzer {
	return Analyzer{Scale: DefaultScale}
}

// Analyze computes the signals for one observation.
func (a Analyzer) Analyze(obs Observation) Signals {
	scale := a.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	thumb := obs.Hand.Points[detector.ThumbTip].Denormalize(obs.Width, obs.Height)
	index := obs.Hand.Points[detector.IndexTip].Denormalize(obs.Width, obs.Height)
	middle := obs.Hand.Points[detector.MiddleTip].Denormalize(obs.Width, obs.Height)

	return Signals{
		Pinch:     Distance(thumb, index) / scale,
		Spread:    Spread(thumb, index, middle) / scale,
		Fingertip: index,
	}
}
