package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func observationWithTips(thumb, index, middle detector.Point3D, w, h int) Observation {
	hand := detector.WithFingertips(detector.OpenPalmLandmarks(), thumb, index, middle)
	return Observation{Hand: hand, Label: LabelPinch, Confidence: 1, Width: w, Height: h}
}

func TestAnalyzer_Analyze(t *testing.T) {
	// Tips form a 300/400/500 pixel triangle on a 1000x1000 frame.
	obs := observationWithTips(
		detector.Point3D{X: 0.1, Y: 0.1},
		detector.Point3D{X: 0.1, Y: 0.4},
		detector.Point3D{X: 0.5, Y: 0.4},
		1000, 1000,
	)

	s := NewAnalyzer().Analyze(obs)

	if math.Abs(s.Pinch-30) > 1e-9 {
		t.Errorf("Pinch = %v, want 30", s.Pinch)
	}
	if math.Abs(s.Spread-120) > 1e-9 {
		t.Errorf("Spread = %v, want 120", s.Spread)
	}
	if math.Abs(s.Fingertip.X-100) > 1e-9 || math.Abs(s.Fingertip.Y-400) > 1e-9 {
		t.Errorf("Fingertip = %+v, want {100 400}", s.Fingertip)
	}
}

func TestAnalyzer_UsesFrameDimensions(t *testing.T) {
	obs := observationWithTips(
		detector.Point3D{X: 0.5, Y: 0.5},
		detector.Point3D{X: 0.6, Y: 0.5},
		detector.Point3D{X: 0.6, Y: 0.5},
		640, 480,
	)

	s := NewAnalyzer().Analyze(obs)

	// 0.1 of 640 pixels, scaled by 10.
	if math.Abs(s.Pinch-6.4) > 1e-9 {
		t.Errorf("Pinch = %v, want 6.4", s.Pinch)
	}
}

func TestAnalyzer_ZeroScaleFallsBack(t *testing.T) {
	obs := observationWithTips(
		detector.Point3D{X: 0, Y: 0},
		detector.Point3D{X: 0.1, Y: 0},
		detector.Point3D{X: 0.1, Y: 0},
		1000, 1000,
	)

	s := Analyzer{}.Analyze(obs)

	if math.Abs(s.Pinch-10) > 1e-9 {
		t.Errorf("Pinch with zero scale = %v, want 10 (default scale)", s.Pinch)
	}
}
