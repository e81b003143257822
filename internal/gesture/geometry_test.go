package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func TestDistance(t *testing.T) {
	points := []detector.PixelPoint{
		{X: 0, Y: 0},
		{X: 3, Y: 4},
		{X: -120.5, Y: 33.25},
		{X: 1e-9, Y: 1e-9},
		{X: 640, Y: 480},
	}

	t.Run("zero for coincident points", func(t *testing.T) {
		for _, p := range points {
			if d := Distance(p, p); d != 0 {
				t.Errorf("Distance(%v, %v) = %v, want 0", p, p, d)
			}
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		for _, a := range points {
			for _, b := range points {
				if Distance(a, b) != Distance(b, a) {
					t.Errorf("Distance(%v, %v) != Distance(%v, %v)", a, b, b, a)
				}
			}
		}
	})

	t.Run("euclidean", func(t *testing.T) {
		if d := Distance(points[0], points[1]); math.Abs(d-5) > 1e-12 {
			t.Errorf("Distance((0,0), (3,4)) = %v, want 5", d)
		}
	})
}

func TestSpread(t *testing.T) {
	a := detector.PixelPoint{X: 0, Y: 0}
	b := detector.PixelPoint{X: 0, Y: 3}
	c := detector.PixelPoint{X: 4, Y: 3}

	if got := Spread(a, b, c); math.Abs(got-12) > 1e-12 {
		t.Errorf("Spread() = %v, want 12", got)
	}
	if Spread(a, a, a) != 0 {
		t.Error("Spread of one point should be 0")
	}
}
