// Package gesture turns per-frame hand observations into pointer and
// keyboard intents. It holds the signal analyzer and the interaction state
// machine; it never talks to the OS itself.
package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Distance returns the Euclidean distance between two pixel-space points.
// math.Hypot keeps it exact for coincident points and avoids overflow.
func Distance(p1, p2 detector.PixelPoint) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}

// Spread returns the sum of the three pairwise distances between a, b and c.
func Spread(a, b, c detector.PixelPoint) float64 {
	return Distance(a, b) + Distance(b, c) + Distance(a, c)
}
