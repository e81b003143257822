// Package detector provides the 21-point hand landmark model and the
// hand detection interfaces that feed the gesture engine.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21

	// NumFeatures is the length of a flattened landmark vector (21 x {x,y,z}).
	NumFeatures = NumLandmarks * 3
)

// Point3D is a landmark position. X and Y are normalized to [0,1] relative
// to the frame width and height; Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PixelPoint is a landmark projected into frame pixel space.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Denormalize projects the point into pixel space for a w x h frame.
func (p Point3D) Denormalize(w, h int) PixelPoint {
	return PixelPoint{
		X: p.X * float64(w),
		Y: p.Y * float64(h),
	}
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Flatten returns the landmarks as 63 floats in landmark order
// (x0, y0, z0, x1, ...), the input layout classifiers expect.
func (h *HandLandmarks) Flatten() []float64 {
	out := make([]float64, 0, NumFeatures)
	for _, p := range h.Points {
		out = append(out, p.X, p.Y, p.Z)
	}
	return out
}

// FromFeatures rebuilds landmarks from a flattened vector.
// It returns false if the vector is not exactly NumFeatures long.
func FromFeatures(features []float64) (HandLandmarks, bool) {
	var h HandLandmarks
	if len(features) != NumFeatures {
		return h, false
	}
	for i := range h.Points {
		h.Points[i] = Point3D{
			X: features[i*3],
			Y: features[i*3+1],
			Z: features[i*3+2],
		}
	}
	return h, true
}

func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Normalize returns a copy translated so the wrist sits at the origin and
// scaled so the wrist to middle MCP distance is 1.0. This removes hand
// position and size from the pose, which is what template matching needs.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	normalized := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	scale := distance3D(Point3D{}, normalized.Points[MiddleMCP])
	if scale < 1e-10 {
		return normalized
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}
