package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants.
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21).
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection.
	DiffThreshold = 25
	// DefaultMotionThreshold is the percentage of changed pixels that
	// counts as motion.
	DefaultMotionThreshold = 1.0
	// DefaultHoldFrames is how many still frames pass the gate after the
	// last motion.
	DefaultHoldFrames = 90
)

// MotionGate decides whether a frame is worth running landmark detection
// on. It opens on motion and stays open for a hold window afterwards, so a
// hand held still mid-drag keeps being tracked while an empty scene stops
// costing detector time.
type MotionGate struct {
	threshold float64
	hold      int

	mu          sync.Mutex
	prevGray    gocv.Mat
	initialized bool
	sinceMotion int
}

// NewMotionGate creates a gate. threshold is the percentage of pixels that
// must change (1.0 means 1%); hold is the number of frames the gate stays
// open after motion. Non-positive values select the defaults.
func NewMotionGate(threshold float64, hold int) *MotionGate {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	if hold <= 0 {
		hold = DefaultHoldFrames
	}
	return &MotionGate{
		threshold:   threshold,
		hold:        hold,
		prevGray:    gocv.NewMat(),
		sinceMotion: hold,
	}
}

// Allow reports whether frame should be processed. The first frame always
// passes and seeds the background.
func (m *MotionGate) Allow(frame *gocv.Mat) bool {
	moved, _ := m.Detect(frame)

	m.mu.Lock()
	defer m.mu.Unlock()

	if moved {
		m.sinceMotion = 0
		return true
	}
	if m.sinceMotion < m.hold {
		m.sinceMotion++
		return true
	}
	return false
}

// Detect compares frame with the previous one and returns whether motion
// was seen along with the percentage of changed pixels. Frames are
// grayscaled and blurred before differencing to suppress sensor noise.
// The first frame seeds the background and reports motion.
func (m *MotionGate) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changePercent := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0

	blurred.CopyTo(&m.prevGray)

	return changePercent > m.threshold, changePercent
}

// Reset forgets the background; the next frame passes and re-seeds it.
func (m *MotionGate) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
	m.sinceMotion = m.hold
}

// Close releases the background frame. It is safe to call more than once.
func (m *MotionGate) Close() {
	m.Reset()
}
