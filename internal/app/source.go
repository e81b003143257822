package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// FrameSource produces classified observations, one per call.
// It returns ErrNoHand when a frame holds nothing to act on.
type FrameSource interface {
	Acquire(ctx context.Context) (*gesture.Observation, error)
	Close() error
}

// CameraSource chains camera, motion gate, landmark detector and
// classifier. Only the first detected hand is used.
type CameraSource struct {
	camera     capture.Camera
	gate       *capture.MotionGate
	detector   detector.Detector
	classifier classifier.Classifier
	preview    *capture.Preview
	log        *slog.Logger
}

// NewCameraSource builds a source. gate may be nil.
func NewCameraSource(cam capture.Camera, gate *capture.MotionGate, det detector.Detector, cls classifier.Classifier, logger *slog.Logger) *CameraSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CameraSource{camera: cam, gate: gate, detector: det, classifier: cls, log: logger}
}

// SetPreview makes the source feed every frame read to p.
func (s *CameraSource) SetPreview(p *capture.Preview) {
	s.preview = p
}

// Acquire reads one frame and turns it into an Observation.
func (s *CameraSource) Acquire(ctx context.Context) (*gesture.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame, err := s.camera.ReadFrame()
	if err != nil {
		if errors.Is(err, capture.ErrCameraNotOpen) || errors.Is(err, capture.ErrNoMoreFrames) {
			return nil, &AcquisitionError{Err: err}
		}
		return nil, &AcquisitionError{Recoverable: true, Err: fmt.Errorf("%w: %w", ErrFrameUnavailable, err)}
	}
	defer frame.Close()

	if s.preview != nil {
		if err := s.preview.Publish(frame); err != nil {
			s.log.Debug("preview dropped", "error", err)
		}
	}

	if s.gate != nil && !s.gate.Allow(frame) {
		return nil, ErrNoHand
	}

	hands, err := s.detector.Detect(frame)
	if err != nil {
		return nil, &AcquisitionError{Recoverable: true, Err: fmt.Errorf("detect landmarks: %w", err)}
	}
	if len(hands) == 0 {
		return nil, ErrNoHand
	}
	hand := hands[0]

	res, err := s.classifier.Classify(hand.Flatten())
	if err != nil {
		return nil, &AcquisitionError{Recoverable: true, Err: fmt.Errorf("classify: %w", err)}
	}

	s.log.Debug("frame classified", "label", res.Label, "confidence", res.Confidence, "handedness", hand.Handedness)

	return &gesture.Observation{
		Hand:       hand,
		Label:      res.Label,
		Confidence: res.Confidence,
		Width:      frame.Cols(),
		Height:     frame.Rows(),
	}, nil
}

// Close releases the camera, the motion gate, the detector and the
// classifier, returning every error.
func (s *CameraSource) Close() error {
	var errs []error
	if err := s.camera.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close camera: %w", err))
	}
	if s.gate != nil {
		s.gate.Close()
	}
	if err := s.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close detector: %w", err))
	}
	if err := s.classifier.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close classifier: %w", err))
	}
	return errors.Join(errs...)
}
