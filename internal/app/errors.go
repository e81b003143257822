package app

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHand means the frame was read but holds no usable hand.
	// It is expected and never stops the loop.
	ErrNoHand = errors.New("no hand in frame")
	// ErrFrameUnavailable means the camera produced no frame this time.
	ErrFrameUnavailable = errors.New("frame unavailable")
	// ErrAcquireTimeout means one acquisition exceeded the configured bound.
	ErrAcquireTimeout = errors.New("frame acquisition timed out")
)

// InitializationError reports a component that could not be set up.
// It is always fatal.
type InitializationError struct {
	Component string
	Err       error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialize %s: %v", e.Component, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// AcquisitionError reports a failure to produce an observation.
// Recoverable errors may be skipped by the loop's failure policy.
type AcquisitionError struct {
	Recoverable bool
	Err         error
}

func (e *AcquisitionError) Error() string {
	if e.Recoverable {
		return fmt.Sprintf("acquire frame: %v", e.Err)
	}
	return fmt.Sprintf("acquire frame (fatal): %v", e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// recoverable reports whether err may be skipped.
func recoverable(err error) bool {
	var acq *AcquisitionError
	if errors.As(err, &acq) {
		return acq.Recoverable
	}
	return errors.Is(err, ErrFrameUnavailable) || errors.Is(err, ErrAcquireTimeout)
}
