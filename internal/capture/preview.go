package capture

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Preview holds the most recent frame as JPEG for the debug stream.
// Frames are only encoded while someone is watching.
type Preview struct {
	watchers atomic.Int32

	mu   sync.RWMutex
	jpeg []byte
	seq  uint64
}

// NewPreview returns an empty Preview.
func NewPreview() *Preview {
	return &Preview{}
}

// Watch registers a viewer. The returned func unregisters it.
func (p *Preview) Watch() func() {
	p.watchers.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { p.watchers.Add(-1) })
	}
}

// Watching reports whether any viewer is registered.
func (p *Preview) Watching() bool {
	return p.watchers.Load() > 0
}

// Publish encodes frame when there are viewers.
func (p *Preview) Publish(frame *gocv.Mat) error {
	if !p.Watching() || frame == nil || frame.Empty() {
		return nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	p.Set(buf.GetBytes())
	return nil
}

// Set stores an already encoded JPEG.
func (p *Preview) Set(jpeg []byte) {
	data := make([]byte, len(jpeg))
	copy(data, jpeg)

	p.mu.Lock()
	p.jpeg = data
	p.seq++
	p.mu.Unlock()
}

// Latest returns the current JPEG and its sequence number. The sequence
// changes whenever a new frame is stored; zero means no frame yet.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.seq
}
