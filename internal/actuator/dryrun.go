package actuator

import (
	"log/slog"
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// DryRun logs every call instead of touching the OS. It tracks a virtual
// pointer so Location stays meaningful.
type DryRun struct {
	log           *slog.Logger
	width, height int

	mu   sync.Mutex
	x, y int
}

// NewDryRun returns a DryRun actuator for a virtual screen of the given size.
func NewDryRun(logger *slog.Logger, width, height int) *DryRun {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRun{log: logger, width: width, height: height, x: width / 2, y: height / 2}
}

func (d *DryRun) MoveBy(dx, dy int) error {
	d.mu.Lock()
	d.x, d.y = clamp(d.x+dx, d.width), clamp(d.y+dy, d.height)
	x, y := d.x, d.y
	d.mu.Unlock()
	d.log.Info("move by", "dx", dx, "dy", dy, "x", x, "y", y)
	return nil
}

func (d *DryRun) MoveTo(x, y int) error {
	d.mu.Lock()
	d.x, d.y = clamp(x, d.width), clamp(y, d.height)
	d.mu.Unlock()
	d.log.Info("move to", "x", x, "y", y)
	return nil
}

func (d *DryRun) ButtonDown(b gesture.Button) error {
	d.log.Info("button down", "button", b)
	return nil
}

func (d *DryRun) ButtonUp(b gesture.Button) error {
	d.log.Info("button up", "button", b)
	return nil
}

func (d *DryRun) KeyDown(k gesture.Key) error {
	d.log.Info("key down", "key", k)
	return nil
}

func (d *DryRun) KeyUp(k gesture.Key) error {
	d.log.Info("key up", "key", k)
	return nil
}

func (d *DryRun) Scroll(ticks int) error {
	d.log.Info("scroll", "ticks", ticks)
	return nil
}

func (d *DryRun) ScreenSize() (int, int) {
	return d.width, d.height
}

func (d *DryRun) Location() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.x, d.y
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if limit > 0 && v >= limit {
		return limit - 1
	}
	return v
}
