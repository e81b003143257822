package actuator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ayusman/mudra/internal/gesture"
	mlog "github.com/ayusman/mudra/internal/log"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder(800, 600)

	r.ButtonDown(gesture.ButtonSecondary)
	r.KeyDown(gesture.KeyControl)
	r.MoveTo(400, 300)
	r.MoveBy(10, -5)
	r.Scroll(-2)
	r.KeyUp(gesture.KeyControl)
	r.ButtonUp(gesture.ButtonSecondary)

	want := []string{
		"ButtonDown(right)",
		"KeyDown(ctrl)",
		"MoveTo(400,300)",
		"MoveBy(10,-5)",
		"Scroll(-2)",
		"KeyUp(ctrl)",
		"ButtonUp(right)",
	}
	if got := r.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("Calls() = %v, want %v", got, want)
	}

	if x, y := r.Location(); x != 410 || y != 295 {
		t.Errorf("Location() = (%d,%d), want (410,295)", x, y)
	}
	if w, h := r.ScreenSize(); w != 800 || h != 600 {
		t.Errorf("ScreenSize() = (%d,%d), want (800,600)", w, h)
	}
}

func TestRecorder_FailOn(t *testing.T) {
	r := NewRecorder(800, 600)
	denied := errors.New("not permitted")
	r.FailOn("KeyDown", denied)

	if err := r.KeyDown(gesture.KeyControl); !errors.Is(err, denied) {
		t.Errorf("expected injected error, got %v", err)
	}
	if len(r.Calls()) != 0 {
		t.Errorf("failed call should not be recorded, got %v", r.Calls())
	}
}

func TestDryRun_TracksVirtualPointer(t *testing.T) {
	d := NewDryRun(mlog.Discard(), 100, 50)

	if x, y := d.Location(); x != 50 || y != 25 {
		t.Errorf("initial Location() = (%d,%d), want (50,25)", x, y)
	}

	d.MoveBy(80, -40)
	if x, y := d.Location(); x != 99 || y != 0 {
		t.Errorf("Location() after clamp = (%d,%d), want (99,0)", x, y)
	}

	d.MoveTo(10, 10)
	if x, y := d.Location(); x != 10 || y != 10 {
		t.Errorf("Location() after MoveTo = (%d,%d), want (10,10)", x, y)
	}
}

func TestImplementations(t *testing.T) {
	var _ Actuator = (*Robot)(nil)
	var _ Actuator = (*DryRun)(nil)
	var _ Actuator = (*Recorder)(nil)
}
