package dispatch

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/gesture"
	mlog "github.com/ayusman/mudra/internal/log"
)

type collector struct {
	events []events.Event
}

func (c *collector) Publish(e events.Event) {
	c.events = append(c.events, e)
}

func pressIntents() []gesture.Intent {
	return []gesture.Intent{
		gesture.ButtonDown{Button: gesture.ButtonSecondary},
		gesture.ModifierDown{Key: gesture.KeyControl},
		gesture.MoveTo{X: 960, Y: 540},
	}
}

func TestDispatch_AppliesInOrder(t *testing.T) {
	rec := actuator.NewRecorder(1920, 1080)
	d := New(rec, nil, mlog.Discard())

	intents := append(pressIntents(),
		gesture.MoveBy{DX: 12, DY: -7},
		gesture.ScrollBy{Ticks: 2},
		gesture.ModifierUp{Key: gesture.KeyControl},
		gesture.ButtonUp{Button: gesture.ButtonSecondary},
	)

	if err := d.Dispatch(context.Background(), intents); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	want := []string{
		"ButtonDown(right)",
		"KeyDown(ctrl)",
		"MoveTo(960,540)",
		"MoveBy(12,-7)",
		"Scroll(2)",
		"KeyUp(ctrl)",
		"ButtonUp(right)",
	}
	if got := rec.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("actuator calls = %v, want %v", got, want)
	}

	if applied, failed := d.Stats(); applied != 7 || failed != 0 {
		t.Errorf("Stats() = (%d, %d), want (7, 0)", applied, failed)
	}
}

func TestDispatch_LogAndContinue(t *testing.T) {
	rec := actuator.NewRecorder(1920, 1080)
	denied := errors.New("accessibility permission denied")
	rec.FailOn("KeyDown", denied)
	pub := &collector{}
	d := New(rec, pub, mlog.Discard())

	err := d.Dispatch(context.Background(), pressIntents())

	if !errors.Is(err, ErrActuator) {
		t.Fatalf("expected ErrActuator, got %v", err)
	}
	if !errors.Is(err, denied) {
		t.Errorf("expected the actuator error to be wrapped, got %v", err)
	}
	if !strings.Contains(err.Error(), "ModifierDown(ctrl)") {
		t.Errorf("error should name the failed intent: %v", err)
	}

	want := []string{"ButtonDown(right)", "MoveTo(960,540)"}
	if got := rec.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("remaining intents should still apply: got %v, want %v", got, want)
	}

	if len(pub.events) != 3 {
		t.Fatalf("expected 3 published events, got %d", len(pub.events))
	}
	if pub.events[1].Type != events.TypeError {
		t.Errorf("failed intent should publish an error event, got %q", pub.events[1].Type)
	}

	if applied, failed := d.Stats(); applied != 2 || failed != 1 {
		t.Errorf("Stats() = (%d, %d), want (2, 1)", applied, failed)
	}
}

func TestDispatch_JoinsMultipleFailures(t *testing.T) {
	rec := actuator.NewRecorder(0, 0)
	errButton := errors.New("button")
	errKey := errors.New("key")
	rec.FailOn("ButtonDown", errButton)
	rec.FailOn("KeyDown", errKey)
	d := New(rec, nil, mlog.Discard())

	err := d.Dispatch(context.Background(), pressIntents())

	if !errors.Is(err, errButton) || !errors.Is(err, errKey) {
		t.Errorf("expected both failures joined, got %v", err)
	}
}

func TestDispatch_Disabled(t *testing.T) {
	rec := actuator.NewRecorder(1920, 1080)
	pub := &collector{}
	d := New(rec, pub, mlog.Discard())

	d.SetEnabled(false)
	if d.Enabled() {
		t.Fatal("expected dispatcher disabled")
	}

	if err := d.Dispatch(context.Background(), pressIntents()); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(rec.Calls()) != 0 || len(pub.events) != 0 {
		t.Errorf("disabled dispatcher reached the actuator: %v", rec.Calls())
	}

	d.SetEnabled(true)
	if err := d.Dispatch(context.Background(), pressIntents()); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(rec.Calls()) != 3 {
		t.Errorf("expected 3 calls after re-enabling, got %v", rec.Calls())
	}
}

func TestDispatch_DisabledStillReleases(t *testing.T) {
	rec := actuator.NewRecorder(1920, 1080)
	d := New(rec, nil, mlog.Discard())
	d.SetEnabled(false)

	err := d.Dispatch(context.Background(), []gesture.Intent{
		gesture.MoveBy{DX: 5, DY: 5},
		gesture.ModifierUp{Key: gesture.KeyControl},
		gesture.ButtonUp{Button: gesture.ButtonSecondary},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	want := []string{"KeyUp(ctrl)", "ButtonUp(right)"}
	if got := rec.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("actuator calls = %v, want %v", got, want)
	}
}

func TestDispatch_Empty(t *testing.T) {
	d := New(actuator.NewRecorder(0, 0), nil, nil)
	if err := d.Dispatch(context.Background(), nil); err != nil {
		t.Errorf("Dispatch(nil) error = %v", err)
	}
}
