package store

import (
	"errors"
	"testing"
	"time"
)

func TestSessionRepository_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{Classifier: "template", DryRun: true}
	if err := repo.Start(sess); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	if sess.ID == "" || sess.StartedAt.IsZero() {
		t.Fatalf("Start should fill ID and StartedAt: %+v", sess)
	}

	open, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if open.EndedAt != nil {
		t.Error("open session should have no end time")
	}
	if !open.DryRun || open.Classifier != "template" {
		t.Errorf("unexpected session: %+v", open)
	}

	if err := repo.Finish(sess.ID, 120, 9, 2); err != nil {
		t.Fatalf("failed to finish session: %v", err)
	}

	closed, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if closed.EndedAt == nil {
		t.Fatal("finished session should have an end time")
	}
	if closed.Frames != 120 || closed.Intents != 9 || closed.Failures != 2 {
		t.Errorf("counters = %d/%d/%d, want 120/9/2", closed.Frames, closed.Intents, closed.Failures)
	}

	if err := repo.Finish("missing", 0, 0, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound finishing unknown session, got %v", err)
	}
	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		sess := &Session{ID: id, Classifier: "process", StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Start(sess); err != nil {
			t.Fatalf("failed to start session %q: %v", id, err)
		}
	}

	list, err := repo.List(2)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list))
	}
	if list[0].ID != "new" || list[1].ID != "mid" {
		t.Errorf("expected newest first, got %q, %q", list[0].ID, list[1].ID)
	}
}

func TestEventRepository(t *testing.T) {
	s := newTestStore(t)

	if err := s.Sessions().Start(&Session{ID: "s1", Classifier: "template"}); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	events := s.Events()
	entries := []*Event{
		{SessionID: "s1", Type: "intent", Kind: "button_down", Detail: "ButtonDown(right)", State: "press_engaged"},
		{SessionID: "s1", Type: "intent", Kind: "modifier_down", Detail: "ModifierDown(ctrl)", State: "press_engaged"},
	}
	for _, e := range entries {
		if err := events.Append(e); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
		if e.ID == 0 {
			t.Error("Append should set the ID")
		}
	}

	got, err := events.ListBySession("s1")
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Kind != "button_down" || got[1].Kind != "modifier_down" {
		t.Errorf("events out of order: %q, %q", got[0].Kind, got[1].Kind)
	}

	t.Run("requires an existing session", func(t *testing.T) {
		if err := events.Append(&Event{SessionID: "nope", Type: "intent"}); err == nil {
			t.Error("expected foreign key violation")
		}
	})
}
