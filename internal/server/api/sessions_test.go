package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

func TestSessionHandler(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	older := &store.Session{ID: "session-1", Classifier: "template", StartedAt: time.Now().Add(-time.Hour)}
	newer := &store.Session{ID: "session-2", Classifier: "process", DryRun: true}
	for _, sess := range []*store.Session{older, newer} {
		if err := s.Sessions().Start(sess); err != nil {
			t.Fatalf("failed to start session: %v", err)
		}
	}
	if err := s.Sessions().Finish("session-1", 120, 4, 0); err != nil {
		t.Fatalf("failed to finish session: %v", err)
	}
	for _, kind := range []string{"ButtonDown", "ButtonUp"} {
		if err := s.Events().Append(&store.Event{SessionID: "session-1", Type: "intent", Kind: kind}); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
	}

	t.Run("list newest first", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var response listSessionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Sessions) != 2 || response.Sessions[0].ID != "session-2" {
			t.Errorf("unexpected sessions: %+v", response.Sessions)
		}
	})

	t.Run("limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions?limit=1", nil))

		var response listSessionsResponse
		json.NewDecoder(rec.Body).Decode(&response)
		if len(response.Sessions) != 1 {
			t.Errorf("expected 1 session, got %d", len(response.Sessions))
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions?limit=zero", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("get with events", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/session-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var response struct {
			ID      string        `json:"id"`
			Frames  int64         `json:"frames"`
			EndedAt *time.Time    `json:"ended_at"`
			Events  []store.Event `json:"events"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.ID != "session-1" || response.Frames != 120 || response.EndedAt == nil {
			t.Errorf("unexpected session: %+v", response)
		}
		if len(response.Events) != 2 || response.Events[0].Kind != "ButtonDown" {
			t.Errorf("unexpected events: %+v", response.Events)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("read only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}
