package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/gesture"
	mlog "github.com/ayusman/mudra/internal/log"
)

// newTestApp returns an App with no frame source; the server only reads
// its counters and dispatcher.
func newTestApp(hub *events.Hub) *app.App {
	machine := gesture.NewMachine(gesture.DefaultThresholds(), gesture.Screen{Width: 1920, Height: 1080})
	d := dispatch.New(actuator.NewRecorder(1920, 1080), hub, mlog.Discard())
	return app.New(app.DefaultOptions(), nil, machine, d, hub, mlog.Discard())
}

func TestServer_Health(t *testing.T) {
	s := New(Config{Logger: mlog.Discard()})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}

		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_State(t *testing.T) {
	hub := events.NewHub(0, mlog.Discard())
	a := newTestApp(hub)
	s := New(Config{App: a, Hub: hub, Logger: mlog.Discard()})

	get := func(t *testing.T) map[string]any {
		t.Helper()
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		return response
	}

	t.Run("before any frame", func(t *testing.T) {
		response := get(t)
		if response["state"] != "unknown" || response["dispatch_enabled"] != true || response["running"] != false {
			t.Errorf("unexpected state: %v", response)
		}
		if _, ok := response["snapshot"]; ok {
			t.Error("expected no snapshot yet")
		}
	})

	t.Run("reports the latest snapshot", func(t *testing.T) {
		hub.Publish(events.SnapshotEvent(gesture.Snapshot{State: gesture.StatePressEngaged, ButtonDown: true}))
		a.Dispatcher().SetEnabled(false)

		response := get(t)
		if response["state"] != "press_engaged" {
			t.Errorf("state = %v, want press_engaged", response["state"])
		}
		if response["dispatch_enabled"] != false {
			t.Error("expected dispatch_enabled false after pausing")
		}
		evs, ok := response["events"].(map[string]any)
		if !ok || evs["published"] != float64(1) {
			t.Errorf("unexpected event stats: %v", response["events"])
		}
	})
}

func TestServer_Control(t *testing.T) {
	hub := events.NewHub(0, mlog.Discard())
	a := newTestApp(hub)
	stopped := make(chan struct{})
	s := New(Config{App: a, Stop: func() { close(stopped) }, Logger: mlog.Discard()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dispatch", jsonBody(`{"enabled": false}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || a.Dispatcher().Enabled() {
		t.Errorf("pause: status %d, enabled %v", rec.Code, a.Dispatcher().Enabled())
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stop", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("stop: expected status %d, got %d", http.StatusAccepted, rec.Code)
	}
	select {
	case <-stopped:
	default:
		t.Error("expected the stop func to run")
	}
}

func TestServer_OptionalRoutes(t *testing.T) {
	s := New(Config{Logger: mlog.Discard()})

	for _, path := range []string{"/api/templates", "/api/sessions", "/api/events", "/api/stream", "/api/nonexistent"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d without a backing component, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestServer_StaticFiles(t *testing.T) {
	tmpDir := t.TempDir()

	testContent := "<html><body>mudra</body></html>"
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(testContent), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	s := New(Config{StaticDir: tmpDir, Logger: mlog.Discard()})

	t.Run("serves index.html at root path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if rec.Body.String() != testContent {
			t.Errorf("expected body %q, got %q", testContent, rec.Body.String())
		}
	})

	t.Run("returns 404 for non-existent static files", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nonexistent.html", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}
