// Package server provides mudra's debug HTTP surface: health, engine
// state, the template and session APIs, a websocket event feed and an
// MJPEG camera preview.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Config holds the server configuration. Every field is optional; routes
// whose backing component is missing are not registered.
type Config struct {
	StaticDir string
	App       *app.App
	Hub       *events.Hub
	Preview   *capture.Preview
	Store     *store.Store
	// Templates receives template edits so they apply immediately.
	Templates api.TemplateSink
	// Stop ends the frame loop.
	Stop   func()
	Logger *slog.Logger
}

// Server represents the debug HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    *slog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/state", s.handleState)

	var sw api.Switch
	if s.config.App != nil {
		sw = s.config.App.Dispatcher()
	}
	control := api.NewControlHandler(sw, s.config.Stop)
	s.mux.HandleFunc("/api/dispatch", control.Dispatch)
	s.mux.HandleFunc("/api/stop", control.Stop)

	if s.config.Store != nil {
		templates := api.NewTemplateHandler(s.config.Store, s.config.Templates)
		s.mux.Handle("/api/templates", templates)
		s.mux.Handle("/api/templates/", templates)

		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/events", NewEventsHandler(s.config.Hub, s.log))
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

type eventStats struct {
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
	Subscribers int    `json:"subscribers"`
}

type stateResponse struct {
	Running         bool        `json:"running"`
	DispatchEnabled bool        `json:"dispatch_enabled"`
	Stats           *app.Stats  `json:"stats,omitempty"`
	State           string      `json:"state"`
	Snapshot        any         `json:"snapshot,omitempty"`
	Events          *eventStats `json:"events,omitempty"`
}

// handleState handles GET /api/state: the latest machine snapshot plus
// loop and event counters.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := stateResponse{State: "unknown"}

	if a := s.config.App; a != nil {
		stats := a.Stats()
		resp.Running = a.Running()
		resp.DispatchEnabled = a.Dispatcher().Enabled()
		resp.Stats = &stats
	}

	if h := s.config.Hub; h != nil {
		if snap, ok := h.Latest(); ok {
			resp.State = snap.State.String()
			resp.Snapshot = snap
		}
		published, dropped := h.Stats()
		resp.Events = &eventStats{Published: published, Dropped: dropped, Subscribers: h.Subscribers()}
	}

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("debug server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
