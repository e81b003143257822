package api

import (
	"encoding/json"
	"net/http"
	"sync"
)

// Switch is the pause toggle of the dispatcher.
type Switch interface {
	SetEnabled(on bool)
	Enabled() bool
}

// ControlHandler pauses dispatching and stops the frame loop.
type ControlHandler struct {
	dispatch Switch
	stop     func()
	once     sync.Once
}

// NewControlHandler creates a ControlHandler. Either argument may be nil,
// which disables the matching endpoint.
func NewControlHandler(d Switch, stop func()) *ControlHandler {
	return &ControlHandler{dispatch: d, stop: stop}
}

type dispatchRequest struct {
	Enabled *bool `json:"enabled"`
}

type dispatchResponse struct {
	Enabled bool `json:"enabled"`
}

// Dispatch handles GET and POST /api/dispatch.
func (h *ControlHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	if h.dispatch == nil {
		writeError(w, http.StatusServiceUnavailable, "Dispatcher not available")
		return
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req dispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			writeError(w, http.StatusBadRequest, `Body must be {"enabled": true|false}`)
			return
		}
		h.dispatch.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, dispatchResponse{Enabled: h.dispatch.Enabled()})
}

// Stop handles POST /api/stop. The loop releases held input and exits;
// repeated calls are accepted and ignored.
func (h *ControlHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.stop == nil {
		writeError(w, http.StatusServiceUnavailable, "Stop not available")
		return
	}

	h.once.Do(h.stop)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "stopping"})
}
