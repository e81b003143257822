package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// TemplateSink receives template changes so a running classifier picks
// them up without a restart.
type TemplateSink interface {
	AddTemplate(t *classifier.Template)
	RemoveTemplate(id string)
}

// TemplateHandler handles HTTP requests for classifier templates.
type TemplateHandler struct {
	store *store.Store
	sink  TemplateSink
}

// NewTemplateHandler creates a TemplateHandler. sink may be nil.
func NewTemplateHandler(s *store.Store, sink TemplateSink) *TemplateHandler {
	return &TemplateHandler{store: s, sink: sink}
}

// ServeHTTP routes /api/templates and /api/templates/{id}.
func (h *TemplateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/templates")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createTemplateRequest struct {
	Name  string `json:"name"`
	Label *int   `json:"label"`
	// Landmarks are raw detector points; they are normalized before
	// storing.
	Landmarks []detector.Point3D `json:"landmarks"`
}

type templateResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Label     int                `json:"label"`
	Class     string             `json:"class"`
	Builtin   bool               `json:"builtin"`
	Landmarks []detector.Point3D `json:"landmarks,omitempty"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

type listTemplatesResponse struct {
	Templates []templateResponse `json:"templates"`
}

func toTemplateResponse(t *store.Template) templateResponse {
	return templateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Label:     int(t.Label),
		Class:     t.Label.String(),
		Builtin:   t.Builtin,
		Landmarks: t.Landmarks,
		CreatedAt: formatTime(t.CreatedAt),
		UpdatedAt: formatTime(t.UpdatedAt),
	}
}

// list handles GET /api/templates. Landmarks are omitted.
func (h *TemplateHandler) list(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.Templates().List(false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list templates")
		return
	}

	response := listTemplatesResponse{
		Templates: make([]templateResponse, 0, len(templates)),
	}
	for _, t := range templates {
		response.Templates = append(response.Templates, toTemplateResponse(t))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/templates/{id}.
func (h *TemplateHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	t, err := h.store.Templates().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}

	writeJSON(w, http.StatusOK, toTemplateResponse(t))
}

// create handles POST /api/templates.
func (h *TemplateHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Label == nil {
		writeError(w, http.StatusBadRequest, "Label is required")
		return
	}
	label := gesture.Label(*req.Label)
	if label != gesture.LabelPinch && label != gesture.LabelScroll {
		writeError(w, http.StatusBadRequest, "Label must be 0 (pinch) or 1 (scroll)")
		return
	}
	if len(req.Landmarks) != detector.NumLandmarks {
		writeError(w, http.StatusBadRequest, "Exactly 21 landmarks are required")
		return
	}

	var hand detector.HandLandmarks
	copy(hand.Points[:], req.Landmarks)

	t := &store.Template{
		Name:      req.Name,
		Label:     label,
		Landmarks: hand.Normalize().Points[:],
	}

	if err := h.store.Templates().Create(t); err != nil {
		if errors.Is(err, store.ErrBadTemplate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, lookupErr := h.store.Templates().GetByName(req.Name); lookupErr == nil {
			writeError(w, http.StatusConflict, "Template name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create template")
		return
	}

	if h.sink != nil {
		h.sink.AddTemplate(&classifier.Template{ID: t.ID, Name: t.Name, Label: t.Label, Landmarks: t.Landmarks})
	}

	writeJSON(w, http.StatusCreated, toTemplateResponse(t))
}

// delete handles DELETE /api/templates/{id}.
func (h *TemplateHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Templates().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}

	if h.sink != nil {
		h.sink.RemoveTemplate(id)
	}

	w.WriteHeader(http.StatusNoContent)
}
