package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ayusman/isyarat/internal/app"
	"github.com/ayusman/isyarat/internal/store"
)

// EngineHandler serves /api/status, /api/settings and /api/events.
type EngineHandler struct {
	app *app.App
}

// NewEngineHandler creates an EngineHandler for a.
func NewEngineHandler(a *app.App) *EngineHandler {
	return &EngineHandler{app: a}
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

type eventsResponse struct {
	Events []*store.Event `json:"events"`
}

// Status handles GET /api/status and PUT /api/status {"enabled": bool}.
func (h *EngineHandler) Status(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req enabledRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.app.SetEnabled(*req.Enabled)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.app.Status())
}

// Settings handles GET and PUT /api/settings.
func (h *EngineHandler) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.app.Settings())
	case http.MethodPut:
		var patch app.SettingsPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		s, err := h.app.UpdateSettings(patch)
		if err != nil {
			if errors.Is(err, app.ErrInvalidSettings) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to update settings")
			return
		}
		writeJSON(w, http.StatusOK, s)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Events handles GET /api/events?limit=N, newest first.
func (h *EngineHandler) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	events, err := h.app.RecentEvents(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load events")
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}
