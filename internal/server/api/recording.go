package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ayusman/isyarat/internal/app"
	"github.com/ayusman/isyarat/internal/gesture"
)

// RecordingHandler serves /api/recording.
type RecordingHandler struct {
	app *app.App
}

// NewRecordingHandler creates a RecordingHandler for a.
func NewRecordingHandler(a *app.App) *RecordingHandler {
	return &RecordingHandler{app: a}
}

type recordingResponse struct {
	app.RecordingState
	Message string `json:"message,omitempty"`
}

type nameResponse struct {
	Name string `json:"name"`
}

// ServeHTTP routes GET /api/recording, GET /api/recording/name and
// POST /api/recording/{start,stop,discard,commit}.
func (h *RecordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := subPath(r, "/api/recording")

	if r.Method == http.MethodGet {
		switch path {
		case "":
			writeJSON(w, http.StatusOK, recordingResponse{RecordingState: h.app.Recording()})
		case "name":
			h.suggestName(w, r)
		default:
			writeError(w, http.StatusNotFound, "Not found")
		}
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var e app.Event
	switch path {
	case "start":
		e = h.app.StartRecording()
	case "stop":
		e = h.app.StopRecording()
	case "discard":
		e = h.app.DiscardRecording()
	case "commit":
		h.commit(w, r)
		return
	default:
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, recordingResponse{RecordingState: h.app.Recording(), Message: e.Message})
}

func (h *RecordingHandler) commit(w http.ResponseWriter, r *http.Request) {
	// An empty body saves with an auto name and the default response.
	var req app.NewGesture
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	t, err := h.app.CommitRecording(req)
	if err != nil {
		if errors.Is(err, gesture.ErrEmptyRecording) {
			writeError(w, http.StatusConflict, "Record a gesture first")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save gesture")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *RecordingHandler) suggestName(w http.ResponseWriter, r *http.Request) {
	name, err := h.app.SuggestName()
	if err != nil {
		writeError(w, http.StatusConflict, "Record a gesture first")
		return
	}
	writeJSON(w, http.StatusOK, nameResponse{Name: name})
}
