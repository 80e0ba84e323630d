package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/isyarat/internal/app"
	"github.com/ayusman/isyarat/internal/gesture"
)

// TemplateHandler serves /api/templates.
type TemplateHandler struct {
	app *app.App
}

// NewTemplateHandler creates a TemplateHandler for a.
func NewTemplateHandler(a *app.App) *TemplateHandler {
	return &TemplateHandler{app: a}
}

// ServeHTTP routes:
//
//	GET    /api/templates           list
//	DELETE /api/templates           clear
//	GET    /api/templates/export    JSON download
//	POST   /api/templates/import    replace from JSON
//	GET    /api/templates/{id}      get
//	PUT    /api/templates/{id}      edit name, response, cooldown
//	DELETE /api/templates/{id}      delete
//	POST   /api/templates/{id}/test speak the response
func (h *TemplateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := subPath(r, "/api/templates")

	switch {
	case path == "":
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.clear(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	case path == "export":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.export(w, r)
		return
	case path == "import":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.importTemplates(w, r)
		return
	}

	id, action, _ := strings.Cut(path, "/")
	switch action {
	case "":
	case "test":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.test(w, r, id)
		return
	default:
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type listTemplatesResponse struct {
	Templates []gesture.Template `json:"templates"`
}

type updateTemplateRequest struct {
	Name     *string `json:"name"`
	Response *string `json:"response"`
	Cooldown *int64  `json:"cooldown"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

type testResponse struct {
	Spoken bool `json:"spoken"`
}

func (h *TemplateHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listTemplatesResponse{Templates: h.app.Library().List()})
}

func (h *TemplateHandler) clear(w http.ResponseWriter, r *http.Request) {
	h.app.ClearTemplates()
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	t, err := h.app.Library().Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req updateTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "Name must not be empty")
			return
		}
		req.Name = &name
	}
	if req.Cooldown != nil && *req.Cooldown <= 0 {
		writeError(w, http.StatusBadRequest, "Cooldown must be positive")
		return
	}
	if req.Response != nil {
		response := strings.TrimSpace(*req.Response)
		if response == "" {
			response = gesture.DefaultResponse
		}
		req.Response = &response
	}

	t, err := h.app.UpdateTemplate(id, gesture.TemplatePatch{
		Name:     req.Name,
		Response: req.Response,
		Cooldown: req.Cooldown,
	})
	if err != nil {
		if errors.Is(err, gesture.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update template")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.app.DeleteTemplate(id); err != nil {
		if errors.Is(err, gesture.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandler) test(w http.ResponseWriter, r *http.Request, id string) {
	spoken, err := h.app.TestTemplate(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeJSON(w, http.StatusOK, testResponse{Spoken: spoken})
}

func (h *TemplateHandler) export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="isyarat-templates.json"`)
	if err := h.app.ExportTemplates(w); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export templates")
	}
}

func (h *TemplateHandler) importTemplates(w http.ResponseWriter, r *http.Request) {
	n, err := h.app.ImportTemplates(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, gesture.ErrMalformedImport) {
			writeError(w, http.StatusBadRequest, "Invalid template file")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read template file")
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Imported: n})
}
