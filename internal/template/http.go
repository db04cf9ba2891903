package template

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/y-maeda1116/FlowPrint/internal/model"
)

type Handler struct {
	repo   Repo
	engine *Engine
}

func NewHandler(repo Repo, engine *Engine) *Handler {
	return &Handler{repo: repo, engine: engine}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// /api/templates
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := h.repo.List()
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var in model.TemplateUpsert
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			writeErr(w, http.StatusBadRequest, "name is required")
			return
		}
		out, err := h.repo.Create(newTemplateFromUpsert(in))
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, out)
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/templates/{id}[/apply]
func (h *Handler) Sub(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/templates/"), "/")
	if path == "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	idPart, action, _ := strings.Cut(path, "/")
	id := model.TemplateID(idPart)

	switch action {
	case "":
		h.templateByID(w, r, id)
	case "apply":
		h.apply(w, r, id)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) templateByID(w http.ResponseWriter, r *http.Request, id model.TemplateID) {
	switch r.Method {
	case http.MethodGet:
		t, err := h.repo.Get(id)
		if err == ErrNotFound {
			writeErr(w, http.StatusNotFound, "template not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, t)
	case http.MethodDelete:
		err := h.repo.Delete(id)
		if err == ErrNotFound {
			writeErr(w, http.StatusNotFound, "template not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, id model.TemplateID) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		ParentID *model.TaskID `json:"parentId"`
		StartAt  *string       `json:"startAt"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}

	var startAt *time.Time
	if body.StartAt != nil && strings.TrimSpace(*body.StartAt) != "" {
		parsed, err := time.Parse(time.RFC3339, *body.StartAt)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "startAt must be RFC 3339")
			return
		}
		startAt = &parsed
	}

	ids, ok := h.engine.Apply(id, body.ParentID, startAt)
	if !ok {
		writeErr(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"taskIds": ids})
}
