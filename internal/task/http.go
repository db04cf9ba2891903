package task

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/y-maeda1116/FlowPrint/internal/model"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
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

type createTaskRequest struct {
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	ParentID         *model.TaskID  `json:"parentId"`
	EstimatedMinutes int            `json:"estimatedMinutes"`
	Tags             []string       `json:"tags"`
	Priority         model.Priority `json:"priority"`
}

// /api/tasks
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"tasks":       h.store.List(),
			"rootTaskIds": h.store.RootTaskIDs(),
		})
	case http.MethodPost:
		var in createTaskRequest
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		in.Title = strings.TrimSpace(in.Title)
		if in.Title == "" {
			writeErr(w, http.StatusBadRequest, "title is required")
			return
		}
		if in.ParentID != nil {
			if _, ok := h.store.Get(*in.ParentID); !ok {
				writeErr(w, http.StatusNotFound, "parent not found")
				return
			}
		}
		t := h.store.Add(model.Task{
			Title:            in.Title,
			Description:      strings.TrimSpace(in.Description),
			ParentID:         in.ParentID,
			EstimatedMinutes: in.EstimatedMinutes,
			Tags:             in.Tags,
			Priority:         in.Priority,
		})
		writeJSON(w, http.StatusCreated, t)
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/tasks/{id}[/toggle|/select|/move]
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tasks/"), "/")
	if path == "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	idPart, action, _ := strings.Cut(path, "/")
	id := model.TaskID(idPart)

	switch action {
	case "":
		h.taskByID(w, r, id)
	case "toggle":
		h.toggle(w, r, id)
	case "select":
		h.selectTask(w, r, id)
	case "move":
		h.move(w, r, id)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) taskByID(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	switch r.Method {
	case http.MethodGet:
		t, ok := h.store.Get(id)
		if !ok {
			writeErr(w, http.StatusNotFound, "task not found")
			return
		}
		writeJSON(w, http.StatusOK, t)
	case http.MethodPatch:
		var p Patch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
			writeErr(w, http.StatusBadRequest, "title must not be empty")
			return
		}
		t, ok := h.store.Update(id, p)
		if !ok {
			writeErr(w, http.StatusNotFound, "task not found")
			return
		}
		writeJSON(w, http.StatusOK, t)
	case http.MethodDelete:
		if !h.store.Delete(id) {
			writeErr(w, http.StatusNotFound, "task not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	t, ok := h.store.ToggleCompletion(id)
	if !ok {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// selectTask marks the task selected and re-projects the board along its
// ancestor chain.
func (h *Handler) selectTask(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, ok := h.store.Get(id); !ok {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	h.store.Select(&id)
	cols := h.store.SetActiveColumns(h.store.HierarchyOf(id))
	writeJSON(w, http.StatusOK, map[string]any{"columns": cols})
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		ParentID *model.TaskID `json:"parentId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	t, ok := h.store.Move(id, body.ParentID)
	if !ok {
		writeErr(w, http.StatusConflict, "move refused")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// /api/columns
func (h *Handler) ColumnsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"columns": h.store.Columns()})
	case http.MethodPost:
		var body struct {
			Hierarchy []model.TaskID `json:"hierarchy"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		cols := h.store.SetActiveColumns(body.Hierarchy)
		writeJSON(w, http.StatusOK, map[string]any{"columns": cols})
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
