package receipt

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/y-maeda1116/FlowPrint/internal/clock"
	"github.com/y-maeda1116/FlowPrint/internal/model"
	"github.com/y-maeda1116/FlowPrint/internal/task"
)

type Handler struct {
	store   *task.Store
	printer *Printer
	layout  Layout
	clock   clock.Clock
}

func NewHandler(store *task.Store, printer *Printer, layout Layout, c clock.Clock) *Handler {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Handler{store: store, printer: printer, layout: layout, clock: c}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

type printRequest struct {
	TaskIDs []model.TaskID `json:"taskIds"`
	Title   string         `json:"title"`
}

// POST /api/print — render a task list and hand it to the sink. With no
// explicit ids the selected task's children are printed, falling back to
// the roots.
func (h *Handler) Print(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in printRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}

	ids := in.TaskIDs
	if len(ids) == 0 {
		ids = h.defaultIDs()
	}
	tasks := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := h.store.Get(id); ok {
			tasks = append(tasks, t)
		}
	}

	layout := h.layout
	if strings.TrimSpace(in.Title) != "" {
		layout.Title = in.Title
	}
	job := Render(layout, tasks, h.clock.Now())
	if err := h.printer.Print(job); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"printed": false,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"printed": true,
		"tasks":   len(tasks),
		"bytes":   len(job),
	})
}

func (h *Handler) defaultIDs() []model.TaskID {
	if sel := h.store.SelectedTaskID(); sel != nil {
		if t, ok := h.store.Get(*sel); ok && len(t.ChildrenIDs) > 0 {
			return t.ChildrenIDs
		}
	}
	return h.store.RootTaskIDs()
}
