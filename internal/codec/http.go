package codec

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/y-maeda1116/FlowPrint/internal/clock"
	"github.com/y-maeda1116/FlowPrint/internal/model"
	"github.com/y-maeda1116/FlowPrint/internal/task"
	"github.com/y-maeda1116/FlowPrint/internal/template"
)

type Handler struct {
	store     *task.Store
	templates template.Repo
	clock     clock.Clock
	logger    *log.Logger
}

func NewHandler(store *task.Store, templates template.Repo, c clock.Clock, logger *log.Logger) *Handler {
	if c == nil {
		c = clock.RealClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{store: store, templates: templates, clock: c, logger: logger}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// GET /api/export — download the current state as a backup file.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	tasks, roots := h.store.Snapshot()
	templates, err := h.templates.Map()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	b, err := Marshal(Export(tasks, roots, templates))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+BackupFilename(h.clock.Now())+`"`)
	_, _ = w.Write(b)
}

type importRequest struct {
	ConfirmVersionMismatch bool            `json:"confirmVersionMismatch"`
	Data                   json.RawMessage `json:"data"`
}

// POST /api/import — validate, then replace the whole state. A version
// mismatch needs explicit confirmation; a malformed document changes
// nothing.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "bad body")
		return
	}
	var in importRequest
	if err := json.Unmarshal(body, &in); err != nil || len(in.Data) == 0 {
		writeErr(w, http.StatusBadRequest, "bad json: data is required")
		return
	}

	res, ok := Import(in.Data)
	if !ok {
		h.logger.Printf("import rejected: malformed document (%d bytes)", len(in.Data))
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"imported": false,
			"error":    "invalid document",
		})
		return
	}
	if res.VersionMismatch && !in.ConfirmVersionMismatch {
		writeJSON(w, http.StatusConflict, map[string]any{
			"imported":        false,
			"versionMismatch": true,
			"version":         res.Version,
			"currentVersion":  SchemaVersion,
		})
		return
	}

	h.store.Replace(res.Tasks, res.RootTaskIDs)
	if err := h.templates.ReplaceAll(res.Templates); err != nil {
		h.logger.Printf("import: replace templates: %v", err)
	}
	cols := h.store.SetActiveColumns([]model.TaskID{})
	writeJSON(w, http.StatusOK, map[string]any{
		"imported":        true,
		"versionMismatch": res.VersionMismatch,
		"columns":         cols,
	})
}
