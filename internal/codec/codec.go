package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/y-maeda1116/FlowPrint/internal/model"
)

// SchemaVersion is the one version counter for both the persisted blob and
// the export file.
const SchemaVersion = 1

// timeLayout is RFC 3339 with millisecond precision; round-trips are exact
// at the millisecond.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// ExportedTask is Task with timestamps as ISO-8601 strings.
type ExportedTask struct {
	ID               model.TaskID   `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Completed        bool           `json:"completed"`
	ParentID         *model.TaskID  `json:"parentId"`
	ChildrenIDs      []model.TaskID `json:"childrenIds"`
	CreatedAt        string         `json:"createdAt"`
	CompletedAt      *string        `json:"completedAt"`
	EstimatedMinutes int            `json:"estimatedMinutes,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	Priority         model.Priority `json:"priority"`
}

// Document is the versioned persistence envelope.
type Document struct {
	Version       int                                 `json:"version"`
	Tasks         map[model.TaskID]ExportedTask       `json:"tasks"`
	RootTaskIDs   []model.TaskID                      `json:"rootTaskIds"`
	TaskTemplates map[model.TemplateID]model.Template `json:"taskTemplates"`
}

const importSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["tasks", "rootTaskIds", "taskTemplates"],
  "properties": {
    "version": {"type": "integer"},
    "tasks": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["title", "createdAt"],
        "properties": {
          "title": {"type": "string"},
          "createdAt": {"type": "string"},
          "completedAt": {"type": ["string", "null"]},
          "parentId": {"type": ["string", "null"]},
          "childrenIds": {"type": "array", "items": {"type": "string"}},
          "tags": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "rootTaskIds": {"type": "array", "items": {"type": "string"}},
    "taskTemplates": {"type": "object"}
  }
}`

var importSchema = jsonschema.MustCompileString("flowprint-import.schema.json", importSchemaJSON)

// Export converts a store snapshot plus the template catalog into the
// versioned envelope.
func Export(tasks map[model.TaskID]model.Task, rootTaskIDs []model.TaskID, templates map[model.TemplateID]model.Template) Document {
	out := Document{
		Version:       SchemaVersion,
		Tasks:         make(map[model.TaskID]ExportedTask, len(tasks)),
		RootTaskIDs:   append([]model.TaskID{}, rootTaskIDs...),
		TaskTemplates: templates,
	}
	if out.TaskTemplates == nil {
		out.TaskTemplates = map[model.TemplateID]model.Template{}
	}
	for id, t := range tasks {
		et := ExportedTask{
			ID:               t.ID,
			Title:            t.Title,
			Description:      t.Description,
			Completed:        t.Completed,
			ParentID:         t.ParentID,
			ChildrenIDs:      append([]model.TaskID{}, t.ChildrenIDs...),
			CreatedAt:        t.CreatedAt.Format(timeLayout),
			EstimatedMinutes: t.EstimatedMinutes,
			Tags:             t.Tags,
			Priority:         t.Priority,
		}
		if t.CompletedAt != nil {
			s := t.CompletedAt.Format(timeLayout)
			et.CompletedAt = &s
		}
		out.Tasks[id] = et
	}
	return out
}

func Marshal(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// ImportResult is a fully rehydrated state, ready to swap into the store.
type ImportResult struct {
	Tasks           map[model.TaskID]model.Task
	RootTaskIDs     []model.TaskID
	Templates       map[model.TemplateID]model.Template
	Version         int
	VersionMismatch bool
}

// Import validates and rehydrates an exported document. ok=false means the
// document was rejected and nothing should change; a version mismatch is
// not a rejection — it is reported so the caller can ask for confirmation.
func Import(raw []byte) (ImportResult, bool) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return ImportResult{}, false
	}
	if err := importSchema.Validate(generic); err != nil {
		return ImportResult{}, false
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ImportResult{}, false
	}

	res := ImportResult{
		Tasks:           make(map[model.TaskID]model.Task, len(doc.Tasks)),
		RootTaskIDs:     doc.RootTaskIDs,
		Templates:       doc.TaskTemplates,
		Version:         doc.Version,
		VersionMismatch: doc.Version != SchemaVersion,
	}
	if res.RootTaskIDs == nil {
		res.RootTaskIDs = []model.TaskID{}
	}
	if res.Templates == nil {
		res.Templates = map[model.TemplateID]model.Template{}
	}

	for id, et := range doc.Tasks {
		t, err := rehydrateTask(id, et)
		if err != nil {
			return ImportResult{}, false
		}
		res.Tasks[id] = t
	}
	return res, true
}

func rehydrateTask(id model.TaskID, et ExportedTask) (model.Task, error) {
	createdAt, err := parseTime(et.CreatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: createdAt: %w", id, err)
	}
	var completedAt *time.Time
	if et.CompletedAt != nil {
		parsed, err := parseTime(*et.CompletedAt)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %s: completedAt: %w", id, err)
		}
		completedAt = &parsed
	}

	if et.ID == "" {
		et.ID = id
	}
	if et.ChildrenIDs == nil {
		et.ChildrenIDs = []model.TaskID{}
	}
	priority := et.Priority
	if !model.ValidPriority(priority) {
		priority = model.PriorityMedium
	}
	return model.Task{
		ID:               et.ID,
		Title:            et.Title,
		Description:      et.Description,
		Completed:        et.Completed,
		ParentID:         et.ParentID,
		ChildrenIDs:      et.ChildrenIDs,
		CreatedAt:        createdAt,
		CompletedAt:      completedAt,
		EstimatedMinutes: et.EstimatedMinutes,
		Tags:             et.Tags,
		Priority:         priority,
	}, nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// BackupFilename names an export file for the given instant, e.g.
// flowprint_backup_20240311_093045.json.
func BackupFilename(now time.Time) string {
	return "flowprint_backup_" + now.Format("20060102_150405") + ".json"
}
