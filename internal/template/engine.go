package template

import (
	"time"

	"github.com/y-maeda1116/FlowPrint/internal/clock"
	"github.com/y-maeda1116/FlowPrint/internal/model"
	"github.com/y-maeda1116/FlowPrint/internal/task"
)

// Engine materializes templates into real tasks in the store.
type Engine struct {
	store *task.Store
	repo  Repo
	clock clock.Clock
}

func NewEngine(store *task.Store, repo Repo, c clock.Clock) *Engine {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Engine{store: store, repo: repo, clock: c}
}

// Apply expands the template under parentID (nil for roots). Every
// definition, at every depth, becomes a real task; each generated task is
// linked to its generated parent. startAt overrides the creation timestamp
// when given. Returns the generated top-level ids, or ok=false with no
// state change when the template does not exist.
func (e *Engine) Apply(id model.TemplateID, parentID *model.TaskID, startAt *time.Time) ([]model.TaskID, bool) {
	tpl, err := e.repo.Get(id)
	if err != nil {
		return nil, false
	}

	createdAt := e.clock.Now()
	if startAt != nil {
		createdAt = *startAt
	}

	top := make([]model.TaskID, 0, len(tpl.Tasks))
	for _, def := range tpl.Tasks {
		top = append(top, e.materialize(def, parentID, createdAt))
	}
	return top, true
}

func (e *Engine) materialize(def model.TemplateTaskDef, parentID *model.TaskID, createdAt time.Time) model.TaskID {
	priority := def.Priority
	if !model.ValidPriority(priority) {
		priority = model.PriorityMedium
	}
	t := e.store.Add(model.Task{
		Title:            def.Title,
		Description:      def.Description,
		ParentID:         parentID,
		CreatedAt:        createdAt,
		EstimatedMinutes: def.EstimatedMinutes,
		Tags:             append([]string{}, def.Tags...),
		Priority:         priority,
	})
	for _, child := range def.Children {
		e.materialize(child, &t.ID, createdAt)
	}
	return t.ID
}
