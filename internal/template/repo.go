package template

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/y-maeda1116/FlowPrint/internal/model"
)

var ErrNotFound = errors.New("template not found")

// Repo is the template catalog: a mapping from template id to blueprint,
// independent of task data.
type Repo interface {
	Create(t model.Template) (model.Template, error)
	Get(id model.TemplateID) (model.Template, error)
	List() ([]model.Template, error)
	Delete(id model.TemplateID) error
	Map() (map[model.TemplateID]model.Template, error)
	ReplaceAll(m map[model.TemplateID]model.Template) error
}

func newID(prefix string) model.TemplateID {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return model.TemplateID(prefix + "_" + hex.EncodeToString(b[:]))
}

func normalizeTemplate(t *model.Template) {
	t.Name = strings.TrimSpace(t.Name)
	t.Tasks = normalizeDefs(t.Tasks)
}

// normalizeDefs trims titles and drops definitions without one, at every
// nesting level.
func normalizeDefs(defs []model.TemplateTaskDef) []model.TemplateTaskDef {
	out := make([]model.TemplateTaskDef, 0, len(defs))
	for _, d := range defs {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			continue
		}
		if d.EstimatedMinutes < 0 {
			d.EstimatedMinutes = 0
		}
		d.Children = normalizeDefs(d.Children)
		out = append(out, d)
	}
	// nil for no definitions, so a save/load cycle reproduces the value
	if len(out) == 0 {
		return nil
	}
	return out
}

func newTemplateFromUpsert(u model.TemplateUpsert) model.Template {
	t := model.Template{
		ID:    newID("tpl"),
		Name:  u.Name,
		Tasks: u.Tasks,
	}
	normalizeTemplate(&t)
	return t
}
