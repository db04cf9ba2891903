package model

type TemplateID string

// Template is a reusable blueprint: a tree of task definitions that gets
// materialized into real tasks on demand.
type Template struct {
	ID    TemplateID        `json:"id"`
	Name  string            `json:"name"`
	Tasks []TemplateTaskDef `json:"tasks"`
}

// TemplateTaskDef describes one task to create. Children nest recursively.
type TemplateTaskDef struct {
	Title            string            `json:"title"`
	Description      string            `json:"description,omitempty"`
	EstimatedMinutes int               `json:"estimatedMinutes,omitempty"`
	Priority         Priority          `json:"priority,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	Children         []TemplateTaskDef `json:"children,omitempty"`
}

type TemplateUpsert struct {
	Name  string            `json:"name"`
	Tasks []TemplateTaskDef `json:"tasks"`
}
