package model

import "time"

type TaskID string

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is a node in the task forest. The graph is held entirely by id:
// ParentID points up, ChildrenIDs point down, and the two must mirror each
// other for every task reachable from a root.
type Task struct {
	ID               TaskID     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Completed        bool       `json:"completed"`
	ParentID         *TaskID    `json:"parentId"`
	ChildrenIDs      []TaskID   `json:"childrenIds"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	EstimatedMinutes int        `json:"estimatedMinutes,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	Priority         Priority   `json:"priority"`
}

// IsRoot reports whether the task has no parent.
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

func (t *Task) HasChild(id TaskID) bool {
	for _, cid := range t.ChildrenIDs {
		if cid == id {
			return true
		}
	}
	return false
}

func (t *Task) HasTag(tag string) bool {
	for _, x := range t.Tags {
		if x == tag {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is one of the three known levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
