package model

type ColumnID string

// TaskColumn is one level of the drill-down board. Columns are derived from
// the task forest on demand and never persisted; ids are regenerated on
// every projection.
type TaskColumn struct {
	ID           ColumnID `json:"id"`
	TaskIDs      []TaskID `json:"taskIds"`
	ParentTaskID *TaskID  `json:"parentTaskId"`
	Level        int      `json:"level"`
}
