package task

import (
	"github.com/google/uuid"

	"github.com/y-maeda1116/FlowPrint/internal/model"
)

func newColumnID() model.ColumnID {
	return model.ColumnID("col_" + uuid.NewString())
}

// SetActiveColumns recomputes the drill-down board from scratch for the
// given root-to-leaf hierarchy. Column 0 always holds the live roots; each
// hierarchy entry that still exists and has children contributes one more
// column. The result is capped at the configured column count. The caller
// owns the hierarchy's validity — the store only filters out dead ids.
func (s *Store) SetActiveColumns(hierarchy []model.TaskID) []model.TaskColumn {
	s.mu.Lock()

	cols := make([]model.TaskColumn, 0, len(hierarchy)+1)
	cols = append(cols, model.TaskColumn{
		ID:           newColumnID(),
		TaskIDs:      s.liveIDsLocked(s.rootTaskIDs),
		ParentTaskID: nil,
		Level:        0,
	})

	level := 1
	for _, id := range hierarchy {
		t, ok := s.tasks[id]
		if !ok || len(t.ChildrenIDs) == 0 {
			continue
		}
		parentID := id
		cols = append(cols, model.TaskColumn{
			ID:           newColumnID(),
			TaskIDs:      s.liveIDsLocked(t.ChildrenIDs),
			ParentTaskID: &parentID,
			Level:        level,
		})
		level++
	}

	if len(cols) > s.maxColumns {
		cols = cols[:s.maxColumns]
	}

	s.columns = cols
	out := append([]model.TaskColumn{}, cols...)
	s.mu.Unlock()
	return out
}

// Columns returns the last computed projection. It is never updated
// implicitly; mutate-then-reproject is the caller's contract.
func (s *Store) Columns() []model.TaskColumn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.TaskColumn{}, s.columns...)
}

func (s *Store) liveIDsLocked(ids []model.TaskID) []model.TaskID {
	out := make([]model.TaskID, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.tasks[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
