package task

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"sync"

	"github.com/y-maeda1116/FlowPrint/internal/clock"
	"github.com/y-maeda1116/FlowPrint/internal/model"
)

var ErrNotFound = errors.New("task not found")

// DeletePolicy controls what happens to the children of a deleted task.
type DeletePolicy string

const (
	// DeleteOrphan detaches the task from its parent and leaves descendants
	// in the mapping, reachable only by direct id lookup.
	DeleteOrphan DeletePolicy = "orphan"
	// DeleteCascade removes the whole subtree.
	DeleteCascade DeletePolicy = "cascade"
	// DeleteReparent attaches children to the deleted task's parent (or
	// promotes them to roots).
	DeleteReparent DeletePolicy = "reparent"
)

func ValidDeletePolicy(p DeletePolicy) bool {
	switch p {
	case DeleteOrphan, DeleteCascade, DeleteReparent:
		return true
	}
	return false
}

// Patch represents a partial update.
// nil pointer => "no change". ID and CreatedAt are not patchable.
type Patch struct {
	Title            *string         `json:"title,omitempty"`
	Description      *string         `json:"description,omitempty"`
	Completed        *bool           `json:"completed,omitempty"`
	EstimatedMinutes *int            `json:"estimatedMinutes,omitempty"`
	Tags             *[]string       `json:"tags,omitempty"`
	Priority         *model.Priority `json:"priority,omitempty"`
}

const DefaultMaxColumns = 5

type Options struct {
	Clock        clock.Clock
	DeletePolicy DeletePolicy
	MaxColumns   int
}

// Store owns the task mapping and the root-task list. Every mutation goes
// through it so the parent/children links stay mirrored. Consumers that
// need to react to changes register a subscriber; there is no implicit
// re-rendering anywhere.
type Store struct {
	mu           sync.RWMutex
	clock        clock.Clock
	deletePolicy DeletePolicy
	maxColumns   int

	tasks       map[model.TaskID]model.Task
	rootTaskIDs []model.TaskID

	selectedTaskID *model.TaskID
	editingTaskID  *model.TaskID
	columns        []model.TaskColumn

	subs []func()
}

func NewStore(opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if !ValidDeletePolicy(opts.DeletePolicy) {
		opts.DeletePolicy = DeleteOrphan
	}
	if opts.MaxColumns <= 0 {
		opts.MaxColumns = DefaultMaxColumns
	}
	return &Store{
		clock:        opts.Clock,
		deletePolicy: opts.DeletePolicy,
		maxColumns:   opts.MaxColumns,
		tasks:        map[model.TaskID]model.Task{},
		rootTaskIDs:  []model.TaskID{},
	}
}

func newID(prefix string) model.TaskID {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return model.TaskID(prefix + "_" + hex.EncodeToString(b[:]))
}

// Subscribe registers fn to run after every successful mutation.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func (s *Store) normalizeLocked(t *model.Task) {
	if t.ID == "" {
		t.ID = newID("task")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.clock.Now()
	}
	if !model.ValidPriority(t.Priority) {
		t.Priority = model.PriorityMedium
	}
	if t.ChildrenIDs == nil {
		t.ChildrenIDs = []model.TaskID{}
	}
	t.Tags = dedupeTags(t.Tags)
}

// Add inserts a task into the mapping. Root tasks are appended to the root
// list exactly once; tasks with a live parent are appended to that parent's
// children exactly once. A task whose parent is missing stays in the
// mapping but is not linked anywhere — title validation and parent
// existence are the caller's concern.
func (s *Store) Add(t model.Task) model.Task {
	s.mu.Lock()
	s.normalizeLocked(&t)
	s.tasks[t.ID] = t

	if t.ParentID == nil {
		if !containsID(s.rootTaskIDs, t.ID) {
			s.rootTaskIDs = append(s.rootTaskIDs, t.ID)
		}
	} else if parent, ok := s.tasks[*t.ParentID]; ok && !parent.HasChild(t.ID) {
		parent.ChildrenIDs = append(parent.ChildrenIDs, t.ID)
		s.tasks[parent.ID] = parent
	}
	s.mu.Unlock()

	s.notify()
	return t
}

// Update merges the patch into the task. Missing ids are a silent no-op.
func (s *Store) Update(id model.TaskID, p Patch) (model.Task, bool) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return model.Task{}, false
	}

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil && *p.Completed != t.Completed {
		t.Completed = *p.Completed
		if t.Completed {
			now := s.clock.Now()
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
	}
	if p.EstimatedMinutes != nil {
		t.EstimatedMinutes = *p.EstimatedMinutes
	}
	if p.Tags != nil {
		t.Tags = dedupeTags(*p.Tags)
	}
	if p.Priority != nil && model.ValidPriority(*p.Priority) {
		t.Priority = *p.Priority
	}

	s.tasks[id] = t
	s.mu.Unlock()

	s.notify()
	return t, true
}

// ToggleCompletion flips the completed flag. Completing stamps CompletedAt
// with the current instant; un-completing clears it.
func (s *Store) ToggleCompletion(id model.TaskID) (model.Task, bool) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return model.Task{}, false
	}

	t.Completed = !t.Completed
	if t.Completed {
		now := s.clock.Now()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}

	s.tasks[id] = t
	s.mu.Unlock()

	s.notify()
	return t, true
}

// Delete removes the task, detaches it from its parent and the root list,
// and clears selection state that referenced it. What happens to the
// subtree depends on the configured DeletePolicy. Missing ids are a no-op.
func (s *Store) Delete(id model.TaskID) bool {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return false
	}

	if t.ParentID != nil {
		if parent, ok := s.tasks[*t.ParentID]; ok {
			parent.ChildrenIDs = removeID(parent.ChildrenIDs, id)
			s.tasks[parent.ID] = parent
		}
	}
	s.rootTaskIDs = removeID(s.rootTaskIDs, id)

	switch s.deletePolicy {
	case DeleteCascade:
		s.deleteSubtreeLocked(t.ChildrenIDs)
	case DeleteReparent:
		for _, cid := range t.ChildrenIDs {
			child, ok := s.tasks[cid]
			if !ok {
				continue
			}
			child.ParentID = t.ParentID
			s.tasks[cid] = child
			if t.ParentID == nil {
				if !containsID(s.rootTaskIDs, cid) {
					s.rootTaskIDs = append(s.rootTaskIDs, cid)
				}
			} else if gp, ok := s.tasks[*t.ParentID]; ok && !gp.HasChild(cid) {
				gp.ChildrenIDs = append(gp.ChildrenIDs, cid)
				s.tasks[gp.ID] = gp
			}
		}
	}

	delete(s.tasks, id)
	s.clearSelectionIfGoneLocked()
	s.mu.Unlock()

	s.notify()
	return true
}

func (s *Store) deleteSubtreeLocked(ids []model.TaskID) {
	for _, id := range ids {
		t, ok := s.tasks[id]
		if !ok {
			continue
		}
		delete(s.tasks, id)
		s.deleteSubtreeLocked(t.ChildrenIDs)
	}
}

func (s *Store) clearSelectionIfGoneLocked() {
	if s.selectedTaskID != nil {
		if _, ok := s.tasks[*s.selectedTaskID]; !ok {
			s.selectedTaskID = nil
		}
	}
	if s.editingTaskID != nil {
		if _, ok := s.tasks[*s.editingTaskID]; !ok {
			s.editingTaskID = nil
		}
	}
}

// Move reattaches a task under a new parent (nil promotes it to a root).
// Moving a task under itself or one of its descendants is refused.
func (s *Store) Move(id model.TaskID, newParentID *model.TaskID) (model.Task, bool) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return model.Task{}, false
	}
	if newParentID != nil {
		if _, ok := s.tasks[*newParentID]; !ok {
			s.mu.Unlock()
			return model.Task{}, false
		}
		// cycle guard: walk up from the new parent
		for cur := newParentID; cur != nil; {
			if *cur == id {
				s.mu.Unlock()
				return model.Task{}, false
			}
			p, ok := s.tasks[*cur]
			if !ok {
				break
			}
			cur = p.ParentID
		}
	}

	if t.ParentID != nil {
		if parent, ok := s.tasks[*t.ParentID]; ok {
			parent.ChildrenIDs = removeID(parent.ChildrenIDs, id)
			s.tasks[parent.ID] = parent
		}
	}
	s.rootTaskIDs = removeID(s.rootTaskIDs, id)

	t.ParentID = newParentID
	s.tasks[id] = t
	if newParentID == nil {
		s.rootTaskIDs = append(s.rootTaskIDs, id)
	} else if parent, ok := s.tasks[*newParentID]; ok && !parent.HasChild(id) {
		parent.ChildrenIDs = append(parent.ChildrenIDs, id)
		s.tasks[parent.ID] = parent
	}
	s.mu.Unlock()

	s.notify()
	return t, true
}

func (s *Store) Get(id model.TaskID) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// List returns every task ordered by creation time.
func (s *Store) List() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *Store) RootTaskIDs() []model.TaskID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.TaskID{}, s.rootTaskIDs...)
}

// Snapshot copies the mapping and root list for readers that must not see
// later mutations (persistence, export, stats).
func (s *Store) Snapshot() (map[model.TaskID]model.Task, []model.TaskID) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make(map[model.TaskID]model.Task, len(s.tasks))
	for id, t := range s.tasks {
		tasks[id] = t
	}
	return tasks, append([]model.TaskID{}, s.rootTaskIDs...)
}

// Replace swaps in a whole new state (import path). Selection and the
// column projection are cleared; the caller re-projects.
func (s *Store) Replace(tasks map[model.TaskID]model.Task, rootTaskIDs []model.TaskID) {
	s.mu.Lock()
	if tasks == nil {
		tasks = map[model.TaskID]model.Task{}
	}
	if rootTaskIDs == nil {
		rootTaskIDs = []model.TaskID{}
	}
	s.tasks = tasks
	s.rootTaskIDs = rootTaskIDs
	s.selectedTaskID = nil
	s.editingTaskID = nil
	s.columns = nil
	s.mu.Unlock()

	s.notify()
}

// Select sets the selected task. Selecting a missing id clears selection.
func (s *Store) Select(id *model.TaskID) {
	s.mu.Lock()
	if id != nil {
		if _, ok := s.tasks[*id]; !ok {
			id = nil
		}
	}
	s.selectedTaskID = id
	s.mu.Unlock()
}

func (s *Store) SelectedTaskID() *model.TaskID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedTaskID
}

func (s *Store) SetEditing(id *model.TaskID) {
	s.mu.Lock()
	if id != nil {
		if _, ok := s.tasks[*id]; !ok {
			id = nil
		}
	}
	s.editingTaskID = id
	s.mu.Unlock()
}

func (s *Store) EditingTaskID() *model.TaskID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editingTaskID
}

// HierarchyOf walks ParentID links from id up to its root and returns the
// root-to-leaf chain, the shape SetActiveColumns expects.
func (s *Store) HierarchyOf(id model.TaskID) []model.TaskID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := []model.TaskID{}
	seen := map[model.TaskID]bool{}
	cur := id
	for {
		t, ok := s.tasks[cur]
		if !ok || seen[cur] {
			break
		}
		seen[cur] = true
		chain = append(chain, cur)
		if t.ParentID == nil {
			break
		}
		cur = *t.ParentID
	}
	// reverse to root-first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func containsID(ids []model.TaskID, id model.TaskID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func removeID(ids []model.TaskID, id model.TaskID) []model.TaskID {
	out := make([]model.TaskID, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
