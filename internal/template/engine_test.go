package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y-maeda1116/FlowPrint/internal/clock"
	"github.com/y-maeda1116/FlowPrint/internal/model"
	"github.com/y-maeda1116/FlowPrint/internal/task"
)

func newTestEngine(t *testing.T) (*Engine, *task.Store, *FileRepo, *clock.FakeClock) {
	t.Helper()
	fake := clock.NewFakeClock(time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC))
	store := task.NewStore(task.Options{Clock: fake})
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)
	return NewEngine(store, repo, fake), store, repo, fake
}

func TestApply_MaterializesRecursively(t *testing.T) {
	eng, store, repo, fake := newTestEngine(t)
	tpl, err := repo.Create(model.Template{
		Name: "morning routine",
		Tasks: []model.TemplateTaskDef{
			{Title: "wake up", Priority: model.PriorityHigh, Children: []model.TemplateTaskDef{
				{Title: "stretch", Tags: []string{"health"}},
			}},
			{Title: "coffee"},
		},
	})
	require.NoError(t, err)

	top, ok := eng.Apply(tpl.ID, nil, nil)
	require.True(t, ok)
	require.Len(t, top, 2)
	assert.Equal(t, 3, store.Len())

	first, ok := store.Get(top[0])
	require.True(t, ok)
	assert.Equal(t, "wake up", first.Title)
	assert.Equal(t, model.PriorityHigh, first.Priority)
	assert.Equal(t, fake.Now(), first.CreatedAt)
	require.Len(t, first.ChildrenIDs, 1)

	child, ok := store.Get(first.ChildrenIDs[0])
	require.True(t, ok)
	assert.Equal(t, "stretch", child.Title)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, first.ID, *child.ParentID)
	assert.Equal(t, []string{"health"}, child.Tags)

	assert.Equal(t, top, store.RootTaskIDs())
}

func TestApply_UnderParent(t *testing.T) {
	eng, store, repo, _ := newTestEngine(t)
	parent := store.Add(model.Task{Title: "project"})
	tpl, err := repo.Create(model.Template{
		Name:  "step",
		Tasks: []model.TemplateTaskDef{{Title: "do the thing"}},
	})
	require.NoError(t, err)

	pid := parent.ID
	top, ok := eng.Apply(tpl.ID, &pid, nil)
	require.True(t, ok)
	require.Len(t, top, 1)

	got, _ := store.Get(parent.ID)
	assert.Equal(t, top, got.ChildrenIDs)
	assert.Equal(t, []model.TaskID{parent.ID}, store.RootTaskIDs())
}

func TestApply_StartAtOverridesCreatedAt(t *testing.T) {
	eng, store, repo, _ := newTestEngine(t)
	tpl, err := repo.Create(model.Template{
		Name:  "later",
		Tasks: []model.TemplateTaskDef{{Title: "x"}},
	})
	require.NoError(t, err)

	startAt := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	top, ok := eng.Apply(tpl.ID, nil, &startAt)
	require.True(t, ok)

	got, _ := store.Get(top[0])
	assert.Equal(t, startAt, got.CreatedAt)
}

func TestApply_MissingTemplateChangesNothing(t *testing.T) {
	eng, store, _, _ := newTestEngine(t)

	top, ok := eng.Apply("tpl_missing", nil, nil)
	assert.False(t, ok)
	assert.Nil(t, top)
	assert.Zero(t, store.Len())
}

func TestApply_DefaultsInvalidPriority(t *testing.T) {
	eng, store, repo, _ := newTestEngine(t)
	tpl, err := repo.Create(model.Template{
		Name:  "odd",
		Tasks: []model.TemplateTaskDef{{Title: "x", Priority: "urgent"}},
	})
	require.NoError(t, err)

	top, ok := eng.Apply(tpl.ID, nil, nil)
	require.True(t, ok)
	got, _ := store.Get(top[0])
	assert.Equal(t, model.PriorityMedium, got.Priority)
}
