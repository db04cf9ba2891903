package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y-maeda1116/FlowPrint/internal/model"
)

func TestExportImport_RoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 11, 9, 30, 0, 123_000_000, time.UTC)
	done := time.Date(2024, 3, 11, 10, 0, 0, 456_000_000, time.UTC)
	pid := model.TaskID("p")

	tasks := map[model.TaskID]model.Task{
		"p": {
			ID:          "p",
			Title:       "parent",
			ChildrenIDs: []model.TaskID{"c"},
			CreatedAt:   created,
			Priority:    model.PriorityHigh,
			Tags:        []string{"home"},
		},
		"c": {
			ID:          "c",
			Title:       "child",
			Completed:   true,
			ParentID:    &pid,
			ChildrenIDs: []model.TaskID{},
			CreatedAt:   created,
			CompletedAt: &done,
			Priority:    model.PriorityMedium,
		},
	}
	templates := map[model.TemplateID]model.Template{
		"tpl_x": {ID: "tpl_x", Name: "x", Tasks: []model.TemplateTaskDef{{Title: "step"}}},
	}

	b, err := Marshal(Export(tasks, []model.TaskID{"p"}, templates))
	require.NoError(t, err)

	res, ok := Import(b)
	require.True(t, ok)
	assert.Equal(t, SchemaVersion, res.Version)
	assert.False(t, res.VersionMismatch)
	assert.Equal(t, tasks, res.Tasks)
	assert.Equal(t, []model.TaskID{"p"}, res.RootTaskIDs)
	assert.Equal(t, templates, res.Templates)
}

func TestImport_MinimalDocument(t *testing.T) {
	res, ok := Import([]byte(`{"version":1,"tasks":{},"rootTaskIds":[],"taskTemplates":{}}`))
	require.True(t, ok)
	assert.Empty(t, res.Tasks)
	assert.Empty(t, res.RootTaskIDs)
	assert.Empty(t, res.Templates)
	assert.False(t, res.VersionMismatch)
}

func TestImport_RejectsMissingSections(t *testing.T) {
	_, ok := Import([]byte(`{"tasks":{}}`))
	assert.False(t, ok)
}

func TestImport_RejectsNonJSON(t *testing.T) {
	_, ok := Import([]byte(`not json at all`))
	assert.False(t, ok)
}

func TestImport_RejectsTasksAsArray(t *testing.T) {
	_, ok := Import([]byte(`{"version":1,"tasks":[],"rootTaskIds":[],"taskTemplates":{}}`))
	assert.False(t, ok)
}

func TestImport_RejectsBadCreatedAt(t *testing.T) {
	doc := `{"version":1,"rootTaskIds":["a"],"taskTemplates":{},
	  "tasks":{"a":{"id":"a","title":"x","createdAt":"yesterday","parentId":null,"completedAt":null,"childrenIds":[],"completed":false,"priority":"medium"}}}`
	_, ok := Import([]byte(doc))
	assert.False(t, ok)
}

func TestImport_ReportsVersionMismatch(t *testing.T) {
	res, ok := Import([]byte(`{"version":2,"tasks":{},"rootTaskIds":[],"taskTemplates":{}}`))
	require.True(t, ok)
	assert.True(t, res.VersionMismatch)
	assert.Equal(t, 2, res.Version)
}

func TestImport_FillsDefaults(t *testing.T) {
	doc := `{"version":1,"rootTaskIds":["a"],"taskTemplates":{},
	  "tasks":{"a":{"title":"x","createdAt":"2024-03-11T09:30:00.000Z","parentId":null,"completedAt":null,"completed":false,"priority":"urgent"}}}`
	res, ok := Import([]byte(doc))
	require.True(t, ok)
	got := res.Tasks["a"]
	assert.Equal(t, model.TaskID("a"), got.ID)
	assert.NotNil(t, got.ChildrenIDs)
	assert.Equal(t, model.PriorityMedium, got.Priority)
}

func TestBackupFilename(t *testing.T) {
	now := time.Date(2024, 3, 11, 9, 30, 45, 0, time.UTC)
	assert.Equal(t, "flowprint_backup_20240311_093045.json", BackupFilename(now))
}
