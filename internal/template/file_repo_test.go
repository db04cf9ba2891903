package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y-maeda1116/FlowPrint/internal/model"
)

func TestFileRepo_CreateAssignsIDAndNormalizes(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)

	tpl, err := repo.Create(model.Template{
		Name: "  weekly review  ",
		Tasks: []model.TemplateTaskDef{
			{Title: " inbox zero "},
			{Title: "   "},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tpl.ID)
	assert.Equal(t, "weekly review", tpl.Name)
	require.Len(t, tpl.Tasks, 1)
	assert.Equal(t, "inbox zero", tpl.Tasks[0].Title)
}

func TestFileRepo_SurvivesReload(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepo(dir)
	require.NoError(t, err)
	tpl, err := repo.Create(model.Template{Name: "groceries", Tasks: []model.TemplateTaskDef{{Title: "milk"}}})
	require.NoError(t, err)

	reloaded, err := NewFileRepo(dir)
	require.NoError(t, err)
	got, err := reloaded.Get(tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl, got)
}

func TestFileRepo_GetAndDeleteMissing(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)

	_, err = repo.Get("tpl_missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete("tpl_missing"), ErrNotFound)
}

func TestFileRepo_ListSortedByName(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)
	_, err = repo.Create(model.Template{Name: "zeta", Tasks: []model.TemplateTaskDef{{Title: "z"}}})
	require.NoError(t, err)
	_, err = repo.Create(model.Template{Name: "alpha", Tasks: []model.TemplateTaskDef{{Title: "a"}}})
	require.NoError(t, err)

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "zeta", list[1].Name)
}

func TestFileRepo_ReplaceAll(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)
	_, err = repo.Create(model.Template{Name: "old", Tasks: []model.TemplateTaskDef{{Title: "x"}}})
	require.NoError(t, err)

	incoming := map[model.TemplateID]model.Template{
		"tpl_new": {ID: "tpl_new", Name: "new", Tasks: []model.TemplateTaskDef{{Title: "y"}}},
	}
	require.NoError(t, repo.ReplaceAll(incoming))

	m, err := repo.Map()
	require.NoError(t, err)
	require.Len(t, m, 1)
	assert.Contains(t, m, model.TemplateID("tpl_new"))
}
