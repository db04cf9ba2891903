package template

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/y-maeda1116/FlowPrint/internal/model"
)

type fileState struct {
	Templates map[model.TemplateID]model.Template `json:"templates"`
}

// FileRepo is a persistent template catalog backed by one JSON file.
type FileRepo struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path: filepath.Join(dataDir, "templates.json"),
		s:    fileState{Templates: map[model.TemplateID]model.Template{}},
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.s.Templates = map[model.TemplateID]model.Template{}
			return nil
		}
		return err
	}
	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Templates == nil {
		loaded.Templates = map[model.TemplateID]model.Template{}
	}
	r.s = loaded
	return nil
}

func (r *FileRepo) saveLocked() error {
	b, err := json.MarshalIndent(r.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, b, 0o644)
}

func (r *FileRepo) Create(t model.Template) (model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(string(t.ID)) == "" {
		t.ID = newID("tpl")
	}
	normalizeTemplate(&t)
	r.s.Templates[t.ID] = t
	if err := r.saveLocked(); err != nil {
		return model.Template{}, err
	}
	return t, nil
}

func (r *FileRepo) Get(id model.TemplateID) (model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.s.Templates[id]
	if !ok {
		return model.Template{}, ErrNotFound
	}
	return t, nil
}

func (r *FileRepo) List() ([]model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Template, 0, len(r.s.Templates))
	for _, t := range r.s.Templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *FileRepo) Delete(id model.TemplateID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.s.Templates[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.Templates, id)
	return r.saveLocked()
}

func (r *FileRepo) Map() (map[model.TemplateID]model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[model.TemplateID]model.Template, len(r.s.Templates))
	for id, t := range r.s.Templates {
		out[id] = t
	}
	return out, nil
}

// ReplaceAll swaps in a whole new catalog (import path).
func (r *FileRepo) ReplaceAll(m map[model.TemplateID]model.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m == nil {
		m = map[model.TemplateID]model.Template{}
	}
	r.s.Templates = m
	return r.saveLocked()
}
