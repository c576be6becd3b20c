// Package store persists rule templates as JSON files.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rezonia/invoice-utils/internal/model"
)

// ErrInvalidName is returned for template names that cannot map to a file
var ErrInvalidName = errors.New("invalid template name")

// Template is a named rule list
type Template struct {
	Name  string            `json:"name"`
	Rules []json.RawMessage `json:"rules"`
}

// RuleSet parses the template rules
func (t Template) RuleSet() (model.RuleSet, error) {
	return model.RulesFromRaw(t.Name, t.Rules)
}

// Repository stores templates by name
type Repository interface {
	List() ([]Template, error)
	Create(t Template) (Template, error)
	Get(name string) (Template, bool, error)
	Exists(name string) (bool, error)
	Delete(name string) (bool, error)
	Update(name string, t Template) (Template, error)
}

// FileRepository keeps one <name>.json file per template in a directory
type FileRepository struct {
	dir string
	mu  sync.RWMutex
}

// NewFileRepository creates a repository rooted at dir
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Dir returns the repository directory
func (r *FileRepository) Dir() string {
	return r.dir
}

func (r *FileRepository) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(r.dir, name+".json"), nil
}

// List returns every template sorted by name
func (r *FileRepository) List() ([]Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return nil, model.NewTemplateError("list", r.dir, err)
	}
	sort.Strings(paths)

	templates := make([]Template, 0, len(paths))
	for _, path := range paths {
		t, err := readTemplate(path)
		if err != nil {
			return nil, model.NewTemplateError("list", filepath.Base(path), err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// Create writes t, replacing any template with the same name
func (r *FileRepository) Create(t Template) (Template, error) {
	path, err := r.path(t.Name)
	if err != nil {
		return Template{}, model.NewTemplateError("create", t.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := writeTemplate(path, t); err != nil {
		return Template{}, model.NewTemplateError("create", t.Name, err)
	}
	return t, nil
}

// Get loads the named template
func (r *FileRepository) Get(name string) (Template, bool, error) {
	path, err := r.path(name)
	if err != nil {
		return Template{}, false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, err := readTemplate(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Template{}, false, nil
	}
	if err != nil {
		return Template{}, false, model.NewTemplateError("get", name, err)
	}
	return t, true, nil
}

// Exists reports whether the named template is stored
func (r *FileRepository) Exists(name string) (bool, error) {
	path, err := r.path(name)
	if err != nil {
		return false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, model.NewTemplateError("exists", name, err)
	}
}

// Delete removes the named template and reports whether it existed
func (r *FileRepository) Delete(name string) (bool, error) {
	path, err := r.path(name)
	if err != nil {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	err = os.Remove(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, model.NewTemplateError("delete", name, err)
	}
}

// Update stores t under its own name. When the name changes the file of the
// old name is renamed first.
func (r *FileRepository) Update(name string, t Template) (Template, error) {
	oldPath, err := r.path(name)
	if err != nil {
		return Template{}, model.NewTemplateError("update", name, err)
	}
	newPath, err := r.path(t.Name)
	if err != nil {
		return Template{}, model.NewTemplateError("update", t.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if oldPath != newPath {
		if err := os.Rename(oldPath, newPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Template{}, model.NewTemplateError("update", name, err)
		}
	}
	if err := writeTemplate(newPath, t); err != nil {
		return Template{}, model.NewTemplateError("update", t.Name, err)
	}
	return t, nil
}

func readTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, err
	}
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return Template{}, err
	}
	if t.Rules == nil {
		t.Rules = []json.RawMessage{}
	}
	return t, nil
}

func writeTemplate(path string, t Template) error {
	if t.Rules == nil {
		t.Rules = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(t, "", "    ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
