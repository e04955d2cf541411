package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileTemplate is the on-disk shape. The form section is decoded generically
// and re-read through the JSON field names so YAML files use the same keys
// as the API.
type fileTemplate struct {
	ID          string                 `yaml:"id"`
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Category    string                 `yaml:"category"`
	Form        map[string]interface{} `yaml:"form"`
}

// LoadFile reads one YAML template. The id defaults to the file name
// without extension.
func LoadFile(path string) (Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Template{}, err
	}
	var ft fileTemplate
	if err := yaml.Unmarshal(raw, &ft); err != nil {
		return Template{}, fmt.Errorf("%s: %w", path, err)
	}
	if ft.ID == "" {
		ft.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if strings.TrimSpace(ft.Name) == "" {
		return Template{}, fmt.Errorf("%s: %w: name required", path, ErrInvalid)
	}
	t := Template{ID: ft.ID, Name: ft.Name, Description: ft.Description, Category: ft.Category, Builtin: true}
	if ft.Form != nil {
		fj, err := json.Marshal(ft.Form)
		if err != nil {
			return Template{}, fmt.Errorf("%s: %w", path, err)
		}
		if err := json.Unmarshal(fj, &t.Form); err != nil {
			return Template{}, fmt.Errorf("%s: form: %w", path, err)
		}
	}
	t.Form.Normalize()
	return t, nil
}

// LoadDir reads every *.yaml and *.yml file in dir, sorted by file name.
// Any bad file fails the whole load.
func LoadDir(dir string) ([]Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isTemplateFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]Template, 0, len(names))
	seen := map[string]string{}
	for _, n := range names {
		t, err := LoadFile(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: id %q used by %s and %s", ErrInvalid, t.ID, prev, n)
		}
		seen[t.ID] = n
		out = append(out, t)
	}
	return out, nil
}

func isTemplateFile(name string) bool {
	name = filepath.Base(name)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return !strings.HasPrefix(name, ".")
	}
	return false
}
