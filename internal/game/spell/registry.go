package spell

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Registry holds all loaded spell templates indexed by ID.
// Templates are immutable once registered.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register adds t to the registry.
//
// Precondition: t must be non-nil and valid.
// Postcondition: Template(t.ID) returns t; returns an error on a duplicate ID.
func (r *Registry) Register(t *Template) error {
	if _, exists := r.templates[t.ID]; exists {
		return fmt.Errorf("spell: Registry.Register: template ID %q already registered", t.ID)
	}
	r.templates[t.ID] = t
	return nil
}

// Template returns the template for the given id and whether it was found.
func (r *Registry) Template(id string) (*Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// All returns all registered templates in unspecified order.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	return out
}

// yamlSpellFile is the top-level YAML structure for spell files.
type yamlSpellFile struct {
	Spells []*Template `yaml:"spells"`
}

// LoadDir reads all *.yaml and *.yml files from dir, parses each as spell
// templates, validates, and registers them.
//
// Postcondition: returns the number of templates registered, or the first
// encountered error.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("spell: LoadDir: cannot read directory %q: %w", dir, err)
	}

	total := 0
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return total, fmt.Errorf("spell: LoadDir: cannot read %q: %w", path, err)
		}
		var doc yamlSpellFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return total, fmt.Errorf("spell: LoadDir: cannot parse %q: %w", path, err)
		}
		for _, t := range doc.Spells {
			if err := t.Validate(); err != nil {
				return total, fmt.Errorf("spell: LoadDir: invalid template in %q: %w", path, err)
			}
			if err := r.Register(t); err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}
