package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// itemFile is the accepted on-disk shape: either a bare list of records or a
// document with an "items" key.
type itemFile struct {
	Items []*ItemDef `yaml:"items" json:"items"`
}

// LoadDir reads all *.yaml, *.yml, and *.json files from dir, parses each as
// item definitions, normalizes and validates them, and registers them in c.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns the number of items registered, or the first
// encountered error. Malformed input is the only failure mode.
func (c *Catalog) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("catalog: LoadDir: cannot read directory %q: %w", dir, err)
	}

	total := 0
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml" && ext != ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		n, err := c.LoadFile(path)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// LoadFile parses a single YAML or JSON item file and registers its contents.
//
// Postcondition: every record in the file is registered, or an error is
// returned and no further records from the file are registered.
func (c *Catalog) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("catalog: LoadFile: cannot read %q: %w", path, err)
	}

	defs, err := parseItems(data, filepath.Ext(path))
	if err != nil {
		return 0, fmt.Errorf("catalog: LoadFile: cannot parse %q: %w", path, err)
	}

	for i, d := range defs {
		d.Normalize()
		if err := d.Validate(); err != nil {
			return i, fmt.Errorf("catalog: LoadFile: invalid item %d in %q: %w", i, path, err)
		}
		c.Register(d)
	}
	return len(defs), nil
}

// parseItems decodes data as a bare list or an {items: [...]} document.
func parseItems(data []byte, ext string) ([]*ItemDef, error) {
	if ext == ".json" {
		var list []*ItemDef
		if err := json.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		var doc itemFile
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.Items, nil
	}

	var list []*ItemDef
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc itemFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Items, nil
}
