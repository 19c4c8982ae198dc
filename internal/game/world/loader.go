package world

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// yamlWorldFile is the top-level YAML structure for world files.
type yamlWorldFile struct {
	Locations []yamlLocation `yaml:"locations"`
}

// yamlLocation is the YAML representation of a location.
type yamlLocation struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Type        string             `yaml:"type"`
	Exits       []yamlExit         `yaml:"exits"`
	Affinities  map[string]float64 `yaml:"magical_affinities"`
	Properties  map[string]string  `yaml:"properties"`
}

// yamlExit is the YAML representation of an exit.
type yamlExit struct {
	Direction string `yaml:"direction"`
	Target    string `yaml:"target"`
	Hidden    bool   `yaml:"hidden"`
}

// LoadFile reads and validates a single world YAML file.
//
// Precondition: path must point to a valid YAML world file.
// Postcondition: Returns validated Locations or a non-nil error.
func LoadFile(path string) ([]*Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("world: reading file %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates locations from YAML bytes.
func LoadBytes(data []byte) ([]*Location, error) {
	var doc yamlWorldFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("world: parsing locations: %w", err)
	}

	out := make([]*Location, 0, len(doc.Locations))
	for _, yl := range doc.Locations {
		loc := &Location{
			ID:                yl.ID,
			Name:              yl.Name,
			Description:       yl.Description,
			Type:              LocationType(yl.Type),
			MagicalAffinities: yl.Affinities,
			Properties:        yl.Properties,
		}
		if loc.Type == "" {
			loc.Type = TypeGeneric
		}
		for _, ye := range yl.Exits {
			loc.Exits = append(loc.Exits, Exit{
				Direction: ye.Direction,
				Target:    ye.Target,
				Hidden:    ye.Hidden,
			})
		}
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("world: invalid location: %w", err)
		}
		out = append(out, loc)
	}
	return out, nil
}

// LoadDir loads every *.yaml and *.yml world file from dir.
//
// Postcondition: Returns all locations across all files, or the first error.
func LoadDir(dir string) ([]*Location, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("world: reading directory %s: %w", dir, err)
	}

	var all []*Location
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		locs, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		all = append(all, locs...)
	}
	return all, nil
}
