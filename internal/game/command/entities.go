package command

import (
	"strings"

	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/world"
)

// Entity labels attached by the tagger.
const (
	LabelItem     = "item"
	LabelLocation = "location"
)

// EntityTagger recognizes known item and location names inside free text.
// It is read-only over the catalog and world data, so one tagger is shared by
// all sessions.
type EntityTagger struct {
	catalogFn func() *catalog.Catalog
	worlds    *world.Manager
}

// NewEntityTagger builds a tagger over the (hot-swappable) catalog and the
// world manager. catalogFn is called per input so catalog swaps take effect
// immediately.
func NewEntityTagger(catalogFn func() *catalog.Catalog, worlds *world.Manager) *EntityTagger {
	return &EntityTagger{catalogFn: catalogFn, worlds: worlds}
}

// Tag returns the entities mentioned in input, longest match first per
// position. Matching is case-insensitive on whole item and location names.
func (t *EntityTagger) Tag(input string) []Entity {
	lowered := strings.ToLower(input)
	var found []Entity
	seen := make(map[string]bool)

	add := func(text, label string) {
		key := label + ":" + text
		if !seen[key] {
			seen[key] = true
			found = append(found, Entity{Text: text, Label: label})
		}
	}

	if cat := t.catalogFn(); cat != nil {
		for _, def := range cat.All() {
			name := strings.ToLower(def.Name)
			if name != "" && strings.Contains(lowered, name) {
				add(name, LabelItem)
			}
		}
	}
	if t.worlds != nil {
		for id, name := range t.worlds.Names() {
			lowName := strings.ToLower(name)
			if lowName != "" && strings.Contains(lowered, lowName) {
				add(lowName, LabelLocation)
			} else if strings.Contains(lowered, strings.ToLower(id)) {
				add(strings.ToLower(id), LabelLocation)
			}
		}
	}
	return found
}

// matchesTarget reports whether any tagged entity covers the parsed target,
// in either direction ("rusty sword" covers target "sword").
func matchesTarget(entities []Entity, target string) bool {
	if target == "" {
		return false
	}
	lowered := strings.ToLower(target)
	for _, e := range entities {
		if strings.Contains(lowered, e.Text) || strings.Contains(e.Text, lowered) {
			return true
		}
	}
	return false
}
