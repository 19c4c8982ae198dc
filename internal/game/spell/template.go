// Package spell provides the immutable spell template registry and the
// deterministic derivation of location-modulated spell instances. Location
// rules may come from a sandboxed Lua hook or from the built-in affinity
// derivation.
package spell

import (
	"fmt"
)

// Tier enumerations for duration, range, and area. Modifications shift the
// enum index; shifts are clamped to the enum bounds.
var (
	DurationTiers = []string{"instant", "brief", "short", "medium", "long", "lasting"}
	RangeTiers    = []string{"self", "touch", "near", "medium", "far", "sight"}
	AreaTiers     = []string{"single", "small", "medium", "large", "huge"}
)

// Template is an immutable spell definition loaded from YAML.
type Template struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Elements       []string `yaml:"elements"`
	Purpose        string   `yaml:"purpose"`
	Complexity     int      `yaml:"complexity"`
	BasePower      float64  `yaml:"base_power"`
	BaseDuration   string   `yaml:"base_duration"`
	BaseRange      string   `yaml:"base_range"`
	BaseArea       string   `yaml:"base_area"`
	ManaCost       float64  `yaml:"mana_cost"`
	FocusRequired  bool     `yaml:"focus_required"`
	CastingTime    float64  `yaml:"casting_time"`
	Components     []string `yaml:"components"`
	RitualRequired bool     `yaml:"ritual_required"`
	Tags           []string `yaml:"tags"`
}

// Validate checks template invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("spell template id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("spell template %q: name must not be empty", t.ID)
	}
	if t.BasePower < 0 || t.ManaCost < 0 || t.CastingTime < 0 {
		return fmt.Errorf("spell template %q: power, cost, and time must be >= 0", t.ID)
	}
	for _, pair := range []struct {
		value string
		tiers []string
		field string
	}{
		{t.BaseDuration, DurationTiers, "base_duration"},
		{t.BaseRange, RangeTiers, "base_range"},
		{t.BaseArea, AreaTiers, "base_area"},
	} {
		if tierIndex(pair.tiers, pair.value) < 0 {
			return fmt.Errorf("spell template %q: %s %q is not a valid tier", t.ID, pair.field, pair.value)
		}
	}
	return nil
}

// tierIndex returns the index of value in tiers, or -1.
func tierIndex(tiers []string, value string) int {
	for i, t := range tiers {
		if t == value {
			return i
		}
	}
	return -1
}

// shiftTier moves an index within tiers by delta, clamped to bounds.
func shiftTier(tiers []string, value string, delta int) string {
	i := tierIndex(tiers, value)
	if i < 0 {
		i = 0
	}
	i += delta
	if i < 0 {
		i = 0
	}
	if i >= len(tiers) {
		i = len(tiers) - 1
	}
	return tiers[i]
}
