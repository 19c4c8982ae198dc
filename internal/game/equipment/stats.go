package equipment

import "github.com/cory-johannsen/fablemud/internal/game/catalog"

// AggregateStats holds numeric bonuses folded across all equipped items.
type AggregateStats struct {
	Armor          int            `json:"armor"`
	Damage         int            `json:"damage"`
	Strength       int            `json:"strength"`
	Dexterity      int            `json:"dexterity"`
	Intelligence   int            `json:"intelligence"`
	Constitution   int            `json:"constitution"`
	Resistances    map[string]int `json:"resistances"`
	SpecialEffects []string       `json:"special_effects"`
}

// statFields are the numeric property keys folded into AggregateStats.
var statFields = []string{"armor", "damage", "strength", "dexterity", "intelligence", "constitution"}

// Stats folds numeric fields, resistances, and special effects across all
// equipped items' properties. Numeric fields accept a scalar or a
// {base, bonus} map, summing both parts when present.
//
// Precondition: cat is non-nil. Items missing from the catalog are skipped.
func (m *Manager) Stats(cat *catalog.Catalog) AggregateStats {
	agg := AggregateStats{Resistances: make(map[string]int)}
	for _, row := range m.All() {
		def, ok := cat.ByID(row.ItemID)
		if !ok {
			continue
		}
		for _, field := range statFields {
			if v, ok := def.Prop(field); ok {
				addStat(&agg, field, numericValue(v))
			}
		}
		if raw, ok := def.Prop("resistances"); ok {
			if res, ok := raw.(map[string]any); ok {
				for k, v := range res {
					agg.Resistances[k] += int(asFloat(v))
				}
			}
		}
		if raw, ok := def.Prop("special_effects"); ok {
			if list, ok := raw.([]any); ok {
				for _, v := range list {
					if s, ok := v.(string); ok {
						agg.SpecialEffects = append(agg.SpecialEffects, s)
					}
				}
			}
		}
	}
	return agg
}

// numericValue extracts an int from a scalar or a {base, bonus} shaped map.
func numericValue(v any) int {
	if shaped, ok := v.(map[string]any); ok {
		total := 0.0
		if base, ok := shaped["base"]; ok {
			total += asFloat(base)
		}
		if bonus, ok := shaped["bonus"]; ok {
			total += asFloat(bonus)
		}
		return int(total)
	}
	return int(asFloat(v))
}

// asFloat coerces the numeric types YAML and JSON decoders produce.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	default:
		return 0
	}
}

func addStat(agg *AggregateStats, field string, v int) {
	switch field {
	case "armor":
		agg.Armor += v
	case "damage":
		agg.Damage += v
	case "strength":
		agg.Strength += v
	case "dexterity":
		agg.Dexterity += v
	case "intelligence":
		agg.Intelligence += v
	case "constitution":
		agg.Constitution += v
	}
}
