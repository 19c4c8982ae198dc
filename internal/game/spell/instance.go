package spell

import (
	"sort"

	"github.com/cory-johannsen/fablemud/internal/game/world"
)

// AffinityThreshold is the minimum location affinity at which an element is
// folded into spells cast there.
const AffinityThreshold = 0.5

// Modifications describes how a location modulates a spell instance:
// scalar multipliers for power, cost, and time; enum-index deltas for
// duration, range, and area; and elements added by the location.
type Modifications struct {
	PowerMultiplier float64  `yaml:"power_multiplier"`
	CostMultiplier  float64  `yaml:"cost_multiplier"`
	TimeMultiplier  float64  `yaml:"time_multiplier"`
	DurationShift   int      `yaml:"duration_shift"`
	RangeShift      int      `yaml:"range_shift"`
	AreaShift       int      `yaml:"area_shift"`
	AddedElements   []string `yaml:"added_elements"`
}

// Identity returns the modifications that leave a template unchanged.
func Identity() Modifications {
	return Modifications{PowerMultiplier: 1, CostMultiplier: 1, TimeMultiplier: 1}
}

// Compose layers other on top of m: multipliers multiply, shifts add, and
// added elements union.
func (m Modifications) Compose(other Modifications) Modifications {
	out := m
	out.PowerMultiplier *= nonZero(other.PowerMultiplier)
	out.CostMultiplier *= nonZero(other.CostMultiplier)
	out.TimeMultiplier *= nonZero(other.TimeMultiplier)
	out.DurationShift += other.DurationShift
	out.RangeShift += other.RangeShift
	out.AreaShift += other.AreaShift
	out.AddedElements = unionElements(m.AddedElements, other.AddedElements)
	return out
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// Instance is a spell template modulated by a caster's location.
type Instance struct {
	TemplateID  string   `json:"template_id"`
	Name        string   `json:"name"`
	Elements    []string `json:"elements"`
	Power       float64  `json:"power"`
	Duration    string   `json:"duration"`
	Range       string   `json:"range"`
	Area        string   `json:"area"`
	ManaCost    float64  `json:"mana_cost"`
	CastingTime float64  `json:"casting_time"`
	LocationID  string   `json:"location_id"`
}

// AffinityModifications derives the built-in modifications for a location:
// each dominant element is added, and strong affinities amplify power.
//
// Postcondition: the result is deterministic for a given location.
func AffinityModifications(loc *world.Location) Modifications {
	m := Identity()
	if loc == nil {
		return m
	}
	elements := loc.DominantElements(AffinityThreshold)
	sort.Strings(elements)
	m.AddedElements = elements
	for _, elem := range elements {
		// Each dominant element past the threshold adds up to +20% power.
		m.PowerMultiplier *= 1 + (loc.MagicalAffinities[elem]-AffinityThreshold)*0.4
	}
	return m
}

// Instantiate derives a spell instance for a caster at loc by composing the
// given modification layers over the identity.
//
// Precondition: t must be non-nil and valid.
// Postcondition: tier shifts are clamped to enum bounds; the instance shares
// no mutable state with the template.
func Instantiate(t *Template, loc *world.Location, layers ...Modifications) Instance {
	m := Identity()
	for _, layer := range layers {
		m = m.Compose(layer)
	}

	locID := ""
	if loc != nil {
		locID = loc.ID
	}
	return Instance{
		TemplateID:  t.ID,
		Name:        t.Name,
		Elements:    unionElements(t.Elements, m.AddedElements),
		Power:       t.BasePower * m.PowerMultiplier,
		Duration:    shiftTier(DurationTiers, t.BaseDuration, m.DurationShift),
		Range:       shiftTier(RangeTiers, t.BaseRange, m.RangeShift),
		Area:        shiftTier(AreaTiers, t.BaseArea, m.AreaShift),
		ManaCost:    t.ManaCost * m.CostMultiplier,
		CastingTime: t.CastingTime * m.TimeMultiplier,
		LocationID:  locID,
	}
}

// unionElements merges two element lists preserving first-seen order.
func unionElements(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, lists := range [][]string{a, b} {
		for _, e := range lists {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}
