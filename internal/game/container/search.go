package container

// SearchResult reports the outcome of searching a location.
type SearchResult struct {
	// Discovered lists containers newly revealed by this search.
	Discovered []*Data `json:"discovered"`
	// Visible lists every container visible after the search, including ones
	// that were already revealed.
	Visible []*Data `json:"visible"`
	// SpecialDiscoveries carries type-specific search hints.
	SpecialDiscoveries []string `json:"special_discoveries"`
}

// SearchLocation reveals every hidden container at the location whose
// discovery difficulty does not exceed the searcher's skill.
//
// Postcondition: each revealed container has IsHidden false; a repeated
// search reports previously revealed containers as visible, not discovered.
func (s *System) SearchLocation(locationID string, searchSkill int) SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result SearchResult
	for _, d := range s.byLocation[locationID] {
		if d.IsHidden && d.DiscoveryDifficulty <= searchSkill {
			d.IsHidden = false
			result.Discovered = append(result.Discovered, d)
			if hint := d.Behavior().SpecialSearch; hint != "" {
				result.SpecialDiscoveries = append(result.SpecialDiscoveries, hint)
			}
		}
		if !d.IsHidden {
			result.Visible = append(result.Visible, d)
		}
	}
	return result
}
