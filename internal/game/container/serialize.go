package container

import (
	"fmt"

	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/inventory"
)

// State is the persistence view of one container and its holdings.
type State struct {
	Data     Data               `json:"data"`
	Holdings inventory.Snapshot `json:"holdings"`
}

// Snapshot returns the persistence view of every container in the system,
// keyed by container id.
//
// Postcondition: the returned map shares no mutable state with the system.
func (s *System) Snapshot() map[string]State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]State)
	for _, containers := range s.byLocation {
		for id, d := range containers {
			out[id] = State{
				Data:     *d,
				Holdings: s.holdings[id].Snapshot(),
			}
		}
	}
	return out
}

// Restore replaces the system's containers with the given snapshot.
//
// Precondition: cat is non-nil.
// Postcondition: on success the system mirrors the snapshot, including the
// one-ground-per-location index; on error the system is unchanged.
func (s *System) Restore(states map[string]State, cat *catalog.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byLocation := make(map[string]map[string]*Data)
	holdings := make(map[string]*inventory.Inventory)
	ground := make(map[string]string)

	for id, st := range states {
		d := st.Data
		if d.ID != id {
			return fmt.Errorf("container: Restore: state key %q does not match container id %q", id, d.ID)
		}
		inv, err := inventory.FromSnapshot(st.Holdings, cat)
		if err != nil {
			return fmt.Errorf("container: Restore: container %q: %w", id, err)
		}
		if byLocation[d.LocationID] == nil {
			byLocation[d.LocationID] = make(map[string]*Data)
		}
		byLocation[d.LocationID][id] = &d
		holdings[id] = inv
		if d.Type == TypeGround {
			if prev, dup := ground[d.LocationID]; dup {
				return fmt.Errorf("container: Restore: location %q has two ground containers (%q, %q)",
					d.LocationID, prev, id)
			}
			ground[d.LocationID] = id
		}
	}

	s.byLocation = byLocation
	s.holdings = holdings
	s.ground = ground
	return nil
}
