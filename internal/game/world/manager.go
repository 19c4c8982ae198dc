package world

import (
	"fmt"
	"sync"
)

// Manager provides thread-safe access to the loaded world.
// Locations are read-only after construction.
type Manager struct {
	mu        sync.RWMutex
	locations map[string]*Location
	start     string
}

// NewManager creates a Manager from the given locations.
//
// Precondition: locations must be non-empty; the first location is the
// default starting point.
// Postcondition: Returns a Manager with all locations indexed by ID, or an
// error on duplicate IDs.
func NewManager(locations []*Location) (*Manager, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("world: NewManager: at least one location is required")
	}
	m := &Manager{locations: make(map[string]*Location, len(locations))}
	for _, loc := range locations {
		if _, exists := m.locations[loc.ID]; exists {
			return nil, fmt.Errorf("world: NewManager: duplicate location ID %q", loc.ID)
		}
		m.locations[loc.ID] = loc
	}
	m.start = locations[0].ID
	return m, nil
}

// ValidateExits checks that every exit target resolves to a known location.
//
// Postcondition: Returns nil if all exits resolve, or an error naming the
// first dangling target.
func (m *Manager) ValidateExits() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations {
		for _, exit := range loc.Exits {
			if _, ok := m.locations[exit.Target]; !ok {
				return fmt.Errorf("world: location %q: exit %q targets unknown location %q",
					loc.ID, exit.Direction, exit.Target)
			}
		}
	}
	return nil
}

// Location returns the location with the given ID.
//
// Postcondition: Returns (location, true) if found, or (nil, false).
func (m *Manager) Location(id string) (*Location, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.locations[id]
	return loc, ok
}

// StartLocation returns the ID of the default starting location.
func (m *Manager) StartLocation() string {
	return m.start
}

// LocationIDs returns all known location IDs in unspecified order.
func (m *Manager) LocationIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.locations))
	for id := range m.locations {
		out = append(out, id)
	}
	return out
}

// Names returns display names of all locations keyed by ID, for the entity
// tagger's location vocabulary.
func (m *Manager) Names() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.locations))
	for id, loc := range m.locations {
		out[id] = loc.Name
	}
	return out
}
