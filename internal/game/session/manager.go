package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/equipment"
	"github.com/cory-johannsen/fablemud/internal/game/inventory"
)

// Manager tracks all active player states and location occupancy.
// All methods are safe for concurrent use; within one session, commands are
// processed to completion one at a time by the caller.
type Manager struct {
	startLocation string

	mu           sync.RWMutex
	players      map[string]*PlayerState
	locationSets map[string]map[string]bool // location id → set of player ids
}

// NewManager creates an empty session Manager.
//
// Precondition: startLocation must be a valid location ID.
func NewManager(startLocation string) *Manager {
	return &Manager{
		startLocation: startLocation,
		players:       make(map[string]*PlayerState),
		locationSets:  make(map[string]map[string]bool),
	}
}

// Player returns the state for the given entity, creating it on first access
// with default capacities at the start location.
//
// Postcondition: the returned state is registered and its location occupancy
// is tracked.
func (m *Manager) Player(playerID string) *PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.players[playerID]; ok {
		return p
	}

	p := &PlayerState{
		PlayerID:        playerID,
		CurrentLocation: m.startLocation,
		Inventory:       inventory.New(DefaultCapSlots, DefaultCapWeight),
		Equipment:       equipment.NewManager(),
		Stats:           make(map[string]int),
		Discovered:      map[string]bool{m.startLocation: true},
		CustomData:      make(map[string]any),
	}
	m.players[playerID] = p
	m.track(playerID, p.CurrentLocation)
	return p
}

// Lookup returns the state for the given entity without creating it.
func (m *Manager) Lookup(playerID string) (*PlayerState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[playerID]
	return p, ok
}

// Move relocates a player and records the destination as discovered.
//
// Postcondition: Returns the old location ID, or an error when the player is
// unknown.
func (m *Manager) Move(playerID, newLocation string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[playerID]
	if !ok {
		return "", fmt.Errorf("session: Move: player %q not found", playerID)
	}

	old := p.CurrentLocation
	if set, ok := m.locationSets[old]; ok {
		delete(set, playerID)
		if len(set) == 0 {
			delete(m.locationSets, old)
		}
	}
	p.CurrentLocation = newLocation
	p.Discovered[newLocation] = true
	m.track(playerID, newLocation)
	return old, nil
}

// track adds a player to a location's occupancy set. Caller holds the lock.
func (m *Manager) track(playerID, locationID string) {
	if m.locationSets[locationID] == nil {
		m.locationSets[locationID] = make(map[string]bool)
	}
	m.locationSets[locationID][playerID] = true
}

// PlayersAt returns the IDs of all players at the given location.
func (m *Manager) PlayersAt(locationID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids, ok := m.locationSets[locationID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	return out
}

// PlayerCount returns the number of active player states.
func (m *Manager) PlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

// Snapshots returns the persistence view of every player, keyed by id.
// Discovered locations are transported as a sorted list.
func (m *Manager) Snapshots() map[string]Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Snapshot, len(m.players))
	for id, p := range m.players {
		out[id] = snapshotPlayer(p)
	}
	return out
}

// SnapshotPlayer returns the persistence view of one player.
//
// Postcondition: ok is false when the player is unknown.
func (m *Manager) SnapshotPlayer(playerID string) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[playerID]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotPlayer(p), true
}

// snapshotPlayer builds the persistence view of one player. The stats and
// custom-data maps are copied so a later command cannot mutate a snapshot
// already handed to the persistence layer.
func snapshotPlayer(p *PlayerState) Snapshot {
	discovered := make([]string, 0, len(p.Discovered))
	for loc := range p.Discovered {
		discovered = append(discovered, loc)
	}
	sort.Strings(discovered)
	stats := make(map[string]int, len(p.Stats))
	for k, v := range p.Stats {
		stats[k] = v
	}
	custom := make(map[string]any, len(p.CustomData))
	for k, v := range p.CustomData {
		custom[k] = v
	}
	return Snapshot{
		PlayerID:        p.PlayerID,
		CurrentLocation: p.CurrentLocation,
		Inventory:       p.Inventory.Snapshot(),
		EquippedItems:   p.Equipment.Snapshot(),
		Stats:           stats,
		Discovered:      discovered,
		LastSave:        p.LastSave,
		CustomData:      custom,
	}
}

// Restore replaces all player states with the given snapshots.
//
// Precondition: cat is non-nil.
// Postcondition: on success the manager mirrors the snapshots, with the
// discovered list reconstituted as a set; on error the manager is unchanged.
func (m *Manager) Restore(snaps map[string]Snapshot, cat *catalog.Catalog) error {
	players := make(map[string]*PlayerState, len(snaps))
	locationSets := make(map[string]map[string]bool)

	for id, snap := range snaps {
		inv, err := inventory.FromSnapshot(snap.Inventory, cat)
		if err != nil {
			return fmt.Errorf("session: Restore: player %q: %w", id, err)
		}
		eq, err := equipment.FromSnapshot(snap.EquippedItems)
		if err != nil {
			return fmt.Errorf("session: Restore: player %q: %w", id, err)
		}
		discovered := make(map[string]bool, len(snap.Discovered))
		for _, loc := range snap.Discovered {
			discovered[loc] = true
		}
		stats := snap.Stats
		if stats == nil {
			stats = make(map[string]int)
		}
		custom := snap.CustomData
		if custom == nil {
			custom = make(map[string]any)
		}
		p := &PlayerState{
			PlayerID:        snap.PlayerID,
			CurrentLocation: snap.CurrentLocation,
			Inventory:       inv,
			Equipment:       eq,
			Stats:           stats,
			Discovered:      discovered,
			LastSave:        snap.LastSave,
			CustomData:      custom,
		}
		players[id] = p
		if locationSets[p.CurrentLocation] == nil {
			locationSets[p.CurrentLocation] = make(map[string]bool)
		}
		locationSets[p.CurrentLocation][id] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = players
	m.locationSets = locationSets
	return nil
}

// MarkSaved records the save time for every player.
func (m *Manager) MarkSaved(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		p.LastSave = t
	}
}
