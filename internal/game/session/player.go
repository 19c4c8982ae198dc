// Package session provides per-entity player state tracking: current
// location, inventory, equipment, stats, and discovered locations. Sessions
// are created lazily on first access and live for the server session.
package session

import (
	"time"

	"github.com/cory-johannsen/fablemud/internal/game/equipment"
	"github.com/cory-johannsen/fablemud/internal/game/inventory"
)

// Default inventory capacities for newly created players.
const (
	DefaultCapSlots  = 30
	DefaultCapWeight = 100.0
)

// PlayerState is one entity's mutable world state.
type PlayerState struct {
	// PlayerID is the unique entity identifier.
	PlayerID string
	// CurrentLocation is the ID of the location the player occupies.
	CurrentLocation string
	// Inventory is the player's item holdings.
	Inventory *inventory.Inventory
	// Equipment holds the player's equipped items.
	Equipment *equipment.Manager
	// Stats holds free-form numeric attributes (search_skill, level, ...).
	Stats map[string]int
	// Discovered is the set of location IDs the player has visited.
	Discovered map[string]bool
	// LastSave is the time of the player's most recent persistence write.
	LastSave time.Time
	// CustomData carries quest and extension state opaque to the core.
	CustomData map[string]any
}

// Stat returns a named stat, or 0 when unset.
func (p *PlayerState) Stat(name string) int {
	return p.Stats[name]
}

// Discover records a location as visited.
//
// Postcondition: Discovered contains locationID.
func (p *PlayerState) Discover(locationID string) {
	p.Discovered[locationID] = true
}

// Snapshot is the persistence view of a PlayerState.
type Snapshot struct {
	PlayerID        string                   `json:"player_id"`
	CurrentLocation string                   `json:"current_location"`
	Inventory       inventory.Snapshot       `json:"inventory"`
	EquippedItems   []equipment.EquippedItem `json:"equipped_items"`
	Stats           map[string]int           `json:"stats,omitempty"`
	Discovered      []string                 `json:"discovered_locations"`
	LastSave        time.Time                `json:"last_save"`
	CustomData      map[string]any           `json:"custom_data,omitempty"`
}
