// Package container provides the per-location container system: the implicit
// ground container, named containers (chests, barrels, shops, altars) with
// lock, key, and hidden-discovery semantics, and type-specific behaviors.
package container

import (
	"strings"

	"github.com/google/uuid"
)

// Type classifies a container.
type Type string

// All container types.
const (
	TypeGround     Type = "ground"
	TypeChest      Type = "chest"
	TypeBarrel     Type = "barrel"
	TypeCorpse     Type = "corpse"
	TypeShop       Type = "shop"
	TypeNPC        Type = "npc"
	TypeBookshelf  Type = "bookshelf"
	TypeWeaponRack Type = "weapon_rack"
	TypeAltar      Type = "altar"
	TypeLoot       Type = "loot_container"
)

// Behavior describes the fixed, type-derived traits of a container.
type Behavior struct {
	// Lockable reports whether this container type can carry a lock at all.
	Lockable bool
	// DefaultCapSlots and DefaultCapWeight apply when no explicit caps are given.
	DefaultCapSlots  int
	DefaultCapWeight float64
	// AppearanceHint is the short phrase used when describing the container.
	AppearanceHint string
	// LockModifier adjusts the effective lock difficulty for this type.
	LockModifier int
	// RestrictedTypes limits which item types the container accepts; empty
	// means unrestricted. Values are lowercased item type tags.
	RestrictedTypes []string
	// SpecialSearch is an extra hint surfaced by search, when present.
	SpecialSearch string
	// AlwaysHidden forces IsHidden at creation.
	AlwaysHidden bool
}

// behaviors is the fixed behavior table per container type.
var behaviors = map[Type]Behavior{
	TypeChest: {
		Lockable: true, DefaultCapSlots: 20, DefaultCapWeight: 200,
		AppearanceHint: "a wooden chest",
	},
	TypeBarrel: {
		Lockable: false, DefaultCapSlots: 15, DefaultCapWeight: 150,
		AppearanceHint: "a storage barrel", LockModifier: -5,
	},
	TypeBookshelf: {
		Lockable: true, DefaultCapSlots: 30, DefaultCapWeight: 50,
		AppearanceHint: "a bookshelf with compartments", LockModifier: 5,
		SpecialSearch: "Some books look like they could conceal a compartment.",
	},
	TypeWeaponRack: {
		Lockable: true, DefaultCapSlots: 10, DefaultCapWeight: 100,
		AppearanceHint:  "a weapon rack",
		RestrictedTypes: []string{"weapon", "shield"},
	},
	TypeAltar: {
		Lockable: false, DefaultCapSlots: 5, DefaultCapWeight: 20,
		AppearanceHint: "a sacred altar", LockModifier: 10,
		SpecialSearch: "You feel you should approach the altar with reverence.",
	},
	TypeLoot: {
		Lockable: true, DefaultCapSlots: 12, DefaultCapWeight: 100,
		AppearanceHint: "a hidden container", LockModifier: 3,
		AlwaysHidden: true,
	},
}

// defaultBehavior applies to container types absent from the table.
var defaultBehavior = Behavior{
	Lockable: true, DefaultCapSlots: 10, DefaultCapWeight: 50,
	AppearanceHint: "a container",
}

// BehaviorFor returns the fixed behavior for a container type.
func BehaviorFor(t Type) Behavior {
	if b, ok := behaviors[t]; ok {
		return b
	}
	return defaultBehavior
}

// Data holds the state of one container at a location. The container's item
// holdings live in a separate Inventory owned by the System.
type Data struct {
	ID          string `json:"container_id"`
	Type        Type   `json:"container_type"`
	LocationID  string `json:"location_id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	CapSlots  int     `json:"capacity_slots,omitempty"`
	CapWeight float64 `json:"capacity_weight,omitempty"`

	IsLocked       bool   `json:"is_locked"`
	LockDifficulty int    `json:"lock_difficulty"`
	KeyRequired    string `json:"key_required,omitempty"`

	IsHidden            bool `json:"is_hidden"`
	DiscoveryDifficulty int  `json:"discovery_difficulty"`

	OwnerID string `json:"owner_id,omitempty"`
}

// Behavior returns the fixed type-derived behavior for this container.
func (d *Data) Behavior() Behavior {
	return BehaviorFor(d.Type)
}

// Accepts reports whether the container's type restriction admits the given
// item type tag.
func (d *Data) Accepts(itemType string) bool {
	restricted := d.Behavior().RestrictedTypes
	if len(restricted) == 0 {
		return true
	}
	itemType = strings.ToLower(itemType)
	for _, t := range restricted {
		if t == itemType {
			return true
		}
	}
	return false
}

// newContainerID derives a container id of the form
// "container_<location>_<8 hex>".
func newContainerID(locationID string) string {
	return "container_" + locationID + "_" + uuid.New().String()[:8]
}
