package inventory

import (
	"fmt"

	"github.com/cory-johannsen/fablemud/internal/game/catalog"
)

// Snapshot is the persistence view of an Inventory.
type Snapshot struct {
	CapSlots  int     `json:"capacity_slots,omitempty"`
	CapWeight float64 `json:"capacity_weight,omitempty"`
	Slots     []Slot  `json:"slots"`
}

// Snapshot returns the persistence view of the inventory.
//
// Postcondition: the returned value shares no mutable state with inv.
func (inv *Inventory) Snapshot() Snapshot {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return Snapshot{
		CapSlots:  inv.CapSlots,
		CapWeight: inv.CapWeight,
		Slots:     inv.allItems(),
	}
}

// FromSnapshot reconstructs an Inventory from a persistence snapshot.
// Weight is recomputed from the catalog, never trusted from the snapshot.
//
// Precondition: cat is non-nil.
// Postcondition: returns an error when a slot references an unknown item or
// carries a non-positive quantity; on success all caches are consistent.
func FromSnapshot(snap Snapshot, cat *catalog.Catalog) (*Inventory, error) {
	inv := New(snap.CapSlots, snap.CapWeight)
	for i, s := range snap.Slots {
		if s.Quantity <= 0 {
			return nil, fmt.Errorf("inventory: FromSnapshot: slot %d has quantity %d", i, s.Quantity)
		}
		def, ok := cat.ByID(s.ItemID)
		if !ok {
			return nil, fmt.Errorf("inventory: FromSnapshot: slot %d references unknown item %q", i, s.ItemID)
		}
		inv.unitWeights[s.ItemID] = def.Weight
		inv.slots = append(inv.slots, Slot{
			ItemID:        s.ItemID,
			Quantity:      s.Quantity,
			InstanceProps: s.InstanceProps,
		})
	}
	inv.rebuild()
	return inv, nil
}
