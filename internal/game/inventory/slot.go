// Package inventory provides stack-packed item containers with slot and
// weight capacities. An Inventory is owned by exactly one entity (a player,
// an NPC, or a location container) and is mutated only through the facade.
package inventory

// Slot is a row in an Inventory holding one item id and a quantity.
// Two slots may share a row (stack) only when they hold the same item id and
// neither carries instance properties.
type Slot struct {
	ItemID        string         `json:"item_id"`
	Quantity      int            `json:"quantity"`
	InstanceProps map[string]any `json:"instance_properties,omitempty"`
}

// HasInstanceProps reports whether the slot carries any instance properties.
func (s *Slot) HasInstanceProps() bool {
	return len(s.InstanceProps) > 0
}

// StackableWith reports whether other may share a stack row with s.
//
// Postcondition: true iff both slots hold the same item id and neither has
// instance properties.
func (s *Slot) StackableWith(other *Slot) bool {
	return s.ItemID == other.ItemID && !s.HasInstanceProps() && !other.HasInstanceProps()
}

// Split carves n units off the slot into a new slot.
//
// Postcondition: returns nil when n <= 0 or n >= Quantity; otherwise s keeps
// Quantity-n and the returned slot holds n with no instance properties copied.
func (s *Slot) Split(n int) *Slot {
	if n <= 0 || n >= s.Quantity {
		return nil
	}
	s.Quantity -= n
	return &Slot{ItemID: s.ItemID, Quantity: n}
}
