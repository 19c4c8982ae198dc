package equipment

import (
	"fmt"
	"sync"
	"time"

	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/inventory"
)

// EquippedItem records an item occupying an equipment slot.
type EquippedItem struct {
	ItemID        string         `json:"item_id"`
	Slot          Slot           `json:"slot"`
	EquippedAt    time.Time      `json:"equipped_at"`
	InstanceProps map[string]any `json:"instance_properties,omitempty"`
}

// Machine-readable failure reasons reported in Outcome.Reason.
const (
	ReasonNoValidSlots       = "no_valid_slots"
	ReasonInventoryFull      = "inventory_full"
	ReasonInventoryAddFailed = "inventory_add_failed"
	ReasonRemovalFailed      = "inventory_removal_failed"
	ReasonMissingParameters  = "missing_parameters"
	ReasonMissingItemData    = "missing_item_data"
	ReasonUnequipFailed      = "unequip_failed"
	ReasonNotOwned           = "not_owned"
	ReasonNotFound           = "not_found"
)

// Outcome is the result envelope of an equip or unequip operation.
type Outcome struct {
	Success bool
	Message string
	Reason  string
	// Slot is the slot acted upon, when the operation located one.
	Slot Slot
	// Unequipped lists items auto-unequipped to resolve conflicts.
	Unequipped []EquippedItem
}

// Manager holds one entity's equipped items, at most one per slot.
// Every equipped item must resolve in the catalog at use time. Methods are
// safe for concurrent use; a save snapshot may read while a command equips.
type Manager struct {
	mu    sync.RWMutex
	slots map[Slot]*EquippedItem
}

// NewManager returns an empty equipment Manager.
func NewManager() *Manager {
	return &Manager{slots: make(map[Slot]*EquippedItem)}
}

// At returns the item equipped in the given slot, or nil when empty.
func (m *Manager) At(slot Slot) *EquippedItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slots[slot]
}

// Find returns the first equipped row holding the given item id.
//
// Postcondition: ok is true iff the item is equipped in some slot.
func (m *Manager) Find(itemID string) (*EquippedItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(itemID)
}

// find is Find with the lock held.
func (m *Manager) find(itemID string) (*EquippedItem, bool) {
	for _, s := range AllSlots {
		if e := m.slots[s]; e != nil && e.ItemID == itemID {
			return e, true
		}
	}
	return nil, false
}

// All returns every equipped item in display-slot order.
func (m *Manager) All() []EquippedItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.all()
}

// all is All with the lock held.
func (m *Manager) all() []EquippedItem {
	var out []EquippedItem
	for _, s := range AllSlots {
		if e := m.slots[s]; e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// Equip moves one unit of itemID from inv into an equipment slot, resolving
// conflicts by unequipping through the same unequip path.
//
// Precondition: def, inv, and cat are non-nil; def.ID == itemID.
// Postcondition: on success the item occupies exactly one slot, inventory
// lost one unit, and Outcome.Unequipped lists any auto-unequipped items; on
// failure neither inventory nor equipment changed.
func (m *Manager) Equip(itemID string, def *catalog.ItemDef, inv *inventory.Inventory, cat *catalog.Catalog, preferred Slot) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !inv.Has(itemID, 1) {
		return Outcome{
			Message: fmt.Sprintf("You cannot equip %s because it is not in your inventory.", def.Name),
			Reason:  ReasonNotOwned,
		}
	}

	admissible := AdmissibleSlots(def)
	if len(admissible) == 0 {
		return Outcome{
			Message: fmt.Sprintf("You cannot equip %s because it is not equippable.", def.Name),
			Reason:  ReasonNoValidSlots,
		}
	}

	target := m.selectSlot(admissible, preferred)

	conflicts := m.conflictSlots(def, target, cat)
	var unequipped []EquippedItem
	for _, slot := range conflicts {
		occupant := m.slots[slot]
		if occupant == nil {
			continue
		}
		out := m.unequip("", slot, inv, cat)
		if !out.Success {
			return Outcome{
				Message: fmt.Sprintf("You cannot equip %s because %s could not be unequipped.", def.Name, occupant.ItemID),
				Reason:  ReasonUnequipFailed,
			}
		}
		unequipped = append(unequipped, *occupant)
	}

	if !inv.Remove(itemID, 1) {
		return Outcome{
			Message: fmt.Sprintf("You cannot equip %s because it could not be removed from your inventory.", def.Name),
			Reason:  ReasonRemovalFailed,
		}
	}

	m.slots[target] = &EquippedItem{
		ItemID:     itemID,
		Slot:       target,
		EquippedAt: time.Now().UTC(),
	}

	return Outcome{
		Success:    true,
		Message:    fmt.Sprintf("You equip %s on your %s.", def.Name, target.DisplayName()),
		Slot:       target,
		Unequipped: unequipped,
	}
}

// selectSlot picks the target slot: the preferred slot when admissible, the
// left ring finger when empty for rings, otherwise the first admissible slot.
// Caller holds the lock.
func (m *Manager) selectSlot(admissible []Slot, preferred Slot) Slot {
	for _, s := range admissible {
		if s == preferred {
			return s
		}
	}
	if len(admissible) == 2 && admissible[0] == SlotRingLeft && admissible[1] == SlotRingRight {
		if m.slots[SlotRingLeft] == nil {
			return SlotRingLeft
		}
		return SlotRingRight
	}
	return admissible[0]
}

// conflictSlots lists the slots that must be emptied before def can occupy
// target. A two-handed weapon entering the main hand claims the off hand; an
// off-hand item is blocked symmetrically by a two-handed main-hand weapon.
// Caller holds the lock.
func (m *Manager) conflictSlots(def *catalog.ItemDef, target Slot, cat *catalog.Catalog) []Slot {
	var conflicts []Slot
	if target == SlotMainHand && IsTwoHanded(def) {
		if m.slots[SlotOffHand] != nil {
			conflicts = append(conflicts, SlotOffHand)
		}
	}
	if target == SlotOffHand {
		if main := m.slots[SlotMainHand]; main != nil {
			if mainDef, ok := cat.ByID(main.ItemID); ok && IsTwoHanded(mainDef) {
				conflicts = append(conflicts, SlotMainHand)
			}
		}
	}
	if m.slots[target] != nil {
		conflicts = append(conflicts, target)
	}
	return conflicts
}

// Unequip moves an equipped item back into inv. Exactly one of itemID or
// slot must locate an equipped row.
//
// Postcondition: on success the slot is empty and inventory gained one unit;
// on failure (including inventory-add failure) the equipped row is intact.
func (m *Manager) Unequip(itemID string, slot Slot, inv *inventory.Inventory, cat *catalog.Catalog) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unequip(itemID, slot, inv, cat)
}

// unequip is Unequip with the lock held; Equip uses it for conflict slots.
func (m *Manager) unequip(itemID string, slot Slot, inv *inventory.Inventory, cat *catalog.Catalog) Outcome {
	row, out := m.locate(itemID, slot)
	if row == nil {
		return out
	}

	def, ok := cat.ByID(row.ItemID)
	if !ok {
		return Outcome{
			Message: fmt.Sprintf("You cannot unequip %s because its definition is missing.", row.ItemID),
			Reason:  ReasonMissingItemData,
		}
	}

	if !inv.CanAdd(row.ItemID, 1, def) {
		return Outcome{
			Message: fmt.Sprintf("You cannot unequip %s because your inventory is full.", def.Name),
			Reason:  ReasonInventoryFull,
			Slot:    row.Slot,
		}
	}

	// Delete first, then add; restore the row if the add fails anyway.
	delete(m.slots, row.Slot)
	if !inv.Add(row.ItemID, 1, cat) {
		m.slots[row.Slot] = row
		return Outcome{
			Message: fmt.Sprintf("You cannot unequip %s because it could not be returned to your inventory.", def.Name),
			Reason:  ReasonInventoryAddFailed,
			Slot:    row.Slot,
		}
	}

	return Outcome{
		Success: true,
		Message: fmt.Sprintf("You unequip %s from your %s.", def.Name, row.Slot.DisplayName()),
		Slot:    row.Slot,
	}
}

// locate resolves the equipped row addressed by itemID or slot. Caller holds
// the lock.
func (m *Manager) locate(itemID string, slot Slot) (*EquippedItem, Outcome) {
	switch {
	case itemID == "" && slot == "":
		return nil, Outcome{
			Message: "You cannot unequip because no item or slot was given.",
			Reason:  ReasonMissingParameters,
		}
	case itemID != "":
		row, ok := m.find(itemID)
		if !ok {
			return nil, Outcome{
				Message: fmt.Sprintf("You cannot unequip %s because it is not equipped.", itemID),
				Reason:  ReasonNotOwned,
			}
		}
		return row, Outcome{}
	default:
		row := m.slots[slot]
		if row == nil {
			return nil, Outcome{
				Message: fmt.Sprintf("You cannot unequip because nothing is equipped on your %s.", slot.DisplayName()),
				Reason:  ReasonNotFound,
			}
		}
		return row, Outcome{}
	}
}

// Snapshot returns the persistence view of all equipped items.
func (m *Manager) Snapshot() []EquippedItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.all()
}

// FromSnapshot reconstructs a Manager from a persistence snapshot.
//
// Postcondition: returns an error when two rows claim the same slot or a
// slot value is invalid.
func FromSnapshot(rows []EquippedItem) (*Manager, error) {
	m := NewManager()
	for _, row := range rows {
		if !validSlots[row.Slot] {
			return nil, fmt.Errorf("equipment: FromSnapshot: invalid slot %q", row.Slot)
		}
		if m.slots[row.Slot] != nil {
			return nil, fmt.Errorf("equipment: FromSnapshot: slot %q occupied twice", row.Slot)
		}
		r := row
		m.slots[row.Slot] = &r
	}
	return m, nil
}
