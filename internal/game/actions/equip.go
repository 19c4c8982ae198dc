package actions

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/fablemud/internal/events"
	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/equipment"
)

// equip resolves the item through the catalog, normalizes any slot string,
// and delegates to the equipment manager, emitting equipment_change with a
// player snapshot on success.
func (f *Facade) equip(entityID string, details Details) Result {
	ref := details.itemRef()
	if ref == "" {
		return fail("You cannot equip that because no item was named.", ReasonMissingParameters)
	}
	cat := f.Catalog()
	def, found := cat.Resolve(ref)
	if !found {
		return fail(fmt.Sprintf("You cannot equip %s because no such item exists.", ref), ReasonNotFound)
	}

	var preferred equipment.Slot
	if s := details.slotRef(); s != "" {
		slot, valid := equipment.ParseSlot(s)
		if !valid {
			return fail(fmt.Sprintf("You cannot equip %s because %q is not a known slot.", def.Name, s), ReasonValidation)
		}
		preferred = slot
	}

	player := f.sessions.Player(entityID)
	outcome := player.Equipment.Equip(def.ID, def, player.Inventory, cat, preferred)
	if !outcome.Success {
		return fail(outcome.Message, outcome.Reason)
	}

	f.emitEquipmentChange(entityID)

	unequipped := make([]string, 0, len(outcome.Unequipped))
	for _, e := range outcome.Unequipped {
		unequipped = append(unequipped, e.ItemID)
	}
	return ok(outcome.Message, map[string]any{
		"item_id":          def.ID,
		"slot":             string(outcome.Slot),
		"unequipped_items": unequipped,
	})
}

// unequip accepts an item name, an item id, or a slot string; exactly one
// must locate an equipped row.
func (f *Facade) unequip(entityID string, details Details) Result {
	cat := f.Catalog()
	player := f.sessions.Player(entityID)

	itemID := ""
	if ref := details.itemRef(); ref != "" {
		def, found := cat.Resolve(ref)
		if !found {
			// The target may be a loose description ("ring"); try matching
			// against what is actually equipped.
			def = f.matchEquipped(player.Equipment, ref)
		}
		if def == nil {
			return fail(fmt.Sprintf("You cannot unequip %s because no such item exists.", ref), ReasonNotFound)
		}
		itemID = def.ID
	}

	var slot equipment.Slot
	if itemID == "" {
		if s := details.slotRef(); s != "" {
			parsed, valid := equipment.ParseSlot(s)
			if !valid {
				return fail(fmt.Sprintf("You cannot unequip because %q is not a known slot.", s), ReasonValidation)
			}
			slot = parsed
		}
	}

	outcome := player.Equipment.Unequip(itemID, slot, player.Inventory, cat)
	if !outcome.Success {
		return fail(outcome.Message, outcome.Reason)
	}

	f.emitEquipmentChange(entityID)
	return ok(outcome.Message, map[string]any{
		"item_id": itemID,
		"slot":    string(outcome.Slot),
	})
}

// matchEquipped finds an equipped item whose name or synonyms contain the
// given fragment, so "take off ring" resolves against worn jewelry.
func (f *Facade) matchEquipped(eq *equipment.Manager, fragment string) *catalog.ItemDef {
	cat := f.Catalog()
	needle := strings.ToLower(strings.TrimSpace(fragment))
	for _, row := range eq.All() {
		def, found := cat.ByID(row.ItemID)
		if !found {
			continue
		}
		if strings.Contains(strings.ToLower(def.Name), needle) {
			return def
		}
		for _, syn := range def.Synonyms {
			if strings.Contains(strings.ToLower(syn), needle) {
				return def
			}
		}
	}
	return nil
}

// emitEquipmentChange publishes the post-mutation player snapshot.
func (f *Facade) emitEquipmentChange(entityID string) {
	snap, _ := f.sessions.SnapshotPlayer(entityID)
	f.bus.Emit(events.EquipmentChange, "facade", map[string]any{
		"entity_id":    entityID,
		"player_state": snap,
	})
}
