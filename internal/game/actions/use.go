package actions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/fablemud/internal/events"
	"github.com/cory-johannsen/fablemud/internal/game/catalog"
)

// use validates ownership and dispatches by item type: consumables are
// consumed and their effects rendered; weapons, armor, and shields route to
// EQUIP; tools succeed as a placeholder for downstream tool subsystems.
func (f *Facade) use(entityID string, details Details) Result {
	ref := details.itemRef()
	if ref == "" {
		return fail("You cannot use that because no item was named.", ReasonMissingParameters)
	}
	cat := f.Catalog()
	def, found := cat.Resolve(ref)
	if !found {
		return fail(fmt.Sprintf("You cannot use %s because no such item exists.", ref), ReasonNotFound)
	}

	player := f.sessions.Player(entityID)
	if !player.Inventory.Has(def.ID, 1) {
		return fail(fmt.Sprintf("You cannot use %s because you are not carrying it.", def.Name), ReasonNotOwned)
	}

	switch def.Type {
	case catalog.TypeConsumable, catalog.TypePotion, catalog.TypeFood:
		return f.consume(entityID, def)
	case catalog.TypeWeapon, catalog.TypeArmor, catalog.TypeShield:
		// "use sword" means wield it.
		return f.equip(entityID, Details{ItemNameOrID: def.ID, Slot: details.slotRef()})
	case catalog.TypeTool:
		return ok(fmt.Sprintf("You ready %s.", def.Name), map[string]any{
			"item_id": def.ID,
			"tool":    true,
		})
	default:
		return fail(fmt.Sprintf("You cannot use %s because nothing happens.", def.Name), ReasonValidation)
	}
}

// consume removes one unit and renders each entry of properties.effects.
func (f *Facade) consume(entityID string, def *catalog.ItemDef) Result {
	player := f.sessions.Player(entityID)
	if !player.Inventory.Remove(def.ID, 1) {
		return fail(fmt.Sprintf("You cannot use %s because you are not carrying it.", def.Name), ReasonNotOwned)
	}

	var messages []string
	effects := map[string]any{}
	if raw, has := def.Prop("effects"); has {
		if m, isMap := raw.(map[string]any); isMap {
			effects = m
		}
	}
	keys := make([]string, 0, len(effects))
	for k := range effects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		messages = append(messages, effectMessage(k, effects[k]))
	}
	if len(messages) == 0 {
		messages = append(messages, fmt.Sprintf("You use %s.", def.Name))
	}

	f.bus.Emit(events.ItemUsed, "facade", map[string]any{
		"entity_id": entityID,
		"item_id":   def.ID,
		"effects":   effects,
	})
	return ok(strings.Join(messages, " "), map[string]any{
		"item_id": def.ID,
		"effects": effects,
	})
}

// effectMessage renders one consumable effect as prose.
func effectMessage(effect string, value any) string {
	switch effect {
	case "heal":
		return fmt.Sprintf("You recover %v health.", value)
	case "mana":
		return fmt.Sprintf("You recover %v mana.", value)
	case "buff":
		return fmt.Sprintf("You feel the effect of %v.", value)
	default:
		return fmt.Sprintf("You feel a %s effect (%v).", effect, value)
	}
}

// inventoryView renders the player's slots with display fields.
func (f *Facade) inventoryView(entityID string) Result {
	cat := f.Catalog()
	player := f.sessions.Player(entityID)

	slots := player.Inventory.AllItems()
	rendered := make([]map[string]any, 0, len(slots))
	for _, s := range slots {
		row := map[string]any{
			"item_id":  s.ItemID,
			"quantity": s.Quantity,
		}
		if len(s.InstanceProps) > 0 {
			row["instance_properties"] = s.InstanceProps
		}
		if def, found := cat.ByID(s.ItemID); found {
			row["name"] = def.Name
			row["description"] = def.Description
			row["type"] = string(def.Type)
			row["rarity"] = def.Rarity
			row["weight"] = def.Weight
			row["value"] = def.Value
			row["stackable"] = def.Stackable
			row["properties"] = def.Properties
			row["display_name"] = displayName(def, s.Quantity)
		}
		rendered = append(rendered, row)
	}

	stats := player.Inventory.Stats()
	return ok(fmt.Sprintf("You are carrying %d items.", stats.TotalItems), map[string]any{
		"slots": rendered,
		"stats": stats,
	})
}

// displayName renders "Iron Sword" or "Health Potion x3".
func displayName(def *catalog.ItemDef, qty int) string {
	if qty > 1 {
		return fmt.Sprintf("%s x%d", def.Name, qty)
	}
	return def.Name
}
