// Package equipment provides per-entity equipment slot management: slot
// admissibility by item type, conflict resolution with auto-unequip, and
// aggregate stat folding across equipped items.
package equipment

import (
	"strings"

	"github.com/cory-johannsen/fablemud/internal/game/catalog"
)

// Slot identifies a named body position where exactly one item may be worn.
type Slot string

// The fixed equipment slot enumeration.
const (
	SlotMainHand  Slot = "main_hand"
	SlotOffHand   Slot = "off_hand"
	SlotHead      Slot = "head"
	SlotChest     Slot = "chest"
	SlotLegs      Slot = "legs"
	SlotFeet      Slot = "feet"
	SlotHands     Slot = "hands"
	SlotNeck      Slot = "neck"
	SlotRingLeft  Slot = "ring_left"
	SlotRingRight Slot = "ring_right"
	SlotBracelet  Slot = "bracelet"
	SlotBelt      Slot = "belt"
	SlotBack      Slot = "back"
	SlotAmmo      Slot = "ammo"
)

// AllSlots lists every equipment slot in display order.
var AllSlots = []Slot{
	SlotMainHand, SlotOffHand, SlotHead, SlotChest, SlotLegs, SlotFeet,
	SlotHands, SlotNeck, SlotRingLeft, SlotRingRight, SlotBracelet,
	SlotBelt, SlotBack, SlotAmmo,
}

var validSlots = func() map[Slot]bool {
	m := make(map[Slot]bool, len(AllSlots))
	for _, s := range AllSlots {
		m[s] = true
	}
	return m
}()

// ParseSlot normalizes a slot string ("MAIN_HAND", "main hand", "ring_left")
// to the Slot enum.
//
// Postcondition: ok is true iff the normalized form is a valid slot.
func ParseSlot(s string) (Slot, bool) {
	norm := Slot(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
	return norm, validSlots[norm]
}

// slotDisplayNames maps each slot to its human-readable label.
var slotDisplayNames = map[Slot]string{
	SlotMainHand:  "main hand",
	SlotOffHand:   "off hand",
	SlotHead:      "head",
	SlotChest:     "chest",
	SlotLegs:      "legs",
	SlotFeet:      "feet",
	SlotHands:     "hands",
	SlotNeck:      "neck",
	SlotRingLeft:  "left ring finger",
	SlotRingRight: "right ring finger",
	SlotBracelet:  "wrist",
	SlotBelt:      "waist",
	SlotBack:      "back",
	SlotAmmo:      "quiver",
}

// DisplayName returns the human-readable label for a slot.
func (s Slot) DisplayName() string {
	if label, ok := slotDisplayNames[s]; ok {
		return label
	}
	return string(s)
}

// offHandWeaponTypes are weapon subtypes light enough for the off hand.
var offHandWeaponTypes = map[string]bool{
	"dagger":      true,
	"short_sword": true,
	"light":       true,
}

// armorSlotFallback maps armor_type values to slots when properties.slots is
// absent.
var armorSlotFallback = map[string]Slot{
	"chest": SlotChest, "body": SlotChest, "torso": SlotChest,
	"head": SlotHead, "helmet": SlotHead,
	"legs": SlotLegs, "pants": SlotLegs, "greaves": SlotLegs,
	"feet": SlotFeet, "boots": SlotFeet, "shoes": SlotFeet,
	"hands": SlotHands, "gloves": SlotHands, "gauntlets": SlotHands,
}

// accessorySlots maps accessory_type values to their admissible slots.
var accessorySlots = map[string][]Slot{
	"ring":     {SlotRingLeft, SlotRingRight},
	"necklace": {SlotNeck},
	"bracelet": {SlotBracelet},
	"belt":     {SlotBelt},
	"cloak":    {SlotBack},
}

// AdmissibleSlots returns the set of slots the item type admits, in
// preference order. An empty result means the item is not equippable.
func AdmissibleSlots(def *catalog.ItemDef) []Slot {
	switch def.Type {
	case catalog.TypeWeapon:
		slots := []Slot{SlotMainHand}
		if offHandWeaponTypes[def.StringProp("weapon_type")] {
			slots = append(slots, SlotOffHand)
		}
		return slots
	case catalog.TypeShield:
		return []Slot{SlotOffHand}
	case catalog.TypeArmor:
		return armorSlots(def)
	case catalog.TypeAccessory:
		return accessorySlots[def.StringProp("accessory_type")]
	default:
		return nil
	}
}

// armorSlots resolves armor placement from properties.slots, validated
// against the enum, falling back to the armor_type map.
func armorSlots(def *catalog.ItemDef) []Slot {
	if raw, ok := def.Prop("slots"); ok {
		var out []Slot
		if list, ok := raw.([]any); ok {
			for _, v := range list {
				if s, ok := v.(string); ok {
					if slot, ok := ParseSlot(s); ok {
						out = append(out, slot)
					}
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	if slot, ok := armorSlotFallback[def.StringProp("armor_type")]; ok {
		return []Slot{slot}
	}
	return nil
}

// IsTwoHanded reports whether the item is a two-handed weapon.
func IsTwoHanded(def *catalog.ItemDef) bool {
	return def.Type == catalog.TypeWeapon && def.BoolProp("two_handed")
}
