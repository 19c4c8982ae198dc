// Package catalog provides the immutable item definition catalog: loading
// item records from YAML or JSON files and indexed lookup by id, name, tag,
// and type. The catalog is read-only after loading; the facade may hot-swap
// a rebuilt catalog atomically.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ItemType classifies an item definition.
type ItemType string

// All recognized item types.
const (
	TypeWeapon     ItemType = "weapon"
	TypeArmor      ItemType = "armor"
	TypeShield     ItemType = "shield"
	TypeAccessory  ItemType = "accessory"
	TypeConsumable ItemType = "consumable"
	TypePotion     ItemType = "potion"
	TypeFood       ItemType = "food"
	TypeScroll     ItemType = "scroll"
	TypeMaterial   ItemType = "material"
	TypeQuestItem  ItemType = "quest_item"
	TypeCurrency   ItemType = "currency"
	TypeKey        ItemType = "key"
	TypeTool       ItemType = "tool"
	TypeContainer  ItemType = "container"
	TypeGeneric    ItemType = "generic"
	TypeOther      ItemType = "other"
)

// validTypes is the set of accepted ItemDef types.
var validTypes = map[ItemType]bool{
	TypeWeapon: true, TypeArmor: true, TypeShield: true, TypeAccessory: true,
	TypeConsumable: true, TypePotion: true, TypeFood: true, TypeScroll: true,
	TypeMaterial: true, TypeQuestItem: true, TypeCurrency: true, TypeKey: true,
	TypeTool: true, TypeContainer: true, TypeGeneric: true, TypeOther: true,
}

// DefaultMaxStack is applied to stackable items that do not specify max_stack.
const DefaultMaxStack = 99

// ItemDef defines the static properties of an item loaded from YAML or JSON.
// Definitions are immutable once registered; identity is the ID alone.
type ItemDef struct {
	ID          string         `yaml:"item_id" json:"item_id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Type        ItemType       `yaml:"item_type" json:"item_type"`
	Stackable   bool           `yaml:"stackable" json:"stackable"`
	MaxStack    int            `yaml:"max_stack" json:"max_stack"`
	Weight      float64        `yaml:"weight" json:"weight"`
	Value       int            `yaml:"value" json:"value"`
	Rarity      string         `yaml:"rarity" json:"rarity"`
	Tags        []string       `yaml:"tags" json:"tags"`
	Synonyms    []string       `yaml:"synonyms" json:"synonyms"`
	Properties  map[string]any `yaml:"properties" json:"properties"`
}

// Normalize applies the stacking and tag invariants in place.
//
// Postcondition: MaxStack is 1 when not stackable, defaulted when stackable
// and unset; Tags contains the lowercased item type; material_* variants are
// folded to TypeMaterial with the variant recorded in Properties.
func (d *ItemDef) Normalize() {
	if t := string(d.Type); strings.HasPrefix(t, "material_") {
		if d.Properties == nil {
			d.Properties = make(map[string]any)
		}
		d.Properties["material_kind"] = strings.TrimPrefix(t, "material_")
		d.Type = TypeMaterial
	}
	d.Type = ItemType(strings.ToLower(string(d.Type)))
	if !d.Stackable {
		d.MaxStack = 1
	} else if d.MaxStack < 1 {
		d.MaxStack = DefaultMaxStack
	}
	typeTag := strings.ToLower(string(d.Type))
	for _, t := range d.Tags {
		if t == typeTag {
			return
		}
	}
	d.Tags = append(d.Tags, typeTag)
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil and Normalize has been applied.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("item_id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validTypes[d.Type] {
		errs = append(errs, fmt.Errorf("item_type %q is not recognized", d.Type))
	}
	if d.Weight < 0 {
		errs = append(errs, errors.New("weight must be >= 0"))
	}
	if d.Value < 0 {
		errs = append(errs, errors.New("value must be >= 0"))
	}
	if d.MaxStack < 1 {
		errs = append(errs, errors.New("max_stack must be >= 1"))
	}
	if !d.Stackable && d.MaxStack != 1 {
		errs = append(errs, errors.New("non-stackable items must have max_stack 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// Prop returns a named value from Properties and whether it was present.
func (d *ItemDef) Prop(key string) (any, bool) {
	if d.Properties == nil {
		return nil, false
	}
	v, ok := d.Properties[key]
	return v, ok
}

// StringProp returns a string-valued property, or "" when absent or not a string.
func (d *ItemDef) StringProp(key string) string {
	v, ok := d.Prop(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// BoolProp returns a bool-valued property, or false when absent.
func (d *ItemDef) BoolProp(key string) bool {
	v, ok := d.Prop(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
