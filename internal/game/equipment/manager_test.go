package equipment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/inventory"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New(zap.NewNop())
	for _, d := range []*catalog.ItemDef{
		{ID: "sword", Name: "Iron Sword", Type: catalog.TypeWeapon, Weight: 5},
		{ID: "dagger", Name: "Dagger", Type: catalog.TypeWeapon, Weight: 1,
			Properties: map[string]any{"weapon_type": "dagger"}},
		{ID: "greatsword", Name: "Greatsword", Type: catalog.TypeWeapon, Weight: 10,
			Properties: map[string]any{"two_handed": true}},
		{ID: "shield", Name: "Oak Shield", Type: catalog.TypeShield, Weight: 6},
		{ID: "helm", Name: "Helm", Type: catalog.TypeArmor, Weight: 2,
			Properties: map[string]any{"armor_type": "head"}},
		{ID: "cuirass", Name: "Cuirass", Type: catalog.TypeArmor, Weight: 15,
			Properties: map[string]any{"slots": []any{"chest"}}},
		{ID: "ring", Name: "Silver Ring", Type: catalog.TypeAccessory, Weight: 0.1,
			Properties: map[string]any{"accessory_type": "ring"}},
		{ID: "bread", Name: "Bread", Type: catalog.TypeFood, Weight: 0.2, Stackable: true},
	} {
		d.Normalize()
		require.NoError(t, d.Validate())
		c.Register(d)
	}
	return c
}

func carrying(t *testing.T, cat *catalog.Catalog, items ...string) *inventory.Inventory {
	t.Helper()
	inv := inventory.New(inventory.Unlimited, inventory.Unlimited)
	for _, id := range items {
		require.True(t, inv.Add(id, 1, cat))
	}
	return inv
}

func equip(t *testing.T, m *Manager, cat *catalog.Catalog, inv *inventory.Inventory, itemID string, preferred Slot) Outcome {
	t.Helper()
	def, ok := cat.ByID(itemID)
	require.True(t, ok)
	return m.Equip(itemID, def, inv, cat, preferred)
}

func TestParseSlot(t *testing.T) {
	for input, want := range map[string]Slot{
		"MAIN_HAND": SlotMainHand,
		"main hand": SlotMainHand,
		"ring_left": SlotRingLeft,
		" head ":    SlotHead,
	} {
		slot, ok := ParseSlot(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, want, slot)
	}
	_, ok := ParseSlot("elbow")
	assert.False(t, ok)
}

func TestAdmissibleSlots(t *testing.T) {
	cat := testCatalog(t)

	sword, _ := cat.ByID("sword")
	assert.Equal(t, []Slot{SlotMainHand}, AdmissibleSlots(sword))

	dagger, _ := cat.ByID("dagger")
	assert.Equal(t, []Slot{SlotMainHand, SlotOffHand}, AdmissibleSlots(dagger))

	shield, _ := cat.ByID("shield")
	assert.Equal(t, []Slot{SlotOffHand}, AdmissibleSlots(shield))

	helm, _ := cat.ByID("helm")
	assert.Equal(t, []Slot{SlotHead}, AdmissibleSlots(helm))

	cuirass, _ := cat.ByID("cuirass")
	assert.Equal(t, []Slot{SlotChest}, AdmissibleSlots(cuirass))

	ring, _ := cat.ByID("ring")
	assert.Equal(t, []Slot{SlotRingLeft, SlotRingRight}, AdmissibleSlots(ring))

	bread, _ := cat.ByID("bread")
	assert.Empty(t, AdmissibleSlots(bread), "food is not equippable")
}

func TestEquipMovesItemOutOfInventory(t *testing.T) {
	cat := testCatalog(t)
	inv := carrying(t, cat, "sword")
	m := NewManager()

	out := equip(t, m, cat, inv, "sword", "")
	require.True(t, out.Success, out.Message)
	assert.Equal(t, SlotMainHand, out.Slot)
	assert.False(t, inv.Has("sword", 1))

	row := m.At(SlotMainHand)
	require.NotNil(t, row)
	assert.Equal(t, "sword", row.ItemID)
}

func TestEquipNotOwned(t *testing.T) {
	cat := testCatalog(t)
	inv := inventory.New(inventory.Unlimited, inventory.Unlimited)
	m := NewManager()

	out := equip(t, m, cat, inv, "sword", "")
	assert.False(t, out.Success)
	assert.Equal(t, ReasonNotOwned, out.Reason)
}

func TestEquipNotEquippable(t *testing.T) {
	cat := testCatalog(t)
	inv := carrying(t, cat, "bread")
	m := NewManager()

	out := equip(t, m, cat, inv, "bread", "")
	assert.False(t, out.Success)
	assert.Equal(t, ReasonNoValidSlots, out.Reason)
	assert.True(t, inv.Has("bread", 1), "failed equip leaves inventory intact")
}

func TestEquipReplacesOccupant(t *testing.T) {
	cat := testCatalog(t)
	inv := carrying(t, cat, "sword", "dagger")
	m := NewManager()

	require.True(t, equip(t, m, cat, inv, "sword", "").Success)
	out := equip(t, m, cat, inv, "dagger", SlotMainHand)
	require.True(t, out.Success, out.Message)

	require.Len(t, out.Unequipped, 1)
	assert.Equal(t, "sword", out.Unequipped[0].ItemID)
	assert.True(t, inv.Has("sword", 1), "displaced item returns to inventory")
	assert.Equal(t, "dagger", m.At(SlotMainHand).ItemID)
}

func TestRingPrefersLeftThenRight(t *testing.T) {
	cat := testCatalog(t)
	inv := carrying(t, cat, "ring")
	require.True(t, inv.Add("ring", 1, cat))
	m := NewManager()

	first := equip(t, m, cat, inv, "ring", "")
	require.True(t, first.Success)
	assert.Equal(t, SlotRingLeft, first.Slot)

	second := equip(t, m, cat, inv, "ring", "")
	require.True(t, second.Success)
	assert.Equal(t, SlotRingRight, second.Slot)
	assert.Empty(t, second.Unequipped, "second ring takes the free finger")
}

func TestTwoHandedClaimsOffHand(t *testing.T) {
	cat := testCatalog(t)
	inv := carrying(t, cat, "shield", "greatsword")
	m := NewManager()

	require.True(t, equip(t, m, cat, inv, "shield", "").Success)
	out := equip(t, m, cat, inv, "greatsword", "")
	require.True(t, out.Success, out.Message)

	require.Len(t, out.Unequipped, 1)
	assert.Equal(t, "shield", out.Unequipped[0].ItemID)
	assert.Nil(t, m.At(SlotOffHand))
	assert.True(t, inv.Has("shield", 1))
}

func TestOffHandBlockedByTwoHandedSymmetrically(t *testing.T) {
	cat := testCatalog(t)
	inv := carrying(t, cat, "greatsword", "shield")
	m := NewManager()

	require.True(t, equip(t, m, cat, inv, "greatsword", "").Success)
	out := equip(t, m, cat, inv, "shield", "")
	require.True(t, out.Success, out.Message)

	require.Len(t, out.Unequipped, 1)
	assert.Equal(t, "greatsword", out.Unequipped[0].ItemID, "the two-hander yields the hands")
	assert.Nil(t, m.At(SlotMainHand))
	assert.Equal(t, "shield", m.At(SlotOffHand).ItemID)
}

func TestUnequipByItemAndBySlot(t *testing.T) {
	cat := testCatalog(t)
	inv := carrying(t, cat, "sword", "helm")
	m := NewManager()
	require.True(t, equip(t, m, cat, inv, "sword", "").Success)
	require.True(t, equip(t, m, cat, inv, "helm", "").Success)

	out := m.Unequip("sword", "", inv, cat)
	require.True(t, out.Success, out.Message)
	assert.True(t, inv.Has("sword", 1))

	out = m.Unequip("", SlotHead, inv, cat)
	require.True(t, out.Success, out.Message)
	assert.True(t, inv.Has("helm", 1))
	assert.Empty(t, m.All())
}

func TestUnequipRequiresInventorySpace(t *testing.T) {
	cat := testCatalog(t)
	inv := inventory.New(1, inventory.Unlimited)
	require.True(t, inv.Add("sword", 1, cat))
	m := NewManager()
	require.True(t, equip(t, m, cat, inv, "sword", "").Success)
	require.True(t, inv.Add("bread", 1, cat), "fill the only slot")

	out := m.Unequip("sword", "", inv, cat)
	assert.False(t, out.Success)
	assert.Equal(t, ReasonInventoryFull, out.Reason)
	assert.NotNil(t, m.At(SlotMainHand), "item stays equipped when inventory is full")
}

func TestUnequipMissingParameters(t *testing.T) {
	cat := testCatalog(t)
	inv := inventory.New(inventory.Unlimited, inventory.Unlimited)
	m := NewManager()

	out := m.Unequip("", "", inv, cat)
	assert.False(t, out.Success)
	assert.Equal(t, ReasonMissingParameters, out.Reason)

	out = m.Unequip("sword", "", inv, cat)
	assert.False(t, out.Success)
	assert.Equal(t, ReasonNotOwned, out.Reason)

	out = m.Unequip("", SlotHead, inv, cat)
	assert.False(t, out.Success)
	assert.Equal(t, ReasonNotFound, out.Reason)
}

func TestSnapshotRoundTrip(t *testing.T) {
	cat := testCatalog(t)
	inv := carrying(t, cat, "sword", "helm")
	m := NewManager()
	require.True(t, equip(t, m, cat, inv, "sword", "").Success)
	require.True(t, equip(t, m, cat, inv, "helm", "").Success)

	restored, err := FromSnapshot(m.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, m.All(), restored.All())
}

func TestFromSnapshotRejectsDuplicatesAndBadSlots(t *testing.T) {
	_, err := FromSnapshot([]EquippedItem{
		{ItemID: "a", Slot: SlotHead},
		{ItemID: "b", Slot: SlotHead},
	})
	assert.Error(t, err)

	_, err = FromSnapshot([]EquippedItem{{ItemID: "a", Slot: "elbow"}})
	assert.Error(t, err)
}

func TestAggregateStats(t *testing.T) {
	c := catalog.New(zap.NewNop())
	for _, d := range []*catalog.ItemDef{
		{ID: "sword", Name: "Sword", Type: catalog.TypeWeapon, Weight: 5,
			Properties: map[string]any{"damage": 7, "strength": map[string]any{"base": 1, "bonus": 2}}},
		{ID: "helm", Name: "Helm", Type: catalog.TypeArmor, Weight: 2,
			Properties: map[string]any{"armor": 3, "armor_type": "head",
				"resistances":     map[string]any{"fire": 25},
				"special_effects": []any{"night_vision"}}},
	} {
		d.Normalize()
		require.NoError(t, d.Validate())
		c.Register(d)
	}

	inv := inventory.New(inventory.Unlimited, inventory.Unlimited)
	require.True(t, inv.Add("sword", 1, c))
	require.True(t, inv.Add("helm", 1, c))
	m := NewManager()
	def, _ := c.ByID("sword")
	require.True(t, m.Equip("sword", def, inv, c, "").Success)
	def, _ = c.ByID("helm")
	require.True(t, m.Equip("helm", def, inv, c, "").Success)

	stats := m.Stats(c)
	assert.Equal(t, 7, stats.Damage)
	assert.Equal(t, 3, stats.Armor)
	assert.Equal(t, 3, stats.Strength, "base plus bonus")
	assert.Equal(t, 25, stats.Resistances["fire"])
	assert.Contains(t, stats.SpecialEffects, "night_vision")
}
