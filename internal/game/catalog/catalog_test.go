package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	return New(zap.NewNop())
}

func registerItem(t *testing.T, c *Catalog, d *ItemDef) {
	t.Helper()
	d.Normalize()
	require.NoError(t, d.Validate())
	c.Register(d)
}

func TestNormalizeStacking(t *testing.T) {
	d := &ItemDef{ID: "sword", Name: "Sword", Type: TypeWeapon}
	d.Normalize()
	assert.Equal(t, 1, d.MaxStack, "non-stackable items stack to 1")

	d = &ItemDef{ID: "arrow", Name: "Arrow", Type: TypeGeneric, Stackable: true}
	d.Normalize()
	assert.Equal(t, DefaultMaxStack, d.MaxStack, "stackable items default max_stack")

	d = &ItemDef{ID: "potion", Name: "Potion", Type: TypePotion, Stackable: true, MaxStack: 5}
	d.Normalize()
	assert.Equal(t, 5, d.MaxStack, "explicit max_stack preserved")
}

func TestNormalizeMaterialVariant(t *testing.T) {
	d := &ItemDef{ID: "ore", Name: "Iron Ore", Type: "material_metal", Stackable: true}
	d.Normalize()
	assert.Equal(t, TypeMaterial, d.Type)
	assert.Equal(t, "metal", d.Properties["material_kind"])
	assert.Contains(t, d.Tags, "material")
}

func TestNormalizeInjectsTypeTag(t *testing.T) {
	d := &ItemDef{ID: "helm", Name: "Helm", Type: TypeArmor}
	d.Normalize()
	assert.Contains(t, d.Tags, "armor")

	// Idempotent: a second Normalize does not duplicate the tag.
	d.Normalize()
	count := 0
	for _, tag := range d.Tags {
		if tag == "armor" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestValidateRejectsBadItems(t *testing.T) {
	cases := []ItemDef{
		{Name: "No ID", Type: TypeGeneric, MaxStack: 1},
		{ID: "x", Type: TypeGeneric, MaxStack: 1},
		{ID: "x", Name: "X", Type: "spaceship", MaxStack: 1},
		{ID: "x", Name: "X", Type: TypeGeneric, Weight: -1, MaxStack: 1},
		{ID: "x", Name: "X", Type: TypeGeneric, Value: -1, MaxStack: 1},
		{ID: "x", Name: "X", Type: TypeGeneric, MaxStack: 0},
		{ID: "x", Name: "X", Type: TypeGeneric, Stackable: false, MaxStack: 3},
	}
	for i := range cases {
		assert.Error(t, cases[i].Validate(), "case %d should be invalid", i)
	}
}

func TestLookupByIDNameAndResolve(t *testing.T) {
	c := testCatalog(t)
	registerItem(t, c, &ItemDef{ID: "iron_sword", Name: "Iron Sword", Type: TypeWeapon})

	d, ok := c.ByID("iron_sword")
	require.True(t, ok)
	assert.Equal(t, "Iron Sword", d.Name)

	d, ok = c.ByName("iron sword")
	require.True(t, ok, "name lookup is case-insensitive")
	assert.Equal(t, "iron_sword", d.ID)

	d, ok = c.Resolve("Iron Sword")
	require.True(t, ok, "resolve prefers names")
	assert.Equal(t, "iron_sword", d.ID)

	d, ok = c.Resolve("iron_sword")
	require.True(t, ok, "resolve falls back to ids")
	assert.Equal(t, "iron_sword", d.ID)

	_, ok = c.Resolve("excalibur")
	assert.False(t, ok)
}

func TestDuplicateRegistrationReplaces(t *testing.T) {
	c := testCatalog(t)
	registerItem(t, c, &ItemDef{ID: "gem", Name: "Ruby", Type: TypeGeneric,
		Synonyms: []string{"red stone"}, Tags: []string{"shiny"}})
	registerItem(t, c, &ItemDef{ID: "gem", Name: "Sapphire", Type: TypeGeneric,
		Synonyms: []string{"blue stone"}})

	require.Equal(t, 1, c.Len())
	d, ok := c.ByID("gem")
	require.True(t, ok)
	assert.Equal(t, "Sapphire", d.Name)

	_, ok = c.ByName("ruby")
	assert.False(t, ok, "replaced item's name is unindexed")
	_, ok = c.ByName("red stone")
	assert.False(t, ok, "replaced item's synonyms are unindexed")
	d, ok = c.ByName("blue stone")
	require.True(t, ok)
	assert.Equal(t, "gem", d.ID)
	assert.Empty(t, c.ByTag("shiny"), "replaced item's tags are unindexed")
}

func TestByTagAndByType(t *testing.T) {
	c := testCatalog(t)
	registerItem(t, c, &ItemDef{ID: "sword", Name: "Sword", Type: TypeWeapon, Tags: []string{"sharp"}})
	registerItem(t, c, &ItemDef{ID: "axe", Name: "Axe", Type: TypeWeapon, Tags: []string{"sharp"}})
	registerItem(t, c, &ItemDef{ID: "bread", Name: "Bread", Type: TypeFood})

	assert.Len(t, c.ByTag("sharp"), 2)
	assert.Len(t, c.ByType(TypeWeapon), 2)
	assert.Len(t, c.ByType(TypeFood), 1)
	assert.Empty(t, c.ByType(TypeScroll))
}

func TestSearch(t *testing.T) {
	c := testCatalog(t)
	registerItem(t, c, &ItemDef{
		ID: "healing_potion", Name: "Healing Potion", Type: TypePotion,
		Description: "Restores vitality", Synonyms: []string{"health potion"},
	})

	assert.Len(t, c.Search("potion"), 1)
	assert.Len(t, c.Search("vitality"), 1, "descriptions are searched")
	assert.Len(t, c.Search("health"), 1, "synonyms are searched")
	assert.Empty(t, c.Search(""))
	assert.Empty(t, c.Search("dragon"))
}

func TestLoadDirYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weapons.yaml"), []byte(`
items:
  - item_id: iron_sword
    name: Iron Sword
    item_type: weapon
    weight: 5.0
    value: 50
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "potions.json"), []byte(`
[{"item_id": "healing_potion", "name": "Healing Potion", "item_type": "potion",
  "stackable": true, "max_stack": 10, "weight": 0.5}]
`), 0644))

	c := testCatalog(t)
	count, err := c.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	sword, ok := c.ByID("iron_sword")
	require.True(t, ok)
	assert.Equal(t, 1, sword.MaxStack)

	potion, ok := c.ByID("healing_potion")
	require.True(t, ok)
	assert.Equal(t, 10, potion.MaxStack)
}

func TestLoadFileBareList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- item_id: torch
  name: Torch
  item_type: tool
`), 0644))

	c := testCatalog(t)
	count, err := c.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLoadFileRejectsInvalidItem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- item_id: ""
  name: Broken
  item_type: weapon
`), 0644))

	c := testCatalog(t)
	_, err := c.LoadFile(path)
	assert.Error(t, err)
}
