package container

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/events"
	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/inventory"
	"github.com/cory-johannsen/fablemud/internal/game/world"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New(zap.NewNop())
	for _, d := range []*catalog.ItemDef{
		{ID: "sword", Name: "Sword", Type: catalog.TypeWeapon, Weight: 5},
		{ID: "shield", Name: "Shield", Type: catalog.TypeShield, Weight: 6},
		{ID: "bread", Name: "Bread", Type: catalog.TypeFood, Weight: 0.2, Stackable: true},
		{ID: "copper_coin", Name: "Copper Coin", Type: catalog.TypeGeneric, Weight: 0.01, Stackable: true, MaxStack: 100},
		{ID: "brass_key", Name: "Brass Key", Type: catalog.TypeKey, Weight: 0.1},
		{ID: "skeleton_key", Name: "Skeleton Key", Type: catalog.TypeKey, Weight: 0.1,
			Properties: map[string]any{"consumed_on_use": true}},
		{ID: "lockpick", Name: "Lockpick", Type: catalog.TypeTool, Weight: 0.1},
		{ID: "bent_wire", Name: "Bent Wire", Type: catalog.TypeTool, Weight: 0.05, Tags: []string{"lockpick"}},
	} {
		d.Normalize()
		require.NoError(t, d.Validate())
		c.Register(d)
	}
	return c
}

func testSystem(t *testing.T, seed int64) (*System, *events.Bus) {
	t.Helper()
	logger := zap.NewNop()
	bus := events.NewBus(logger)
	return NewSystem(logger, bus, rand.New(rand.NewSource(seed))), bus
}

func TestBehaviorTable(t *testing.T) {
	chest := BehaviorFor(TypeChest)
	assert.True(t, chest.Lockable)
	assert.Equal(t, 20, chest.DefaultCapSlots)
	assert.InDelta(t, 200, chest.DefaultCapWeight, 1e-9)

	barrel := BehaviorFor(TypeBarrel)
	assert.False(t, barrel.Lockable)
	assert.Equal(t, -5, barrel.LockModifier)

	rack := BehaviorFor(TypeWeaponRack)
	assert.Equal(t, []string{"weapon", "shield"}, rack.RestrictedTypes)

	loot := BehaviorFor(TypeLoot)
	assert.True(t, loot.AlwaysHidden)

	corpse := BehaviorFor(TypeCorpse)
	assert.Equal(t, 10, corpse.DefaultCapSlots, "unlisted types use the default behavior")
	assert.InDelta(t, 50, corpse.DefaultCapWeight, 1e-9)
}

func TestCreateAppliesTypeDefaults(t *testing.T) {
	s, _ := testSystem(t, 1)

	d := s.Create("village_square", Spec{Type: TypeChest})
	assert.Contains(t, d.ID, "container_village_square_")
	assert.Equal(t, "a wooden chest", d.Name, "empty name falls back to the appearance hint")
	assert.Equal(t, 20, d.CapSlots)
	assert.InDelta(t, 200, d.CapWeight, 1e-9)
	assert.False(t, d.IsHidden)

	inv, ok := s.Holdings(d.ID)
	require.True(t, ok)
	assert.True(t, inv.IsEmpty())
}

func TestCreateHonorsLockabilityAndModifier(t *testing.T) {
	s, _ := testSystem(t, 1)

	barrel := s.Create("loc", Spec{Type: TypeBarrel, Locked: true})
	assert.False(t, barrel.IsLocked, "barrels cannot carry a lock")

	shelf := s.Create("loc", Spec{Type: TypeBookshelf, Locked: true, LockDifficulty: 10})
	assert.True(t, shelf.IsLocked)
	assert.Equal(t, 15, shelf.LockDifficulty, "type modifier adjusts the difficulty")

	loot := s.Create("loc", Spec{Type: TypeLoot})
	assert.True(t, loot.IsHidden, "loot containers are always hidden")
}

func TestTierAdjustments(t *testing.T) {
	s, _ := testSystem(t, 42)

	enhanced := s.Create("loc", Spec{Type: TypeChest, Tier: TierEnhanced})
	assert.Equal(t, 30, enhanced.CapSlots, "enhanced caps scale by 1.5")
	assert.InDelta(t, 300, enhanced.CapWeight, 1e-9)

	legendary := s.Create("loc", Spec{Type: TypeChest, Tier: TierLegendary})
	assert.Equal(t, 40, legendary.CapSlots, "legendary caps double")
	assert.InDelta(t, 400, legendary.CapWeight, 1e-9)
	assert.True(t, legendary.IsLocked, "legendary lockable containers are always locked")
	assert.GreaterOrEqual(t, legendary.LockDifficulty, 15)
	assert.LessOrEqual(t, legendary.LockDifficulty, 25)
}

func TestGroundLifecycle(t *testing.T) {
	cat := testCatalog(t)
	s, _ := testSystem(t, 1)

	assert.False(t, s.HasGround("clearing"))

	require.True(t, s.Drop("clearing", "sword", 1, cat))
	require.True(t, s.Drop("clearing", "bread", 3, cat))
	assert.True(t, s.HasGround("clearing"))

	g := s.Ground("clearing")
	assert.Equal(t, TypeGround, g.Type)
	assert.Same(t, g, s.Ground("clearing"), "ground container is created once")

	require.True(t, s.Take("clearing", "bread", 3))
	assert.True(t, s.HasGround("clearing"), "sword still lies there")

	require.True(t, s.Take("clearing", "sword", 1))
	assert.False(t, s.HasGround("clearing"), "emptied ground container is removed")
	assert.Empty(t, s.At("clearing"))

	assert.False(t, s.Take("clearing", "sword", 1), "nothing left to take")
}

func TestDropRejectsUnknownItem(t *testing.T) {
	cat := testCatalog(t)
	s, _ := testSystem(t, 1)
	assert.False(t, s.Drop("loc", "phantom", 1, cat))
}

func TestAddToAndRemoveFrom(t *testing.T) {
	cat := testCatalog(t)
	s, bus := testSystem(t, 1)

	var added, removed int
	bus.Subscribe(events.ContainerItemAdded, func(events.Event) { added++ })
	bus.Subscribe(events.ContainerItemRemoved, func(events.Event) { removed++ })

	d := s.Create("loc", Spec{Type: TypeChest})
	require.NoError(t, s.AddTo(d.ID, "bread", 2, cat))
	require.NoError(t, s.RemoveFrom(d.ID, "bread", 1))

	inv, _ := s.Holdings(d.ID)
	assert.Equal(t, 1, inv.Quantity("bread"))
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)

	assert.Error(t, s.AddTo("nope", "bread", 1, cat))
	assert.Error(t, s.AddTo(d.ID, "phantom", 1, cat))
	assert.Error(t, s.RemoveFrom(d.ID, "bread", 5))
}

func TestAddToRespectsLockAndRestriction(t *testing.T) {
	cat := testCatalog(t)
	s, _ := testSystem(t, 1)

	locked := s.Create("loc", Spec{Type: TypeChest, Locked: true})
	assert.Error(t, s.AddTo(locked.ID, "bread", 1, cat))

	rack := s.Create("loc", Spec{Type: TypeWeaponRack})
	assert.Error(t, s.AddTo(rack.ID, "bread", 1, cat), "racks hold weapons and shields only")
	assert.NoError(t, s.AddTo(rack.ID, "sword", 1, cat))
	assert.NoError(t, s.AddTo(rack.ID, "shield", 1, cat))
}

func TestCanUnlockAssessment(t *testing.T) {
	cat := testCatalog(t)
	s, _ := testSystem(t, 1)

	open := s.Create("loc", Spec{Type: TypeChest})
	assert.True(t, s.CanUnlock(open, inventory.New(inventory.Unlimited, inventory.Unlimited), cat).CanUnlock)

	keyed := s.Create("loc", Spec{Type: TypeChest, Locked: true, KeyRequired: "brass_key"})
	empty := inventory.New(inventory.Unlimited, inventory.Unlimited)
	a := s.CanUnlock(keyed, empty, cat)
	assert.False(t, a.CanUnlock)
	assert.Equal(t, []string{"brass_key"}, a.RequiredItems)

	withKey := inventory.New(inventory.Unlimited, inventory.Unlimited)
	require.True(t, withKey.Add("brass_key", 1, cat))
	a = s.CanUnlock(keyed, withKey, cat)
	assert.True(t, a.CanUnlock)
	assert.Equal(t, []string{MethodKey}, a.Methods)

	picked := s.Create("loc", Spec{Type: TypeChest, Locked: true, LockDifficulty: 8})
	a = s.CanUnlock(picked, empty, cat)
	assert.False(t, a.CanUnlock)
	assert.Equal(t, []string{"lockpicking"}, a.RequiredSkills)
	assert.Equal(t, 8, a.Difficulty)

	withPick := inventory.New(inventory.Unlimited, inventory.Unlimited)
	require.True(t, withPick.Add("lockpick", 1, cat))
	a = s.CanUnlock(picked, withPick, cat)
	assert.True(t, a.CanUnlock)
	assert.Equal(t, []string{MethodLockpick}, a.Methods)
}

func TestTaggedItemPicksLocks(t *testing.T) {
	cat := testCatalog(t)
	s, _ := testSystem(t, 1)

	picked := s.Create("loc", Spec{Type: TypeChest, Locked: true, LockDifficulty: 8})
	withWire := inventory.New(inventory.Unlimited, inventory.Unlimited)
	require.True(t, withWire.Add("bent_wire", 1, cat))

	a := s.CanUnlock(picked, withWire, cat)
	assert.True(t, a.CanUnlock, "any item tagged lockpick can pick a lock")
	assert.Equal(t, []string{MethodLockpick}, a.Methods)

	method, err := s.Unlock(picked, withWire, MethodAuto, cat)
	require.NoError(t, err)
	assert.Equal(t, MethodLockpick, method)
	assert.False(t, picked.IsLocked)
}

func TestUnlockWithKey(t *testing.T) {
	cat := testCatalog(t)
	s, bus := testSystem(t, 1)

	var unlocks int
	bus.Subscribe(events.ContainerUnlocked, func(events.Event) { unlocks++ })

	d := s.Create("loc", Spec{Type: TypeChest, Locked: true, KeyRequired: "brass_key"})
	inv := inventory.New(inventory.Unlimited, inventory.Unlimited)
	require.True(t, inv.Add("brass_key", 1, cat))

	method, err := s.Unlock(d, inv, MethodAuto, cat)
	require.NoError(t, err)
	assert.Equal(t, MethodKey, method)
	assert.False(t, d.IsLocked)
	assert.True(t, inv.Has("brass_key", 1), "an ordinary key survives use")
	assert.Equal(t, 1, unlocks)

	method, err = s.Unlock(d, inv, MethodAuto, cat)
	require.NoError(t, err)
	assert.Empty(t, method, "unlocking an open container is a no-op")
	assert.Equal(t, 1, unlocks, "no second event")
}

func TestUnlockConsumesSingleUseKey(t *testing.T) {
	cat := testCatalog(t)
	s, _ := testSystem(t, 1)

	d := s.Create("loc", Spec{Type: TypeChest, Locked: true, KeyRequired: "skeleton_key"})
	inv := inventory.New(inventory.Unlimited, inventory.Unlimited)
	require.True(t, inv.Add("skeleton_key", 1, cat))

	method, err := s.Unlock(d, inv, MethodKey, cat)
	require.NoError(t, err)
	assert.Equal(t, MethodKey, method)
	assert.False(t, inv.Has("skeleton_key", 1), "consumed_on_use keys are spent")
}

func TestUnlockFailures(t *testing.T) {
	cat := testCatalog(t)
	s, _ := testSystem(t, 1)

	d := s.Create("loc", Spec{Type: TypeChest, Locked: true, KeyRequired: "brass_key", LockDifficulty: 8})
	empty := inventory.New(inventory.Unlimited, inventory.Unlimited)

	_, err := s.Unlock(d, empty, MethodAuto, cat)
	assert.Error(t, err)
	assert.True(t, d.IsLocked)

	withPick := inventory.New(inventory.Unlimited, inventory.Unlimited)
	require.True(t, withPick.Add("lockpick", 1, cat))
	_, err = s.Unlock(d, withPick, MethodKey, cat)
	assert.Error(t, err, "the key method needs the key, not a pick")
	assert.True(t, d.IsLocked)
}

func TestSearchRevealsByDifficulty(t *testing.T) {
	s, _ := testSystem(t, 1)

	easy := s.Create("loc", Spec{Type: TypeLoot, DiscoveryDifficulty: 5})
	hard := s.Create("loc", Spec{Type: TypeChest, Hidden: true, DiscoveryDifficulty: 20})
	shelf := s.Create("loc", Spec{Type: TypeBookshelf})

	result := s.SearchLocation("loc", 10)
	require.Len(t, result.Discovered, 1)
	assert.Equal(t, easy.ID, result.Discovered[0].ID)
	assert.Len(t, result.Visible, 2, "the bookshelf was never hidden")
	assert.True(t, hard.IsHidden)

	again := s.SearchLocation("loc", 10)
	assert.Empty(t, again.Discovered, "a repeat search rediscovers nothing")
	assert.Len(t, again.Visible, 2)
	_ = shelf

	final := s.SearchLocation("loc", 25)
	require.Len(t, final.Discovered, 1)
	assert.Equal(t, hard.ID, final.Discovered[0].ID)
	assert.Len(t, final.Visible, 3)
}

func TestVisibleAtExcludesHidden(t *testing.T) {
	s, _ := testSystem(t, 1)
	s.Create("loc", Spec{Type: TypeChest})
	s.Create("loc", Spec{Type: TypeLoot})

	assert.Len(t, s.At("loc"), 2)
	assert.Len(t, s.VisibleAt("loc"), 1)
}

func TestSeedLocation(t *testing.T) {
	cat := testCatalog(t)
	s, _ := testSystem(t, 1)

	village := &world.Location{ID: "village", Type: world.TypeVillage}
	created := s.SeedLocation(village, cat)
	require.Len(t, created, 2)

	well := created[1]
	inv, ok := s.Holdings(well.ID)
	require.True(t, ok)
	assert.Equal(t, 3, inv.Quantity("copper_coin"))

	// Fixture items missing from the catalog are skipped, not fatal.
	ruin := &world.Location{ID: "ruin", Type: world.TypeRuin}
	created = s.SeedLocation(ruin, cat)
	require.Len(t, created, 1)
	inv, _ = s.Holdings(created[0].ID)
	assert.True(t, inv.IsEmpty())
	assert.True(t, created[0].IsHidden)

	// Unknown location types fall back to the generic fixtures.
	tower := &world.Location{ID: "tower", Type: world.LocationType("wizard_tower")}
	created = s.SeedLocation(tower, cat)
	require.Len(t, created, 1)
	assert.Equal(t, TypeBarrel, created[0].Type)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	cat := testCatalog(t)
	s, _ := testSystem(t, 1)

	chest := s.Create("loc", Spec{Type: TypeChest, KeyRequired: "brass_key"})
	require.NoError(t, s.AddTo(chest.ID, "bread", 2, cat))
	chest.IsLocked = true
	require.True(t, s.Drop("loc", "sword", 1, cat))

	snap := s.Snapshot()
	require.Len(t, snap, 2)

	restored, _ := testSystem(t, 2)
	require.NoError(t, restored.Restore(snap, cat))

	got, ok := restored.Find(chest.ID)
	require.True(t, ok)
	assert.True(t, got.IsLocked)
	inv, _ := restored.Holdings(chest.ID)
	assert.Equal(t, 2, inv.Quantity("bread"))
	assert.True(t, restored.HasGround("loc"), "ground index is rebuilt from the snapshot")
}

func TestConcurrentGroundTraffic(t *testing.T) {
	cat := testCatalog(t)
	s, _ := testSystem(t, 1)

	// Two command goroutines churn the same location's ground while a third
	// snapshots, the way connection handlers overlap the autosave loop.
	var wg sync.WaitGroup
	for _, itemID := range []string{"bread", "copper_coin"} {
		wg.Add(1)
		go func(itemID string) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				assert.True(t, s.Drop("crossroads", itemID, 1, cat))
				assert.True(t, s.Take("crossroads", itemID, 1))
			}
		}(itemID)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Snapshot()
			s.HasGround("crossroads")
		}
	}()
	wg.Wait()

	assert.False(t, s.HasGround("crossroads"), "every drop was taken back")
}

func TestRestoreRejectsCorruptSnapshots(t *testing.T) {
	cat := testCatalog(t)
	s, _ := testSystem(t, 1)

	bad := map[string]State{
		"wrong_key": {Data: Data{ID: "other", Type: TypeChest, LocationID: "loc"}},
	}
	assert.Error(t, s.Restore(bad, cat))

	dupGround := map[string]State{
		"g1": {Data: Data{ID: "g1", Type: TypeGround, LocationID: "loc"}},
		"g2": {Data: Data{ID: "g2", Type: TypeGround, LocationID: "loc"}},
	}
	assert.Error(t, s.Restore(dupGround, cat))
}
