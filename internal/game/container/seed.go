package container

import (
	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/world"
)

// seedFixture describes one fixture container placed by SeedLocation.
type seedFixture struct {
	spec  Spec
	items map[string]int // item id → quantity; skipped when absent from the catalog
}

// seedFixtures maps each location type to its typical containers. Quantities
// and contents are fixtures, not procedurally generated.
var seedFixtures = map[world.LocationType][]seedFixture{
	world.TypeVillage: {
		{spec: Spec{Type: TypeBookshelf, Name: "the village notice board",
			Description: "A weathered board pinned with notices and oddments."}},
		{spec: Spec{Type: TypeBarrel, Name: "the village well",
			Description: "A stone well; things occasionally end up at the bottom."},
			items: map[string]int{"copper_coin": 3}},
	},
	world.TypeRuin: {
		{spec: Spec{Type: TypeChest, Name: "a half-buried chest",
			Description:         "An old chest, half-buried in rubble.",
			Locked:              true,
			LockDifficulty:      10,
			Hidden:              true,
			DiscoveryDifficulty: 15},
			items: map[string]int{"ancient_relic": 1}},
	},
	world.TypeCave: {
		{spec: Spec{Type: TypeLoot, Name: "an ore vein",
			Description:         "A glittering vein in the rock face.",
			DiscoveryDifficulty: 10},
			items: map[string]int{"iron_ore": 5}},
	},
	world.TypeShop: {
		{spec: Spec{Type: TypeShop, Name: "the shop inventory",
			Description: "Shelves of goods for sale."},
			items: map[string]int{"health_potion_small": 5, "torch": 10}},
	},
	world.TypeGeneric: {
		{spec: Spec{Type: TypeBarrel, Name: "an old barrel",
			Description: "A barrel that has seen better days."}},
	},
}

// SeedLocation creates the typical containers for a location based on its
// type tag and stocks them from the catalog. Items absent from the catalog
// are skipped rather than failing the seed.
//
// Postcondition: returns the containers created, in fixture order.
func (s *System) SeedLocation(loc *world.Location, cat *catalog.Catalog) []*Data {
	fixtures, ok := seedFixtures[loc.Type]
	if !ok {
		fixtures = seedFixtures[world.TypeGeneric]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var created []*Data
	for _, f := range fixtures {
		d := s.create(loc.ID, f.spec)
		inv := s.holdings[d.ID]
		for itemID, qty := range f.items {
			if _, known := cat.ByID(itemID); known {
				inv.Add(itemID, qty, cat)
			}
		}
		created = append(created, d)
	}
	return created
}
