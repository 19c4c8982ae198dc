package container

import (
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/events"
	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/inventory"
)

// Tier marks an enhanced container level.
type Tier string

// Container enhancement tiers.
const (
	TierNormal    Tier = ""
	TierEnhanced  Tier = "enhanced"
	TierLegendary Tier = "legendary"
)

// System owns all containers across all locations, each with its holdings
// Inventory. Methods are safe for concurrent use: command goroutines mutate
// while the autosave loop snapshots. Events are emitted after the lock is
// released, so bus handlers may take their own locks freely.
type System struct {
	logger *zap.Logger
	bus    *events.Bus

	mu         sync.RWMutex
	rng        *rand.Rand
	byLocation map[string]map[string]*Data // location id → container id → data
	holdings   map[string]*inventory.Inventory
	ground     map[string]string // location id → ground container id
}

// NewSystem creates an empty System.
//
// Precondition: logger and bus must not be nil; rng is the source for tier
// randomness (inject a seeded source in tests).
func NewSystem(logger *zap.Logger, bus *events.Bus, rng *rand.Rand) *System {
	return &System{
		logger:     logger,
		bus:        bus,
		rng:        rng,
		byLocation: make(map[string]map[string]*Data),
		holdings:   make(map[string]*inventory.Inventory),
		ground:     make(map[string]string),
	}
}

// Spec describes a container to create. Zero caps fall back to the type's
// defaults.
type Spec struct {
	Type                Type
	Name                string
	Description         string
	CapSlots            int
	CapWeight           float64
	Locked              bool
	LockDifficulty      int
	KeyRequired         string
	Hidden              bool
	DiscoveryDifficulty int
	OwnerID             string
	Tier                Tier
}

// Create adds a container at the given location.
//
// Postcondition: the container and its holdings inventory exist; the id has
// the form "container_<location>_<8 hex>"; type behaviors (default caps,
// lockability, forced hiding) and tier adjustments are applied.
func (s *System) Create(locationID string, spec Spec) *Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(locationID, spec)
}

// create is Create with the lock held.
func (s *System) create(locationID string, spec Spec) *Data {
	b := BehaviorFor(spec.Type)

	d := &Data{
		ID:                  newContainerID(locationID),
		Type:                spec.Type,
		LocationID:          locationID,
		Name:                spec.Name,
		Description:         spec.Description,
		CapSlots:            spec.CapSlots,
		CapWeight:           spec.CapWeight,
		LockDifficulty:      spec.LockDifficulty,
		KeyRequired:         spec.KeyRequired,
		IsHidden:            spec.Hidden || b.AlwaysHidden,
		DiscoveryDifficulty: spec.DiscoveryDifficulty,
		OwnerID:             spec.OwnerID,
	}
	if d.Name == "" {
		d.Name = b.AppearanceHint
	}
	if d.CapSlots == 0 {
		d.CapSlots = b.DefaultCapSlots
	}
	if d.CapWeight == 0 {
		d.CapWeight = b.DefaultCapWeight
	}
	if spec.Locked && b.Lockable {
		d.IsLocked = true
	}
	if d.LockDifficulty != 0 {
		d.LockDifficulty += b.LockModifier
	}

	s.applyTier(d, spec.Tier)

	if s.byLocation[locationID] == nil {
		s.byLocation[locationID] = make(map[string]*Data)
	}
	s.byLocation[locationID][d.ID] = d
	s.holdings[d.ID] = inventory.New(d.CapSlots, d.CapWeight)

	s.logger.Debug("container created",
		zap.String("container_id", d.ID),
		zap.String("location_id", locationID),
		zap.String("type", string(d.Type)),
	)
	return d
}

// applyTier applies the enhanced/legendary adjustments: capacity multiplier,
// lock chance and difficulty range, and a master-key chance for legendary.
// Caller holds the lock, which also serializes rng use.
func (s *System) applyTier(d *Data, tier Tier) {
	b := d.Behavior()
	switch tier {
	case TierEnhanced:
		d.CapSlots = int(float64(d.CapSlots) * 1.5)
		d.CapWeight *= 1.5
		if b.Lockable && s.rng.Intn(100) < 50 {
			d.IsLocked = true
			d.LockDifficulty = 5 + s.rng.Intn(11) // 5-15
		}
	case TierLegendary:
		d.CapSlots *= 2
		d.CapWeight *= 2
		if b.Lockable {
			d.IsLocked = true
			d.LockDifficulty = 15 + s.rng.Intn(11) // 15-25
			if s.rng.Intn(100) < 30 {
				d.KeyRequired = "master_key_" + string(d.Type)
			}
		}
	}
}

// Get returns a container by location and id.
//
// Postcondition: ok is true iff the container exists at that location.
func (s *System) Get(locationID, containerID string) (*Data, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byLocation[locationID][containerID]
	return d, ok
}

// Find returns a container by id alone, searching all locations.
func (s *System) Find(containerID string) (*Data, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(containerID)
}

// find is Find with the lock held.
func (s *System) find(containerID string) (*Data, bool) {
	for _, containers := range s.byLocation {
		if d, ok := containers[containerID]; ok {
			return d, true
		}
	}
	return nil, false
}

// At returns all containers at a location, hidden ones included.
func (s *System) At(locationID string) []*Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	containers := s.byLocation[locationID]
	out := make([]*Data, 0, len(containers))
	for _, d := range containers {
		out = append(out, d)
	}
	return out
}

// VisibleAt returns all non-hidden containers at a location.
func (s *System) VisibleAt(locationID string) []*Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Data
	for _, d := range s.byLocation[locationID] {
		if !d.IsHidden {
			out = append(out, d)
		}
	}
	return out
}

// Holdings returns the inventory backing the given container. The inventory
// is internally synchronized, so the caller may use it without holding any
// system-level lock.
//
// Postcondition: ok is true iff the container exists.
func (s *System) Holdings(containerID string) (*inventory.Inventory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.holdings[containerID]
	return inv, ok
}

// Ground returns the location's ground container, creating it lazily.
//
// Postcondition: the returned container has type GROUND, no caps, and is the
// only ground container at the location.
func (s *System) Ground(locationID string) *Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groundLocked(locationID)
}

// groundLocked is Ground with the lock held.
func (s *System) groundLocked(locationID string) *Data {
	if id, ok := s.ground[locationID]; ok {
		return s.byLocation[locationID][id]
	}
	d := &Data{
		ID:         newContainerID(locationID),
		Type:       TypeGround,
		LocationID: locationID,
		Name:       "the ground",
	}
	if s.byLocation[locationID] == nil {
		s.byLocation[locationID] = make(map[string]*Data)
	}
	s.byLocation[locationID][d.ID] = d
	s.holdings[d.ID] = inventory.New(inventory.Unlimited, inventory.Unlimited)
	s.ground[locationID] = d.ID
	return d
}

// HasGround reports whether the location already has a ground container with
// any items in it.
func (s *System) HasGround(locationID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.ground[locationID]
	if !ok {
		return false
	}
	return !s.holdings[id].IsEmpty()
}

// Drop places qty units of itemID on the ground at a location.
//
// Postcondition: returns false when the item is unknown or qty <= 0; on
// success the ground holdings gained qty units.
func (s *System) Drop(locationID, itemID string, qty int, cat *catalog.Catalog) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.groundLocked(locationID)
	return s.holdings[g.ID].Add(itemID, qty, cat)
}

// Take removes qty units of itemID from the ground at a location. When the
// take zeroes the last stack of the item the location's item-presence index
// is cleaned by the inventory's eager row removal; an emptied ground
// container is dropped entirely so the location reads as bare ground again.
func (s *System) Take(locationID, itemID string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.ground[locationID]
	if !ok {
		return false
	}
	inv := s.holdings[id]
	if !inv.Remove(itemID, qty) {
		return false
	}
	if inv.IsEmpty() {
		delete(s.byLocation[locationID], id)
		delete(s.holdings, id)
		delete(s.ground, locationID)
	}
	return true
}

// AddTo places qty units of itemID into a named container, honoring the
// container's lock state and type restriction.
//
// Postcondition: on success emits container_item_added; a locked container
// or a restricted item type leaves state unchanged.
func (s *System) AddTo(containerID, itemID string, qty int, cat *catalog.Catalog) error {
	locationID, err := s.addTo(containerID, itemID, qty, cat)
	if err != nil {
		return err
	}
	s.bus.Emit(events.ContainerItemAdded, "container_system", map[string]any{
		"container_id": containerID,
		"location_id":  locationID,
		"item_id":      itemID,
		"quantity":     qty,
	})
	return nil
}

// addTo performs the locked portion of AddTo and reports the container's
// location for the event payload.
func (s *System) addTo(containerID, itemID string, qty int, cat *catalog.Catalog) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.find(containerID)
	if !ok {
		return "", fmt.Errorf("container: AddTo: container %q not found", containerID)
	}
	if d.IsLocked {
		return "", fmt.Errorf("container: AddTo: %s is locked", d.Name)
	}
	def, ok := cat.ByID(itemID)
	if !ok {
		return "", fmt.Errorf("container: AddTo: unknown item %q", itemID)
	}
	if !d.Accepts(string(def.Type)) {
		return "", fmt.Errorf("container: AddTo: %s does not accept %s items", d.Name, def.Type)
	}
	if !s.holdings[d.ID].Add(itemID, qty, cat) {
		return "", fmt.Errorf("container: AddTo: %s cannot hold %d of %q", d.Name, qty, itemID)
	}
	return d.LocationID, nil
}

// RemoveFrom takes qty units of itemID out of a named container.
//
// Postcondition: on success emits container_item_removed.
func (s *System) RemoveFrom(containerID, itemID string, qty int) error {
	locationID, err := s.removeFrom(containerID, itemID, qty)
	if err != nil {
		return err
	}
	s.bus.Emit(events.ContainerItemRemoved, "container_system", map[string]any{
		"container_id": containerID,
		"location_id":  locationID,
		"item_id":      itemID,
		"quantity":     qty,
	})
	return nil
}

// removeFrom performs the locked portion of RemoveFrom.
func (s *System) removeFrom(containerID, itemID string, qty int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.find(containerID)
	if !ok {
		return "", fmt.Errorf("container: RemoveFrom: container %q not found", containerID)
	}
	if d.IsLocked {
		return "", fmt.Errorf("container: RemoveFrom: %s is locked", d.Name)
	}
	if !s.holdings[d.ID].Remove(itemID, qty) {
		return "", fmt.Errorf("container: RemoveFrom: %s does not hold %d of %q", d.Name, qty, itemID)
	}
	return d.LocationID, nil
}
