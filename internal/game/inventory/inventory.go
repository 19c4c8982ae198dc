package inventory

import (
	"sync"
	"time"

	"github.com/cory-johannsen/fablemud/internal/game/catalog"
)

// Unlimited disables a capacity check when used as CapSlots or CapWeight.
const Unlimited = 0

// Inventory is an ordered list of non-empty slots with optional slot and
// weight capacities. The position index and the cached weight mirror the slot
// list exactly after every mutation. Methods are safe for concurrent use, so
// the same inventory can be mutated by a command goroutine while a save
// snapshot reads it.
type Inventory struct {
	CapSlots  int
	CapWeight float64

	mu           sync.RWMutex
	slots        []Slot
	index        map[string][]int // item id → slot positions, in order
	unitWeights  map[string]float64
	weight       float64
	lastModified time.Time
}

// New creates an Inventory with the given capacities. Zero disables a cap.
//
// Precondition: capSlots >= 0 and capWeight >= 0.
func New(capSlots int, capWeight float64) *Inventory {
	return &Inventory{
		CapSlots:    capSlots,
		CapWeight:   capWeight,
		index:       make(map[string][]int),
		unitWeights: make(map[string]float64),
	}
}

// CanAdd reports whether qty units of the item described by def would fit
// within both the weight and slot capacities. It never mutates state; the
// equipment manager uses it to verify unequip space before moving anything.
//
// Postcondition: result is true iff a subsequent Add of the same quantity
// would succeed against current state.
func (inv *Inventory) CanAdd(itemID string, qty int, def *catalog.ItemDef) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.canAdd(itemID, qty, def)
}

// canAdd is CanAdd with the lock held.
func (inv *Inventory) canAdd(itemID string, qty int, def *catalog.ItemDef) bool {
	if qty <= 0 || def == nil {
		return false
	}

	if inv.CapWeight > Unlimited {
		if inv.weight+float64(qty)*def.Weight > inv.CapWeight {
			return false
		}
	}

	if inv.CapSlots > Unlimited {
		needed := inv.newRowsNeeded(itemID, qty, def)
		if len(inv.slots)+needed > inv.CapSlots {
			return false
		}
	}
	return true
}

// newRowsNeeded computes how many new rows qty units require after topping up
// the item's existing stack rows.
func (inv *Inventory) newRowsNeeded(itemID string, qty int, def *catalog.ItemDef) int {
	if !def.Stackable {
		return qty
	}
	overflow := qty
	for _, pos := range inv.index[itemID] {
		s := &inv.slots[pos]
		if s.HasInstanceProps() {
			continue
		}
		room := def.MaxStack - s.Quantity
		if room > 0 {
			overflow -= room
		}
	}
	if overflow <= 0 {
		return 0
	}
	return (overflow + def.MaxStack - 1) / def.MaxStack
}

// Add places qty units of the given item into the inventory.
// It is atomic: when capacity would be exceeded, no state is modified.
//
// Precondition: cat is non-nil.
// Postcondition: returns false when qty <= 0, the item is unknown, or a cap
// would be violated; on success existing stacks are filled in index order
// before new rows are appended, and the weight and index caches are current.
func (inv *Inventory) Add(itemID string, qty int, cat *catalog.Catalog) bool {
	if qty <= 0 {
		return false
	}
	def, ok := cat.ByID(itemID)
	if !ok {
		return false
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	if !inv.canAdd(itemID, qty, def) {
		return false
	}

	remaining := qty
	if def.Stackable {
		for _, pos := range inv.index[itemID] {
			if remaining <= 0 {
				break
			}
			s := &inv.slots[pos]
			if s.HasInstanceProps() {
				continue
			}
			room := def.MaxStack - s.Quantity
			if room <= 0 {
				continue
			}
			take := remaining
			if take > room {
				take = room
			}
			s.Quantity += take
			remaining -= take
		}
	}

	for remaining > 0 {
		q := remaining
		if q > def.MaxStack {
			q = def.MaxStack
		}
		inv.slots = append(inv.slots, Slot{ItemID: itemID, Quantity: q})
		remaining -= q
	}

	inv.unitWeights[itemID] = def.Weight
	inv.rebuild()
	return true
}

// Remove takes qty units of the given item out of the inventory, decrementing
// across rows in index order and dropping rows that reach zero.
//
// Postcondition: returns false when qty <= 0 or the inventory holds fewer
// than qty units; on success the index and weight caches are current.
func (inv *Inventory) Remove(itemID string, qty int) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if qty <= 0 || inv.quantity(itemID) < qty {
		return false
	}

	remaining := qty
	for _, pos := range inv.index[itemID] {
		if remaining <= 0 {
			break
		}
		s := &inv.slots[pos]
		take := remaining
		if take > s.Quantity {
			take = s.Quantity
		}
		s.Quantity -= take
		remaining -= take
	}

	inv.dropEmptyRows()
	inv.rebuild()
	return true
}

// Has reports whether the inventory holds at least qty units of the item.
func (inv *Inventory) Has(itemID string, qty int) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return qty > 0 && inv.quantity(itemID) >= qty
}

// Quantity returns the total units of the item across all rows.
func (inv *Inventory) Quantity(itemID string) int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.quantity(itemID)
}

// quantity is Quantity with the lock held.
func (inv *Inventory) quantity(itemID string) int {
	total := 0
	for _, pos := range inv.index[itemID] {
		total += inv.slots[pos].Quantity
	}
	return total
}

// AllItems returns a snapshot copy of all slots in order.
func (inv *Inventory) AllItems() []Slot {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.allItems()
}

// allItems is AllItems with the lock held.
func (inv *Inventory) allItems() []Slot {
	out := make([]Slot, len(inv.slots))
	copy(out, inv.slots)
	return out
}

// Summary returns total quantity per item id.
func (inv *Inventory) Summary() map[string]int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make(map[string]int, len(inv.index))
	for id := range inv.index {
		out[id] = inv.quantity(id)
	}
	return out
}

// UsedSlots returns the number of occupied rows.
func (inv *Inventory) UsedSlots() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.slots)
}

// AvailableSlots returns the remaining row capacity, or -1 when uncapped.
func (inv *Inventory) AvailableSlots() int {
	if inv.CapSlots == Unlimited {
		return -1
	}
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.CapSlots - len(inv.slots)
}

// CurrentWeight returns the cached total weight, which mirrors the slot list
// after every mutation.
func (inv *Inventory) CurrentWeight() float64 {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.weight
}

// AvailableWeight returns the remaining weight capacity, or -1 when uncapped.
func (inv *Inventory) AvailableWeight() float64 {
	if inv.CapWeight == Unlimited {
		return -1
	}
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.CapWeight - inv.weight
}

// IsFull reports whether no further row can be added.
func (inv *Inventory) IsFull() bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.CapSlots > Unlimited && len(inv.slots) >= inv.CapSlots
}

// IsEmpty reports whether the inventory holds no items.
func (inv *Inventory) IsEmpty() bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.slots) == 0
}

// Clear removes all slots.
func (inv *Inventory) Clear() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.slots = nil
	inv.rebuild()
}

// LastModified returns the time of the most recent mutation.
func (inv *Inventory) LastModified() time.Time {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.lastModified
}

// Stats summarises inventory occupancy.
type Stats struct {
	UsedSlots     int     `json:"used_slots"`
	CapSlots      int     `json:"capacity_slots"`
	CurrentWeight float64 `json:"current_weight"`
	CapWeight     float64 `json:"capacity_weight"`
	DistinctItems int     `json:"distinct_items"`
	TotalItems    int     `json:"total_items"`
}

// Stats returns current occupancy figures.
func (inv *Inventory) Stats() Stats {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	total := 0
	for _, s := range inv.slots {
		total += s.Quantity
	}
	return Stats{
		UsedSlots:     len(inv.slots),
		CapSlots:      inv.CapSlots,
		CurrentWeight: inv.weight,
		CapWeight:     inv.CapWeight,
		DistinctItems: len(inv.index),
		TotalItems:    total,
	}
}

// dropEmptyRows removes slots whose quantity reached zero, preserving order.
func (inv *Inventory) dropEmptyRows() {
	out := inv.slots[:0]
	for _, s := range inv.slots {
		if s.Quantity > 0 {
			out = append(out, s)
		}
	}
	inv.slots = out
}

// rebuild reconstructs the position index and the weight cache from the slot
// list, the single source of truth. Caller holds the lock.
func (inv *Inventory) rebuild() {
	inv.index = make(map[string][]int, len(inv.slots))
	inv.weight = 0
	for i, s := range inv.slots {
		inv.index[s.ItemID] = append(inv.index[s.ItemID], i)
		inv.weight += float64(s.Quantity) * inv.unitWeights[s.ItemID]
	}
	inv.lastModified = time.Now().UTC()
}
