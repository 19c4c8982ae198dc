package container

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/events"
	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/inventory"
)

// Unlock methods, in preference order.
const (
	MethodKey      = "key"
	MethodLockpick = "lockpick"
	MethodAuto     = "auto"
)

// LockpickTag marks catalog items that can pick locks; the literal item id
// "lockpick" also qualifies.
const LockpickTag = "lockpick"

// UnlockAssessment reports whether and how a container can be unlocked with
// the contents of a given inventory.
type UnlockAssessment struct {
	CanUnlock      bool     `json:"can_unlock"`
	Methods        []string `json:"methods"`
	RequiredItems  []string `json:"required_items"`
	RequiredSkills []string `json:"required_skills"`
	// Difficulty is the effective lock difficulty for the lockpick method;
	// zero when lockpicking does not apply.
	Difficulty int `json:"difficulty,omitempty"`
}

// CanUnlock evaluates the unlock rules in order: an unlocked container is a
// trivial success; a required key present in the inventory enables the key
// method; a positive lock difficulty with a lockpick in the inventory enables
// the lockpick method; otherwise the container cannot be opened with the
// current inventory and the assessment lists what would be needed.
//
// Precondition: cat is non-nil.
func (s *System) CanUnlock(d *Data, inv *inventory.Inventory, cat *catalog.Catalog) UnlockAssessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canUnlock(d, inv, cat)
}

// canUnlock is CanUnlock with the lock held.
func (s *System) canUnlock(d *Data, inv *inventory.Inventory, cat *catalog.Catalog) UnlockAssessment {
	if !d.IsLocked {
		return UnlockAssessment{CanUnlock: true}
	}

	var a UnlockAssessment
	if d.KeyRequired != "" {
		if inv.Has(d.KeyRequired, 1) {
			a.CanUnlock = true
			a.Methods = append(a.Methods, MethodKey)
		} else {
			a.RequiredItems = append(a.RequiredItems, d.KeyRequired)
		}
	}
	if d.LockDifficulty > 0 {
		if hasLockpick(inv, cat) {
			a.CanUnlock = true
			a.Methods = append(a.Methods, MethodLockpick)
			a.Difficulty = d.LockDifficulty
		} else {
			a.RequiredSkills = append(a.RequiredSkills, "lockpicking")
			a.Difficulty = d.LockDifficulty
		}
	}
	return a
}

// hasLockpick reports whether the inventory holds any lockpick: the "lockpick"
// item itself, or any item the catalog tags as one.
func hasLockpick(inv *inventory.Inventory, cat *catalog.Catalog) bool {
	for id := range inv.Summary() {
		if id == "lockpick" {
			return true
		}
		def, ok := cat.ByID(id)
		if !ok {
			continue
		}
		for _, tag := range def.Tags {
			if tag == LockpickTag {
				return true
			}
		}
	}
	return false
}

// Unlock opens a locked container using the given method ("auto" picks the
// first acceptable one). A second unlock of an open container is a no-op
// success and emits nothing.
//
// Precondition: cat is non-nil.
// Postcondition: on success IsLocked is false and exactly one
// container_unlocked event carrying the method was emitted; the key is
// consumed only when its properties.consumed_on_use is true.
func (s *System) Unlock(d *Data, inv *inventory.Inventory, method string, cat *catalog.Catalog) (string, error) {
	chosen, opened, err := s.unlock(d, inv, method, cat)
	if err != nil || !opened {
		return chosen, err
	}

	s.logger.Info("container unlocked",
		zap.String("container_id", d.ID),
		zap.String("method", chosen),
	)
	s.bus.Emit(events.ContainerUnlocked, "container_system", map[string]any{
		"container_id": d.ID,
		"location_id":  d.LocationID,
		"method":       chosen,
	})
	return chosen, nil
}

// unlock performs the locked portion of Unlock; opened is false for the
// no-op path.
func (s *System) unlock(d *Data, inv *inventory.Inventory, method string, cat *catalog.Catalog) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !d.IsLocked {
		return "", false, nil
	}

	a := s.canUnlock(d, inv, cat)
	if !a.CanUnlock {
		return "", false, fmt.Errorf("container: Unlock: %s stays locked (required items %v, required skills %v)",
			d.Name, a.RequiredItems, a.RequiredSkills)
	}

	chosen := ""
	for _, m := range a.Methods {
		if method == MethodAuto || method == "" || method == m {
			chosen = m
			break
		}
	}
	if chosen == "" {
		return "", false, fmt.Errorf("container: Unlock: method %q is not available for %s", method, d.Name)
	}

	if chosen == MethodKey {
		if def, ok := cat.ByID(d.KeyRequired); ok && def.BoolProp("consumed_on_use") {
			inv.Remove(d.KeyRequired, 1)
		}
	}

	d.IsLocked = false
	return chosen, true, nil
}
