package actions

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/events"
	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/container"
	"github.com/cory-johannsen/fablemud/internal/game/session"
	"github.com/cory-johannsen/fablemud/internal/game/world"
)

// Facade is the single entry point for player item commands. It validates
// against the catalog, mutates inventory, equipment, and container state, and
// emits integration events carrying enough state to rebuild a persistence
// delta.
type Facade struct {
	logger     *zap.Logger
	cat        atomic.Pointer[catalog.Catalog]
	sessions   *session.Manager
	containers *container.System
	worlds     *world.Manager
	bus        *events.Bus
}

// NewFacade wires the facade to its collaborators.
//
// Precondition: all arguments must be non-nil.
func NewFacade(logger *zap.Logger, cat *catalog.Catalog, sessions *session.Manager, containers *container.System, worlds *world.Manager, bus *events.Bus) *Facade {
	f := &Facade{
		logger:     logger,
		sessions:   sessions,
		containers: containers,
		worlds:     worlds,
		bus:        bus,
	}
	f.cat.Store(cat)
	return f
}

// Catalog returns the current item catalog.
func (f *Facade) Catalog() *catalog.Catalog {
	return f.cat.Load()
}

// SwapCatalog atomically replaces the item catalog with a rebuilt one.
func (f *Facade) SwapCatalog(cat *catalog.Catalog) {
	f.cat.Store(cat)
}

// Sessions exposes the session manager for collaborators that render state.
func (f *Facade) Sessions() *session.Manager {
	return f.sessions
}

// Containers exposes the location container system.
func (f *Facade) Containers() *container.System {
	return f.containers
}

// Handle dispatches a facade command for the given entity.
//
// Postcondition: always returns a Result; failures carry Data["reason"].
func (f *Facade) Handle(entityID string, cmd Command, details Details) Result {
	var res Result
	switch cmd {
	case CmdTake:
		res = f.take(entityID, details)
	case CmdDrop:
		res = f.drop(entityID, details)
	case CmdUse:
		res = f.use(entityID, details)
	case CmdInventoryView:
		res = f.inventoryView(entityID)
	case CmdGive:
		res = f.give(entityID, details)
	case CmdEquip:
		res = f.equip(entityID, details)
	case CmdUnequip:
		res = f.unequip(entityID, details)
	default:
		res = fail(fmt.Sprintf("You cannot do that because %q is not a known command.", cmd), ReasonValidation)
	}

	f.logger.Debug("facade command handled",
		zap.String("entity_id", entityID),
		zap.String("command", string(cmd)),
		zap.Bool("success", res.Success),
	)
	return res
}

// take moves items from the location's ground (or a named container) into
// the player's inventory, restoring the source when the add fails.
func (f *Facade) take(entityID string, details Details) Result {
	ref := details.itemRef()
	if ref == "" {
		return fail("You cannot take that because no item was named.", ReasonMissingParameters)
	}
	cat := f.Catalog()
	def, found := cat.Resolve(ref)
	if !found {
		return fail(fmt.Sprintf("You cannot take %s because no such item exists.", ref), ReasonNotFound)
	}

	player := f.sessions.Player(entityID)
	qty := details.quantity()
	loc := player.CurrentLocation

	if details.ContainerID != "" {
		return f.takeFromContainer(player.PlayerID, details.ContainerID, def, qty)
	}

	if !f.containers.Take(loc, def.ID, qty) {
		return fail(fmt.Sprintf("You cannot take %s because it is not here.", def.Name), ReasonNotFound)
	}
	if !player.Inventory.Add(def.ID, qty, cat) {
		// Compensating action: put the items back on the ground.
		f.containers.Drop(loc, def.ID, qty, cat)
		return fail(fmt.Sprintf("You cannot take %s because you cannot carry it.", def.Name), ReasonCapacityExceeded)
	}

	f.bus.Emit(events.ItemTaken, "facade", map[string]any{
		"entity_id":   entityID,
		"item_id":     def.ID,
		"quantity":    qty,
		"location_id": loc,
	})
	return ok(fmt.Sprintf("You take %s.", def.Name), map[string]any{
		"item_id":  def.ID,
		"quantity": qty,
	})
}

// takeFromContainer handles TAKE with an explicit container id.
func (f *Facade) takeFromContainer(entityID, containerID string, def *catalog.ItemDef, qty int) Result {
	cat := f.Catalog()
	player := f.sessions.Player(entityID)

	d, found := f.containers.Find(containerID)
	if !found {
		return fail("You cannot take that because the container does not exist.", ReasonNotFound)
	}
	if d.IsHidden {
		return fail("You cannot take that because you have not found such a container.", "hidden")
	}
	if d.IsLocked {
		return f.lockedResult(d, player)
	}
	if err := f.containers.RemoveFrom(containerID, def.ID, qty); err != nil {
		return fail(fmt.Sprintf("You cannot take %s because %s does not hold it.", def.Name, d.Name), ReasonNotFound)
	}
	if !player.Inventory.Add(def.ID, qty, cat) {
		if err := f.containers.AddTo(containerID, def.ID, qty, cat); err != nil {
			f.logger.Error("compensating restore failed",
				zap.String("container_id", containerID),
				zap.String("item_id", def.ID),
				zap.Error(err),
			)
		}
		return fail(fmt.Sprintf("You cannot take %s because you cannot carry it.", def.Name), ReasonCapacityExceeded)
	}

	f.bus.Emit(events.ItemTaken, "facade", map[string]any{
		"entity_id":    entityID,
		"item_id":      def.ID,
		"quantity":     qty,
		"container_id": containerID,
		"location_id":  d.LocationID,
	})
	return ok(fmt.Sprintf("You take %s from %s.", def.Name, d.Name), map[string]any{
		"item_id":      def.ID,
		"quantity":     qty,
		"container_id": containerID,
	})
}

// lockedResult builds the locked failure carrying the unlock assessment.
func (f *Facade) lockedResult(d *container.Data, player *session.PlayerState) Result {
	a := f.containers.CanUnlock(d, player.Inventory, f.Catalog())
	res := fail(fmt.Sprintf("You cannot open %s because it is locked.", d.Name), ReasonLocked)
	res.Data["required_items"] = a.RequiredItems
	res.Data["required_skills"] = a.RequiredSkills
	if a.Difficulty > 0 {
		res.Data["difficulty"] = a.Difficulty
	}
	return res
}

// drop mirrors take: remove from the inventory first, place into the target
// container, and restore the inventory when placement fails.
func (f *Facade) drop(entityID string, details Details) Result {
	ref := details.itemRef()
	if ref == "" {
		return fail("You cannot drop that because no item was named.", ReasonMissingParameters)
	}
	cat := f.Catalog()
	def, found := cat.Resolve(ref)
	if !found {
		return fail(fmt.Sprintf("You cannot drop %s because no such item exists.", ref), ReasonNotFound)
	}

	player := f.sessions.Player(entityID)
	qty := details.quantity()

	// Resolve the target container before touching the inventory so a locked
	// container reports its unlock requirements, not a capacity failure.
	var target *container.Data
	if details.ContainerID != "" {
		d, found := f.containers.Find(details.ContainerID)
		if !found {
			return fail("You cannot put that there because the container does not exist.", ReasonNotFound)
		}
		if d.IsLocked {
			return f.lockedResult(d, player)
		}
		target = d
	}

	if !player.Inventory.Remove(def.ID, qty) {
		return fail(fmt.Sprintf("You cannot drop %s because you are not carrying it.", def.Name), ReasonNotOwned)
	}

	if target != nil {
		if err := f.containers.AddTo(target.ID, def.ID, qty, cat); err != nil {
			player.Inventory.Add(def.ID, qty, cat)
			return fail(fmt.Sprintf("You cannot put %s there.", def.Name), ReasonCapacityExceeded)
		}
	} else if !f.containers.Drop(player.CurrentLocation, def.ID, qty, cat) {
		player.Inventory.Add(def.ID, qty, cat)
		return fail(fmt.Sprintf("You cannot drop %s here.", def.Name), ReasonValidation)
	}

	f.bus.Emit(events.ItemDropped, "facade", map[string]any{
		"entity_id":    entityID,
		"item_id":      def.ID,
		"quantity":     qty,
		"location_id":  player.CurrentLocation,
		"container_id": details.ContainerID,
	})
	return ok(fmt.Sprintf("You drop %s.", def.Name), map[string]any{
		"item_id":  def.ID,
		"quantity": qty,
	})
}

// give is the admin and quest ingress path: items appear in the inventory
// without a world-side source.
func (f *Facade) give(entityID string, details Details) Result {
	ref := details.itemRef()
	if ref == "" {
		return fail("Nothing was given because no item was named.", ReasonMissingParameters)
	}
	cat := f.Catalog()
	def, found := cat.Resolve(ref)
	if !found {
		return fail(fmt.Sprintf("Nothing was given because %q is not a known item.", ref), ReasonNotFound)
	}

	player := f.sessions.Player(entityID)
	qty := details.quantity()
	if !player.Inventory.Add(def.ID, qty, cat) {
		return fail(fmt.Sprintf("You cannot receive %s because you cannot carry it.", def.Name), ReasonCapacityExceeded)
	}

	f.bus.Emit(events.ItemGiven, "facade", map[string]any{
		"entity_id": entityID,
		"item_id":   def.ID,
		"quantity":  qty,
	})
	return ok(fmt.Sprintf("You receive %s.", def.Name), map[string]any{
		"item_id":  def.ID,
		"quantity": qty,
	})
}
