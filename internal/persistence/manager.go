package persistence

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/events"
	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/container"
	"github.com/cory-johannsen/fablemud/internal/game/session"
	"github.com/cory-johannsen/fablemud/internal/game/world"
)

// dirtyFlags tracks which world-state sections have mutated since the last
// save. Flags are set by bus handlers and read under the manager's mutex so
// the auto-save loop sees a stable view per evaluation.
type dirtyFlags struct {
	locations  bool
	containers bool
	player     bool
	global     bool
}

func (d dirtyFlags) any() bool {
	return d.locations || d.containers || d.player || d.global
}

// Manager owns serialization, validation, dirty tracking, and the save
// schedule for one game.
type Manager struct {
	logger     *zap.Logger
	backend    Backend
	gameID     string
	sessions   *session.Manager
	containers *container.System
	worlds     *world.Manager

	mu         sync.Mutex
	dirty      dirtyFlags
	dirtyCount int
	cached     *WorldState
	lastSave   time.Time
	lastBackup time.Time
	global     map[string]any
}

// NewManager wires a persistence manager for gameID.
//
// Precondition: all arguments must be non-nil.
func NewManager(logger *zap.Logger, backend Backend, gameID string, sessions *session.Manager, containers *container.System, worlds *world.Manager) *Manager {
	return &Manager{
		logger:     logger,
		backend:    backend,
		gameID:     gameID,
		sessions:   sessions,
		containers: containers,
		worlds:     worlds,
		global:     map[string]any{},
	}
}

// Bind subscribes the manager's dirty tracking to the integration bus.
// Every facade or container mutation marks the matching section dirty.
func (m *Manager) Bind(bus *events.Bus) {
	mark := func(update func(*dirtyFlags)) events.Handler {
		return func(events.Event) {
			m.mu.Lock()
			update(&m.dirty)
			m.dirtyCount++
			m.mu.Unlock()
		}
	}
	itemFlow := mark(func(d *dirtyFlags) { d.player = true; d.containers = true })
	playerOnly := mark(func(d *dirtyFlags) { d.player = true })
	containerOnly := mark(func(d *dirtyFlags) { d.containers = true })

	bus.Subscribe(events.ItemTaken, itemFlow)
	bus.Subscribe(events.ItemDropped, itemFlow)
	bus.Subscribe(events.ItemUsed, playerOnly)
	bus.Subscribe(events.ItemGiven, playerOnly)
	bus.Subscribe(events.EquipmentChange, playerOnly)
	bus.Subscribe(events.InventoryChange, playerOnly)
	bus.Subscribe(events.ContainerUnlocked, containerOnly)
	bus.Subscribe(events.ContainerItemAdded, containerOnly)
	bus.Subscribe(events.ContainerItemRemoved, containerOnly)
	bus.Subscribe(events.LocationChange, mark(func(d *dirtyFlags) { d.player = true; d.locations = true }))
	bus.Subscribe(events.WorldStateChange, mark(func(d *dirtyFlags) { d.locations = true; d.global = true }))
}

// SetGlobal records an opaque global-state value carried through saves.
func (m *Manager) SetGlobal(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.global[key] = value
	m.dirty.global = true
	m.dirtyCount++
}

// snapshotLocations renders the current world locations.
func (m *Manager) snapshotLocations() map[string]LocationState {
	out := make(map[string]LocationState)
	for _, id := range m.worlds.LocationIDs() {
		loc, ok := m.worlds.Location(id)
		if !ok {
			continue
		}
		props := make(map[string]any, len(loc.Properties))
		for k, v := range loc.Properties {
			props[k] = v
		}
		out[id] = LocationState{
			Name:       loc.Name,
			Type:       string(loc.Type),
			Properties: props,
		}
	}
	return out
}

// Save captures the current world state and writes it through the backend.
//
// partial=true serializes only dirty sections, merged over the last cached
// snapshot. partial=false requires a complete state and fails validation
// otherwise. A failed backend write is retried once.
//
// Postcondition: on success all dirty flags are clear and the cached
// snapshot matches what was written.
func (m *Manager) Save(partial bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.buildState(partial)
	if err := Validate(state, partial); err != nil {
		return fmt.Errorf("persistence: Manager.Save: game %q: %w", m.gameID, err)
	}

	now := time.Now().UTC()
	blob, err := Encode(m.gameID, state, now)
	if err != nil {
		return err
	}
	if err := m.backend.Save(m.gameID, blob); err != nil {
		m.logger.Warn("save failed, retrying once",
			zap.String("game_id", m.gameID),
			zap.Error(err),
		)
		if err := m.backend.Save(m.gameID, blob); err != nil {
			return fmt.Errorf("persistence: Manager.Save: game %q: %w", m.gameID, err)
		}
	}

	m.cached = state
	m.dirty = dirtyFlags{}
	m.dirtyCount = 0
	m.lastSave = now
	m.sessions.MarkSaved(now)
	m.logger.Info("world state saved",
		zap.String("game_id", m.gameID),
		zap.Bool("partial", partial),
		zap.Int("players", len(state.Players)),
		zap.Int("containers", len(state.Containers)),
	)
	return nil
}

// buildState assembles the state to write. In partial mode only dirty
// sections are re-captured; clean sections come from the cached snapshot.
// Caller holds m.mu.
func (m *Manager) buildState(partial bool) *WorldState {
	base := &WorldState{
		Locations:  map[string]LocationState{},
		Containers: map[string]container.State{},
		Players:    map[string]session.Snapshot{},
		Global:     map[string]any{},
	}
	if partial && m.cached != nil {
		base = m.cached
	}

	capture := func(section bool) bool { return !partial || section || m.cached == nil }

	state := &WorldState{
		Locations:  base.Locations,
		Containers: base.Containers,
		Players:    base.Players,
		Global:     base.Global,
	}
	if capture(m.dirty.locations) {
		state.Locations = m.snapshotLocations()
	}
	if capture(m.dirty.containers) {
		state.Containers = m.containers.Snapshot()
	}
	if capture(m.dirty.player) {
		state.Players = m.sessions.Snapshots()
	}
	if capture(m.dirty.global) {
		global := make(map[string]any, len(m.global))
		for k, v := range m.global {
			global[k] = v
		}
		state.Global = global
	}
	return state
}

// Load reads, validates, and restores the saved state for the manager's
// game.
//
// Postcondition: on success sessions and containers mirror the save and the
// state is cached for partial merges; (false, nil) means no save exists.
func (m *Manager) Load(cat *catalog.Catalog) (bool, error) {
	blob, found, err := m.backend.Load(m.gameID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	meta, state, err := Decode(blob)
	if err != nil {
		return false, err
	}
	if err := Validate(state, false); err != nil {
		return false, fmt.Errorf("persistence: Manager.Load: game %q: %w", m.gameID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.sessions.Restore(state.Players, cat); err != nil {
		return false, fmt.Errorf("persistence: Manager.Load: game %q: %w", m.gameID, err)
	}
	if err := m.containers.Restore(state.Containers, cat); err != nil {
		return false, fmt.Errorf("persistence: Manager.Load: game %q: %w", m.gameID, err)
	}
	m.global = state.Global
	if m.global == nil {
		m.global = map[string]any{}
	}
	m.cached = state
	m.dirty = dirtyFlags{}
	m.dirtyCount = 0
	m.lastSave = meta.SavedAt

	m.logger.Info("world state loaded",
		zap.String("game_id", m.gameID),
		zap.Time("saved_at", meta.SavedAt),
		zap.Int("players", len(state.Players)),
	)
	return true, nil
}

// Backup copies the current save to cold storage.
func (m *Manager) Backup() error {
	now := time.Now().UTC()
	if err := m.backend.Backup(m.gameID, now); err != nil {
		return err
	}
	m.mu.Lock()
	m.lastBackup = now
	m.mu.Unlock()
	return nil
}

// Delete removes the game's save.
func (m *Manager) Delete() error {
	return m.backend.Delete(m.gameID)
}

// Dirty reports whether any section has pending changes.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty.any()
}
