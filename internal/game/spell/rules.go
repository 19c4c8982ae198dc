package spell

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/game/world"
	"github.com/cory-johannsen/fablemud/internal/scripting"
)

// modifiersHook is the Lua function a rule script defines to modulate spells:
//
//	function spell_modifiers(location_id, location_type)
//	  return { power_multiplier = 1.2, duration_shift = 1,
//	           added_elements = { "fire" } }
//	end
const modifiersHook = "spell_modifiers"

// RuleEngine derives spell modifications for a location, preferring a loaded
// Lua rule script and falling back to the built-in affinity derivation.
//
// The single LState is serialized by a mutex; rule evaluation is quick and
// bounded by the sandbox instruction limit.
type RuleEngine struct {
	logger *zap.Logger

	mu    sync.Mutex
	state *lua.LState
}

// NewRuleEngine creates a RuleEngine with no scripts loaded.
//
// Precondition: logger must not be nil.
func NewRuleEngine(logger *zap.Logger) *RuleEngine {
	return &RuleEngine{logger: logger}
}

// LoadScripts executes every *.lua file in dir, in lexicographic order, in a
// fresh sandboxed VM.
//
// Postcondition: on success subsequent ModificationsFor calls consult the
// scripts' spell_modifiers hook; on error the previous state is kept.
func (e *RuleEngine) LoadScripts(dir string, instLimit int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("spell: RuleEngine.LoadScripts: reading %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	L := scripting.NewSandboxedState(instLimit)
	for _, path := range files {
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("spell: RuleEngine.LoadScripts: loading %q: %w", path, err)
		}
	}

	e.mu.Lock()
	if e.state != nil {
		e.state.Close()
	}
	e.state = L
	e.mu.Unlock()
	return nil
}

// Close releases the Lua VM.
func (e *RuleEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != nil {
		e.state.Close()
		e.state = nil
	}
}

// ModificationsFor returns the modification layers for a location: the
// built-in affinity derivation, plus the script hook's layer when a script
// defines one. Lua failures are logged and treated as no script layer.
func (e *RuleEngine) ModificationsFor(loc *world.Location) []Modifications {
	layers := []Modifications{AffinityModifications(loc)}
	if loc == nil {
		return layers
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return layers
	}

	fn := e.state.GetGlobal(modifiersHook)
	if fn == lua.LNil {
		return layers
	}

	err := e.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LString(loc.ID), lua.LString(string(loc.Type)))
	if err != nil {
		e.logger.Warn("spell rule hook failed",
			zap.String("location_id", loc.ID),
			zap.Error(err),
		)
		return layers
	}

	ret := e.state.Get(-1)
	e.state.Pop(1)
	if tbl, ok := ret.(*lua.LTable); ok {
		layers = append(layers, modificationsFromTable(tbl))
	}
	return layers
}

// modificationsFromTable decodes the Lua hook's return table.
func modificationsFromTable(tbl *lua.LTable) Modifications {
	m := Identity()
	if v, ok := tbl.RawGetString("power_multiplier").(lua.LNumber); ok {
		m.PowerMultiplier = float64(v)
	}
	if v, ok := tbl.RawGetString("cost_multiplier").(lua.LNumber); ok {
		m.CostMultiplier = float64(v)
	}
	if v, ok := tbl.RawGetString("time_multiplier").(lua.LNumber); ok {
		m.TimeMultiplier = float64(v)
	}
	if v, ok := tbl.RawGetString("duration_shift").(lua.LNumber); ok {
		m.DurationShift = int(v)
	}
	if v, ok := tbl.RawGetString("range_shift").(lua.LNumber); ok {
		m.RangeShift = int(v)
	}
	if v, ok := tbl.RawGetString("area_shift").(lua.LNumber); ok {
		m.AreaShift = int(v)
	}
	if elems, ok := tbl.RawGetString("added_elements").(*lua.LTable); ok {
		elems.ForEach(func(_, v lua.LValue) {
			if s, ok := v.(lua.LString); ok {
				m.AddedElements = append(m.AddedElements, string(s))
			}
		})
	}
	return m
}
