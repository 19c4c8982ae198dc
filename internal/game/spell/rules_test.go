package spell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/game/world"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestRuleEngineWithoutScripts(t *testing.T) {
	e := NewRuleEngine(zap.NewNop())
	defer e.Close()

	loc := &world.Location{ID: "shrine", Name: "Shrine",
		MagicalAffinities: map[string]float64{"fire": 0.8}}
	layers := e.ModificationsFor(loc)
	require.Len(t, layers, 1, "only the affinity layer applies")
	assert.Equal(t, []string{"fire"}, layers[0].AddedElements)

	assert.Len(t, e.ModificationsFor(nil), 1)
}

func TestRuleEngineScriptHook(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "caves.lua", `
function spell_modifiers(location_id, location_type)
  if location_type == "cave" then
    return { power_multiplier = 1.5, duration_shift = 1,
             added_elements = { "earth" } }
  end
  return {}
end
`)

	e := NewRuleEngine(zap.NewNop())
	defer e.Close()
	require.NoError(t, e.LoadScripts(dir, 0))

	cave := &world.Location{ID: "deep_cave", Name: "Deep Cave", Type: world.TypeCave}
	layers := e.ModificationsFor(cave)
	require.Len(t, layers, 2)
	assert.InDelta(t, 1.5, layers[1].PowerMultiplier, 1e-9)
	assert.Equal(t, 1, layers[1].DurationShift)
	assert.Equal(t, []string{"earth"}, layers[1].AddedElements)

	village := &world.Location{ID: "square", Name: "Square", Type: world.TypeVillage}
	layers = e.ModificationsFor(village)
	require.Len(t, layers, 2)
	assert.Equal(t, Identity(), layers[1], "an empty table reads as identity")
}

func TestRuleEngineScriptsLoadInOrder(t *testing.T) {
	dir := t.TempDir()
	// Lexicographic order: the later file overrides the earlier hook.
	writeScript(t, dir, "a_base.lua", `
function spell_modifiers(location_id, location_type)
  return { power_multiplier = 2 }
end
`)
	writeScript(t, dir, "b_override.lua", `
function spell_modifiers(location_id, location_type)
  return { power_multiplier = 3 }
end
`)

	e := NewRuleEngine(zap.NewNop())
	defer e.Close()
	require.NoError(t, e.LoadScripts(dir, 0))

	layers := e.ModificationsFor(&world.Location{ID: "x", Name: "X"})
	require.Len(t, layers, 2)
	assert.InDelta(t, 3, layers[1].PowerMultiplier, 1e-9)
}

func TestRuleEngineKeepsStateOnLoadError(t *testing.T) {
	good := t.TempDir()
	writeScript(t, good, "rules.lua", `
function spell_modifiers(location_id, location_type)
  return { cost_multiplier = 0.5 }
end
`)
	bad := t.TempDir()
	writeScript(t, bad, "broken.lua", `this is not lua`)

	e := NewRuleEngine(zap.NewNop())
	defer e.Close()
	require.NoError(t, e.LoadScripts(good, 0))
	assert.Error(t, e.LoadScripts(bad, 0))

	layers := e.ModificationsFor(&world.Location{ID: "x", Name: "X"})
	require.Len(t, layers, 2, "the previous scripts stay loaded")
	assert.InDelta(t, 0.5, layers[1].CostMultiplier, 1e-9)
}

func TestRuleEngineHookFailureFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "rules.lua", `
function spell_modifiers(location_id, location_type)
  error("rule exploded")
end
`)

	e := NewRuleEngine(zap.NewNop())
	defer e.Close()
	require.NoError(t, e.LoadScripts(dir, 0))

	layers := e.ModificationsFor(&world.Location{ID: "x", Name: "X"})
	assert.Len(t, layers, 1, "a failing hook yields the affinity layer only")
}
