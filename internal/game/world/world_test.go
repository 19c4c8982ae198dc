package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := &Location{ID: "square", Name: "Village Square"}
	assert.NoError(t, valid.Validate())

	cases := []Location{
		{Name: "No ID"},
		{ID: "x"},
		{ID: "x", Name: "X", Exits: []Exit{{Direction: "north"}}},
		{ID: "x", Name: "X", MagicalAffinities: map[string]float64{"fire": 1.5}},
		{ID: "x", Name: "X", MagicalAffinities: map[string]float64{"fire": -0.1}},
	}
	for i := range cases {
		assert.Error(t, cases[i].Validate(), "case %d should be invalid", i)
	}
}

func TestDominantElements(t *testing.T) {
	loc := &Location{
		ID: "shrine", Name: "Shrine",
		MagicalAffinities: map[string]float64{"fire": 0.8, "water": 0.5, "earth": 0.2},
	}
	assert.ElementsMatch(t, []string{"fire", "water"}, loc.DominantElements(0.5))
	assert.Empty(t, loc.DominantElements(0.9))
}

func TestLoadBytes(t *testing.T) {
	locs, err := LoadBytes([]byte(`
locations:
  - id: village_square
    name: Village Square
    description: The heart of the village.
    type: village
    exits:
      - direction: north
        target: dark_cave
      - direction: down
        target: old_cellar
        hidden: true
    magical_affinities:
      earth: 0.6
  - id: dark_cave
    name: Dark Cave
`))
	require.NoError(t, err)
	require.Len(t, locs, 2)

	square := locs[0]
	assert.Equal(t, TypeVillage, square.Type)
	require.Len(t, square.Exits, 2)
	assert.True(t, square.Exits[1].Hidden)
	assert.InDelta(t, 0.6, square.MagicalAffinities["earth"], 1e-9)

	assert.Equal(t, TypeGeneric, locs[1].Type, "missing type defaults to generic")
}

func TestLoadBytesRejectsInvalidLocation(t *testing.T) {
	_, err := LoadBytes([]byte(`
locations:
  - id: ""
    name: Nowhere
`))
	assert.Error(t, err)

	_, err = LoadBytes([]byte(`{not yaml`))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "village.yaml"), []byte(`
locations:
  - id: village_square
    name: Village Square
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "caves.yml"), []byte(`
locations:
  - id: dark_cave
    name: Dark Cave
    type: cave
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	locs, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, locs, 2, "only yaml files are loaded")
}

func TestManagerIndexesAndValidatesExits(t *testing.T) {
	square := &Location{ID: "square", Name: "Square",
		Exits: []Exit{{Direction: "north", Target: "cave"}}}
	cave := &Location{ID: "cave", Name: "Cave"}

	m, err := NewManager([]*Location{square, cave})
	require.NoError(t, err)
	assert.Equal(t, "square", m.StartLocation(), "the first location is the start")
	assert.NoError(t, m.ValidateExits())

	got, ok := m.Location("cave")
	require.True(t, ok)
	assert.Same(t, cave, got)
	_, ok = m.Location("void")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"square", "cave"}, m.LocationIDs())
	assert.Equal(t, map[string]string{"square": "Square", "cave": "Cave"}, m.Names())
}

func TestManagerRejectsEmptyAndDuplicates(t *testing.T) {
	_, err := NewManager(nil)
	assert.Error(t, err)

	dup := &Location{ID: "square", Name: "Square"}
	_, err = NewManager([]*Location{dup, dup})
	assert.Error(t, err)
}

func TestValidateExitsFlagsDanglingTarget(t *testing.T) {
	loc := &Location{ID: "square", Name: "Square",
		Exits: []Exit{{Direction: "north", Target: "nowhere"}}}
	m, err := NewManager([]*Location{loc})
	require.NoError(t, err)
	assert.Error(t, m.ValidateExits())
}
