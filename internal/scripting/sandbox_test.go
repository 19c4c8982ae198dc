package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestSandboxRunsPlainScripts(t *testing.T) {
	L := NewSandboxedState(0)
	defer L.Close()

	require.NoError(t, L.DoString(`answer = 6 * 7`))
	assert.Equal(t, lua.LNumber(42), L.GetGlobal("answer"))
}

func TestSandboxExposesSafeLibraries(t *testing.T) {
	L := NewSandboxedState(0)
	defer L.Close()

	require.NoError(t, L.DoString(`
		parts = {}
		table.insert(parts, string.upper("ok"))
		root = math.sqrt(16)
	`))
	assert.Equal(t, lua.LNumber(4), L.GetGlobal("root"))
}

func TestSandboxStripsDangerousGlobals(t *testing.T) {
	L := NewSandboxedState(0)
	defer L.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "%s must be stripped", name)
	}
	assert.Equal(t, lua.LNil, L.GetGlobal("os"), "os library is never opened")
	assert.Equal(t, lua.LNil, L.GetGlobal("io"), "io library is never opened")
}

func TestSandboxEnforcesInstructionLimit(t *testing.T) {
	L := NewSandboxedState(1000)
	defer L.Close()

	err := L.DoString(`while true do end`)
	require.Error(t, err, "an unbounded loop must be cut off")
}

func TestSandboxLimitAllowsShortScripts(t *testing.T) {
	L := NewSandboxedState(10_000)
	defer L.Close()

	assert.NoError(t, L.DoString(`
		local sum = 0
		for i = 1, 100 do sum = sum + i end
		total = sum
	`))
	assert.Equal(t, lua.LNumber(5050), L.GetGlobal("total"))
}
