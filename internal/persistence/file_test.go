package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testBackend(t *testing.T, keepCount int) (*FileBackend, string) {
	t.Helper()
	dir := t.TempDir()
	b, err := NewFileBackend(zap.NewNop(), dir, keepCount)
	require.NoError(t, err)
	return b, dir
}

func TestFileBackendSaveLoadDelete(t *testing.T) {
	b, dir := testBackend(t, 0)

	_, found, err := b.Load("alpha")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, b.Save("alpha", []byte(`{"v":1}`)))
	blob, found, err := b.Load("alpha")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"v":1}`, string(blob))

	// The save lives under the expected name, with no temp leftovers.
	_, err = os.Stat(filepath.Join(dir, "alpha_world_state.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "alpha_world_state.json.tmp"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, b.Save("alpha", []byte(`{"v":2}`)))
	blob, _, _ = b.Load("alpha")
	assert.JSONEq(t, `{"v":2}`, string(blob), "a second save replaces the first")

	require.NoError(t, b.Delete("alpha"))
	_, found, err = b.Load("alpha")
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, b.Delete("alpha"), "deleting a missing save is a no-op")
}

func TestFileBackendList(t *testing.T) {
	b, dir := testBackend(t, 0)

	ids, err := b.List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, b.Save("beta", []byte(`{}`)))
	require.NoError(t, b.Save("alpha", []byte(`{}`)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	ids, err = b.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, ids, "ids are sorted, non-saves ignored")
}

func TestFileBackendBackupAndRetention(t *testing.T) {
	b, dir := testBackend(t, 2)

	// Backing up a game with no save writes nothing.
	require.NoError(t, b.Backup("alpha", time.Now()))
	entries, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, b.Save("alpha", []byte(`{"v":1}`)))
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Backup("alpha", base.Add(time.Duration(i)*time.Hour)))
	}

	entries, err = os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	require.Len(t, entries, 2, "retention keeps the newest two")
	assert.Equal(t, "alpha_world_state_backup_2026-08-25T11-00-00Z.json", entries[0].Name())
	assert.Equal(t, "alpha_world_state_backup_2026-08-25T12-00-00Z.json", entries[1].Name())
}

func TestFileBackendRetentionIsPerGame(t *testing.T) {
	b, dir := testBackend(t, 1)
	require.NoError(t, b.Save("alpha", []byte(`{}`)))
	require.NoError(t, b.Save("beta", []byte(`{}`)))

	at := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	require.NoError(t, b.Backup("alpha", at))
	require.NoError(t, b.Backup("beta", at))
	require.NoError(t, b.Backup("alpha", at.Add(time.Hour)))

	entries, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "trimming alpha's backups leaves beta's alone")
}
