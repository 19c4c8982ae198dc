package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	saveSuffix      = "_world_state.json"
	backupDirName   = "backups"
	backupTimestamp = "2006-01-02T15-04-05Z"
)

// DefaultKeepCount is the number of backups retained per game when no
// override is configured.
const DefaultKeepCount = 10

// FileBackend stores one JSON file per game under a save directory, with
// timestamped backups under backups/. Writes go to a temp file first and are
// swapped in with an atomic rename, so a crash mid-write never corrupts the
// previous save.
type FileBackend struct {
	logger    *zap.Logger
	dir       string
	keepCount int
}

// NewFileBackend creates the save and backup directories as needed.
//
// Precondition: logger must not be nil. keepCount <= 0 uses DefaultKeepCount.
func NewFileBackend(logger *zap.Logger, dir string, keepCount int) (*FileBackend, error) {
	if keepCount <= 0 {
		keepCount = DefaultKeepCount
	}
	if err := os.MkdirAll(filepath.Join(dir, backupDirName), 0o755); err != nil {
		return nil, fmt.Errorf("persistence: NewFileBackend: creating %q: %w", dir, err)
	}
	return &FileBackend{logger: logger, dir: dir, keepCount: keepCount}, nil
}

// savePath returns the on-disk path for a game's current save.
func (b *FileBackend) savePath(gameID string) string {
	return filepath.Join(b.dir, gameID+saveSuffix)
}

// Save writes blob via temp-then-rename.
//
// Postcondition: on success the save file holds exactly blob; on failure the
// previous save file is untouched.
func (b *FileBackend) Save(gameID string, blob []byte) error {
	path := b.savePath(gameID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("persistence: FileBackend.Save: writing temp for %q: %w", gameID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("persistence: FileBackend.Save: renaming for %q: %w", gameID, err)
	}
	b.logger.Debug("game saved",
		zap.String("game_id", gameID),
		zap.Int("bytes", len(blob)),
	)
	return nil
}

// Load reads the current save for gameID.
func (b *FileBackend) Load(gameID string) ([]byte, bool, error) {
	blob, err := os.ReadFile(b.savePath(gameID))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("persistence: FileBackend.Load: reading %q: %w", gameID, err)
	}
	return blob, true, nil
}

// Delete removes the save file for gameID.
func (b *FileBackend) Delete(gameID string) error {
	err := os.Remove(b.savePath(gameID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("persistence: FileBackend.Delete: %q: %w", gameID, err)
	}
	return nil
}

// List returns every game ID with a current save, sorted.
func (b *FileBackend) List() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("persistence: FileBackend.List: reading %q: %w", b.dir, err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasSuffix(name, saveSuffix) {
			ids = append(ids, strings.TrimSuffix(name, saveSuffix))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Backup copies gameID's current save to
// backups/<id>_world_state_backup_<UTC>.json and trims the oldest backups
// beyond the retention count.
//
// Postcondition: backing up a game with no save is a no-op.
func (b *FileBackend) Backup(gameID string, at time.Time) error {
	blob, found, err := b.Load(gameID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	name := fmt.Sprintf("%s_world_state_backup_%s.json", gameID, at.UTC().Format(backupTimestamp))
	path := filepath.Join(b.dir, backupDirName, name)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("persistence: FileBackend.Backup: writing %q: %w", name, err)
	}
	b.logger.Info("backup written",
		zap.String("game_id", gameID),
		zap.String("file", name),
	)
	return b.trimBackups(gameID)
}

// trimBackups deletes the oldest backups of gameID beyond keepCount. Backup
// filenames sort chronologically, so lexicographic order is age order.
func (b *FileBackend) trimBackups(gameID string) error {
	dir := filepath.Join(b.dir, backupDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("persistence: FileBackend.trimBackups: reading %q: %w", dir, err)
	}

	prefix := gameID + "_world_state_backup_"
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for len(names) > b.keepCount {
		victim := names[0]
		names = names[1:]
		if err := os.Remove(filepath.Join(dir, victim)); err != nil {
			return fmt.Errorf("persistence: FileBackend.trimBackups: removing %q: %w", victim, err)
		}
		b.logger.Debug("old backup trimmed",
			zap.String("game_id", gameID),
			zap.String("file", victim),
		)
	}
	return nil
}
