// Package persistence saves and restores world state. A pluggable Backend
// owns the bytes-at-rest; the Manager owns serialization, validation, dirty
// tracking, and the auto-save/backup schedule.
package persistence

import "time"

// Backend stores one opaque blob per game.
type Backend interface {
	// Save writes blob for gameID, replacing any previous save atomically.
	Save(gameID string, blob []byte) error
	// Load returns the saved blob for gameID, or (nil, false, nil) when the
	// game has never been saved.
	Load(gameID string) ([]byte, bool, error)
	// Delete removes the save for gameID. Deleting a missing game is not an
	// error.
	Delete(gameID string) error
	// List returns the IDs of every saved game.
	List() ([]string, error)
	// Backup copies the current save of gameID to timestamped cold storage
	// and applies the retention policy.
	Backup(gameID string, at time.Time) error
}
