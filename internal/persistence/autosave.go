package persistence

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Auto-save schedule defaults.
const (
	DefaultAutoSaveInterval = 300 * time.Second
	DefaultBackupInterval   = 3600 * time.Second
	DefaultPollInterval     = 30 * time.Second
	DefaultDirtyThreshold   = 50
)

// AutoSavePolicy configures the background save and backup schedule.
type AutoSavePolicy struct {
	Enabled        bool
	Interval       time.Duration
	BackupInterval time.Duration
	Poll           time.Duration
	DirtyThreshold int
}

// DefaultAutoSavePolicy returns the stock schedule.
func DefaultAutoSavePolicy() AutoSavePolicy {
	return AutoSavePolicy{
		Enabled:        true,
		Interval:       DefaultAutoSaveInterval,
		BackupInterval: DefaultBackupInterval,
		Poll:           DefaultPollInterval,
		DirtyThreshold: DefaultDirtyThreshold,
	}
}

// normalize fills zero fields with defaults.
func (p AutoSavePolicy) normalize() AutoSavePolicy {
	if p.Interval <= 0 {
		p.Interval = DefaultAutoSaveInterval
	}
	if p.BackupInterval <= 0 {
		p.BackupInterval = DefaultBackupInterval
	}
	if p.Poll <= 0 {
		p.Poll = DefaultPollInterval
	}
	if p.DirtyThreshold <= 0 {
		p.DirtyThreshold = DefaultDirtyThreshold
	}
	return p
}

// ShouldAutoSave evaluates the save conditions under one stable view of the
// dirty state: auto-save enabled, an active session, pending changes, and
// either no prior save, an elapsed interval, or enough accumulated changes.
func (m *Manager) ShouldAutoSave(policy AutoSavePolicy, now time.Time) bool {
	if !policy.Enabled {
		return false
	}
	if m.sessions.PlayerCount() == 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty.any() {
		return false
	}
	if m.lastSave.IsZero() {
		return true
	}
	if now.Sub(m.lastSave) >= policy.Interval {
		return true
	}
	return m.dirtyCount >= policy.DirtyThreshold
}

// ShouldBackup reports whether the backup interval has elapsed. Backups run
// on their own clock, independent of the dirty state.
func (m *Manager) ShouldBackup(policy AutoSavePolicy, now time.Time) bool {
	if !policy.Enabled {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastSave.IsZero() {
		// Nothing has ever been written; a backup would be empty.
		return false
	}
	return m.lastBackup.IsZero() || now.Sub(m.lastBackup) >= policy.BackupInterval
}

// RunAutoSave polls the save and backup conditions until ctx is cancelled.
// Saves in this loop are partial merges; a final partial save runs on
// shutdown when changes are pending.
func (m *Manager) RunAutoSave(ctx context.Context, policy AutoSavePolicy) {
	policy = policy.normalize()
	ticker := time.NewTicker(policy.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if m.Dirty() {
				if err := m.Save(true); err != nil {
					m.logger.Error("final save on shutdown failed", zap.Error(err))
				}
			}
			return
		case <-ticker.C:
			now := time.Now().UTC()
			if m.ShouldAutoSave(policy, now) {
				if err := m.Save(true); err != nil {
					m.logger.Error("auto-save failed", zap.Error(err))
				}
			}
			if m.ShouldBackup(policy, now) {
				if err := m.Backup(); err != nil {
					m.logger.Error("scheduled backup failed", zap.Error(err))
				}
			}
		}
	}
}
