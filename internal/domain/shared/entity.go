package shared

import "time"

// SyncTimestamps provides the engine-owned audit timestamps every
// synchronized entity carries. The auto-time features of the ORM are
// disabled so the engine's clock stays the single source of truth.
type SyncTimestamps struct {
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"-"`
}

// Stamp sets updated-at on every write and created-at only on creation
func (t *SyncTimestamps) Stamp(now time.Time, created bool) {
	if created {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// GetCreatedAt returns the creation timestamp
func (t *SyncTimestamps) GetCreatedAt() time.Time {
	return t.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (t *SyncTimestamps) GetUpdatedAt() time.Time {
	return t.UpdatedAt
}
