package entities

import (
	"time"
)

type EntryStatus string

const (
	EntryStatusPlanning  EntryStatus = "planning"
	EntryStatusReading   EntryStatus = "reading"
	EntryStatusCompleted EntryStatus = "completed"
	EntryStatusOnHold    EntryStatus = "on_hold"
	EntryStatusDropped   EntryStatus = "dropped"
)

// ValidEntryStatus reports whether s is one of the allowed tracking statuses.
func ValidEntryStatus(s EntryStatus) bool {
	switch s {
	case EntryStatusPlanning, EntryStatusReading, EntryStatusCompleted,
		EntryStatusOnHold, EntryStatusDropped:
		return true
	}
	return false
}

// Rating bounds for library entries.
const (
	MinRating = 1
	MaxRating = 10
)

// LibraryEntry is a per-user tracking record for a specific work.
// One entry per (user, work) pair; deleting either parent deletes the entry.
type LibraryEntry struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;uniqueIndex:idx_library_user_work" json:"userId"`
	WorkID    uint        `gorm:"not null;uniqueIndex:idx_library_user_work" json:"workId"`
	User      User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Work      Work        `gorm:"foreignKey:WorkID;constraint:OnDelete:CASCADE" json:"-"`
	Status    EntryStatus `gorm:"size:20;not null;default:planning" json:"status"`
	Progress  int         `gorm:"not null;default:0" json:"progress"`
	Rating    *int        `json:"rating"`
	Review    *string     `json:"review"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
