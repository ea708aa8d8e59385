package entities

import (
	"time"
)

type WorkStatus string

const (
	WorkStatusOngoing   WorkStatus = "ongoing"
	WorkStatusCompleted WorkStatus = "completed"
	WorkStatusHiatus    WorkStatus = "hiatus"
)

// ValidWorkStatus reports whether s is one of the allowed catalog statuses.
func ValidWorkStatus(s WorkStatus) bool {
	switch s {
	case WorkStatusOngoing, WorkStatusCompleted, WorkStatusHiatus:
		return true
	}
	return false
}

// Work is a catalog item representing a serialized manga/manhua.
// Rating aggregates are derived from library entries at query time and are
// never stored on the row.
type Work struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"index;size:512;not null" json:"title"`
	OriginalTitle *string    `gorm:"size:512" json:"originalTitle"`
	Status        WorkStatus `gorm:"size:20;not null;default:ongoing" json:"status"`
	CoverURL      *string    `gorm:"size:2048" json:"coverUrl"`
	Synopsis      *string    `json:"synopsis"`
	CreatedBy     *uint      `gorm:"index" json:"createdBy"`
	Creator       *User      `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
