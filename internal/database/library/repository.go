// Package library provides database operations for per-user library
// entries and their joined work summaries.
package library

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"manhua-tracker/internal/database"
	"manhua-tracker/internal/entities"
)

var (
	// ErrDuplicate signals that the (user, work) pair already has an entry.
	ErrDuplicate = errors.New("work already in library")
	// ErrNotFound signals that no matching entry row exists.
	ErrNotFound = errors.New("library entry not found")
)

// WorkSummary is the slice of a work shown inside a library entry.
type WorkSummary struct {
	ID       uint                `json:"id"`
	Title    string              `json:"title"`
	CoverURL *string             `json:"coverUrl"`
	Status   entities.WorkStatus `json:"status"`
	Synopsis *string             `json:"synopsis"`
}

// EntryView is a library entry joined with its work summary and the owning
// username, as returned by the API.
type EntryView struct {
	ID        uint                 `json:"id"`
	UserID    uint                 `json:"userId"`
	Username  string               `json:"username"`
	WorkID    uint                 `json:"workId"`
	Status    entities.EntryStatus `json:"status"`
	Progress  int                  `json:"progress"`
	Rating    *int                 `json:"rating"`
	Review    *string              `json:"review"`
	UpdatedAt time.Time            `json:"updatedAt"`
	Work      WorkSummary          `json:"work"`
}

// entryRow is the flat scan target for the joined query.
type entryRow struct {
	ID           uint
	UserID       uint
	Username     string
	WorkID       uint
	Status       entities.EntryStatus
	Progress     int
	Rating       *int
	Review       *string
	UpdatedAt    time.Time
	WorkTitle    string
	WorkCoverURL *string `gorm:"column:work_cover_url"`
	WorkStatus   entities.WorkStatus
	WorkSynopsis *string
}

func (row entryRow) view() EntryView {
	return EntryView{
		ID:        row.ID,
		UserID:    row.UserID,
		Username:  row.Username,
		WorkID:    row.WorkID,
		Status:    row.Status,
		Progress:  row.Progress,
		Rating:    row.Rating,
		Review:    row.Review,
		UpdatedAt: row.UpdatedAt,
		Work: WorkSummary{
			ID:       row.WorkID,
			Title:    row.WorkTitle,
			CoverURL: row.WorkCoverURL,
			Status:   row.WorkStatus,
			Synopsis: row.WorkSynopsis,
		},
	}
}

// Repository handles all library entry database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new library repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const viewSelect = "library_entries.id, library_entries.user_id, users.username, " +
	"library_entries.work_id, library_entries.status, library_entries.progress, " +
	"library_entries.rating, library_entries.review, library_entries.updated_at, " +
	"works.title AS work_title, works.cover_url AS work_cover_url, " +
	"works.status AS work_status, works.synopsis AS work_synopsis"

func (r *Repository) viewQuery() *gorm.DB {
	return r.db.Model(&entities.LibraryEntry{}).
		Select(viewSelect).
		Joins("JOIN works ON works.id = library_entries.work_id").
		Joins("JOIN users ON users.id = library_entries.user_id")
}

// ListForUser returns a user's entries, most recently updated first.
func (r *Repository) ListForUser(userID uint) ([]EntryView, error) {
	var rows []entryRow
	err := r.viewQuery().
		Where("library_entries.user_id = ?", userID).
		Order("library_entries.updated_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, 0, len(rows))
	for _, row := range rows {
		views = append(views, row.view())
	}
	return views, nil
}

// GetView returns a single entry joined with its work and owner.
func (r *Repository) GetView(id uint) (*EntryView, error) {
	var rows []entryRow
	err := r.viewQuery().Where("library_entries.id = ?", id).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	view := rows[0].view()
	return &view, nil
}

// Get returns the raw entry row, used for ownership checks.
func (r *Repository) Get(id uint) (*entities.LibraryEntry, error) {
	var entry entities.LibraryEntry
	err := r.db.First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Create inserts a new entry. At most one entry may exist per (user, work)
// pair; a second insert fails with ErrDuplicate.
func (r *Repository) Create(entry *entities.LibraryEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Update overwrites the tracking fields and always refreshes the updated
// timestamp. Callers resolve partial-update defaulting before calling.
func (r *Repository) Update(id uint, status entities.EntryStatus, progress int, rating *int, review *string) error {
	return r.db.Model(&entities.LibraryEntry{}).Where("id = ?", id).Updates(map[string]any{
		"status":     status,
		"progress":   progress,
		"rating":     rating,
		"review":     review,
		"updated_at": time.Now(),
	}).Error
}

// Delete removes an entry.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.LibraryEntry{}, id).Error
}
