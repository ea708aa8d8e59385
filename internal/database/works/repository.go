// Package works provides database operations for the work catalog,
// including the rating aggregates derived from library entries.
package works

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"manhua-tracker/internal/entities"
)

// ErrNotFound signals that no matching work row exists.
var ErrNotFound = errors.New("work not found")

// WorkWithStats is a catalog row with its derived rating aggregates.
type WorkWithStats struct {
	ID            uint                `json:"id"`
	Title         string              `json:"title"`
	OriginalTitle *string             `json:"originalTitle"`
	Status        entities.WorkStatus `json:"status"`
	CoverURL      *string             `gorm:"column:cover_url" json:"coverUrl"`
	Synopsis      *string             `json:"synopsis"`
	CreatedBy     *uint               `json:"createdBy"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	AvgRating     *float64            `json:"avgRating"`
	RatingCount   int                 `json:"ratingCount"`
	EntryCount    int                 `json:"entryCount"`
}

// Review is a library entry joined with its reviewer's username, as shown
// on a work's detail view.
type Review struct {
	ID        uint                 `json:"id"`
	UserID    uint                 `json:"userId"`
	Username  string               `json:"username"`
	Rating    *int                 `json:"rating"`
	Review    *string              `json:"review"`
	Status    entities.EntryStatus `json:"status"`
	Progress  int                  `json:"progress"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Search string
	Status entities.WorkStatus
}

// Repository handles all work catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new works repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const statsSelect = "works.id, works.title, works.original_title, works.status, " +
	"works.cover_url, works.synopsis, works.created_by, works.created_at, works.updated_at, " +
	"AVG(library_entries.rating) AS avg_rating, " +
	"COUNT(library_entries.rating) AS rating_count, " +
	"COUNT(library_entries.id) AS entry_count"

func (r *Repository) statsQuery() *gorm.DB {
	return r.db.Model(&entities.Work{}).
		Select(statsSelect).
		Joins("LEFT JOIN library_entries ON library_entries.work_id = works.id").
		Group("works.id")
}

func applyFilter(q *gorm.DB, filter ListFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("works.title LIKE ? OR works.original_title LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		q = q.Where("works.status = ?", filter.Status)
	}
	return q
}

// List returns a page of works with aggregates, ordered case-insensitively
// by title, plus the total row count for the same filter.
func (r *Repository) List(filter ListFilter, limit, offset int) ([]WorkWithStats, int64, error) {
	var total int64
	err := applyFilter(r.db.Model(&entities.Work{}), filter).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	rows := make([]WorkWithStats, 0)
	err = applyFilter(r.statsQuery(), filter).
		Order("works.title COLLATE NOCASE").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	for i := range rows {
		rows[i].AvgRating = roundRating(rows[i].AvgRating)
	}

	return rows, total, nil
}

// GetWithStats returns a single work with its aggregates.
func (r *Repository) GetWithStats(id uint) (*WorkWithStats, error) {
	var rows []WorkWithStats
	err := r.statsQuery().Where("works.id = ?", id).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	row := rows[0]
	row.AvgRating = roundRating(row.AvgRating)
	return &row, nil
}

// Reviews returns the 10 most recently updated library entries for a work,
// joined with the reviewer's username.
func (r *Repository) Reviews(workID uint) ([]Review, error) {
	reviews := make([]Review, 0)
	err := r.db.Model(&entities.LibraryEntry{}).
		Select("library_entries.id, library_entries.user_id, users.username, "+
			"library_entries.rating, library_entries.review, library_entries.status, "+
			"library_entries.progress, library_entries.updated_at").
		Joins("JOIN users ON users.id = library_entries.user_id").
		Where("library_entries.work_id = ?", workID).
		Order("library_entries.updated_at DESC").
		Limit(10).
		Scan(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// Create inserts a new catalog entry.
func (r *Repository) Create(work *entities.Work) error {
	return r.db.Create(work).Error
}

// Get returns the raw work row without aggregates.
func (r *Repository) Get(id uint) (*entities.Work, error) {
	var work entities.Work
	err := r.db.First(&work, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &work, nil
}

// Exists reports whether a work row with the given id exists.
func (r *Repository) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Work{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Update overwrites the mutable work fields and bumps the updated
// timestamp. Callers resolve partial-update defaulting before calling.
func (r *Repository) Update(id uint, title string, originalTitle *string, status entities.WorkStatus, coverURL, synopsis *string) error {
	return r.db.Model(&entities.Work{}).Where("id = ?", id).Updates(map[string]any{
		"title":          title,
		"original_title": originalTitle,
		"status":         status,
		"cover_url":      coverURL,
		"synopsis":       synopsis,
		"updated_at":     time.Now(),
	}).Error
}

// Delete removes a work. Dependent library entries cascade.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Work{}, id).Error
}

// roundRating keeps averages at two decimal places, null when unrated.
func roundRating(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := math.Round(*v*100) / 100
	return &rounded
}
