// Package users provides database operations for user accounts and their
// session token state.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetBySessionToken(token, time.Now())
package users

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"manhua-tracker/internal/database"
	"manhua-tracker/internal/entities"
)

var (
	// ErrDuplicate signals a username/email uniqueness violation.
	ErrDuplicate = errors.New("username or email already exists")
	// ErrNotFound signals that no matching user row exists.
	ErrNotFound = errors.New("user not found")
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. The password hash must already be computed.
func (r *Repository) Create(username string, email *string, isAdmin bool, passwordHash string) (*entities.User, error) {
	user := &entities.User{
		Username:     username,
		Email:        email,
		IsAdmin:      isAdmin,
		PasswordHash: &passwordHash,
	}

	if err := r.db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIdentifier retrieves a user by username or email.
func (r *Repository) GetByIdentifier(identifier string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetBySessionToken retrieves the user holding a session token that expires
// after now. Expired tokens never match.
func (r *Repository) GetBySessionToken(token string, now time.Time) (*entities.User, error) {
	var user entities.User
	err := r.db.
		Where("session_token = ? AND session_expires_at IS NOT NULL AND session_expires_at > ?", token, now).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns a page of users with the total row count for the same
// filter. The search term matches username or email as a substring.
func (r *Repository) List(search string, limit, offset int) ([]entities.User, int64, error) {
	query := r.db.Model(&entities.User{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []entities.User
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// UpdateProfile overwrites the email and admin flag. Callers resolve the
// partial-update defaulting before calling.
func (r *Repository) UpdateProfile(id uint, email *string, isAdmin bool) error {
	err := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
		"email":    email,
		"is_admin": isAdmin,
	}).Error
	if database.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// UpdatePasswordHash stores a new password hash for the user.
func (r *Repository) UpdatePasswordHash(id uint, passwordHash string) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

// Delete removes a user row. Library entries cascade and created works are
// detached by the storage constraints. Returns the number of rows removed
// so callers can detect a row that vanished between lookup and delete.
func (r *Repository) Delete(id uint) (int64, error) {
	result := r.db.Delete(&entities.User{}, id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SetSession stores a session token and expiry, replacing any prior pair.
func (r *Repository) SetSession(id uint, token string, expiresAt time.Time) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
		"session_token":      token,
		"session_expires_at": expiresAt,
	}).Error
}

// ClearSessionByToken nulls the session pair on whichever row holds token.
func (r *Repository) ClearSessionByToken(token string) error {
	return r.db.Model(&entities.User{}).Where("session_token = ?", token).Updates(map[string]any{
		"session_token":      nil,
		"session_expires_at": nil,
	}).Error
}

// ClearSessionByID nulls the session pair for a user id.
func (r *Repository) ClearSessionByID(id uint) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
		"session_token":      nil,
		"session_expires_at": nil,
	}).Error
}
