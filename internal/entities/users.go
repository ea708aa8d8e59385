package entities

import (
	"time"
)

// User is an identity record. The password hash and session fields are
// credential secrets and are never serialized.
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Username         string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email            *string    `gorm:"uniqueIndex;size:255" json:"email"`
	IsAdmin          bool       `gorm:"not null;default:false" json:"isAdmin"`
	PasswordHash     *string    `gorm:"size:255" json:"-"`
	SessionToken     *string    `gorm:"uniqueIndex;size:64" json:"-"`
	SessionExpiresAt *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// PublicUser is the profile shape exposed by the API.
type PublicUser struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips credential and session fields from a user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// HasActiveSession reports whether the user holds a session token that has
// not expired yet.
func (u *User) HasActiveSession(now time.Time) bool {
	return u.SessionToken != nil && u.SessionExpiresAt != nil && u.SessionExpiresAt.After(now)
}
