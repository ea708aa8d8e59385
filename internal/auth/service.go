package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"manhua-tracker/internal/config"
	"manhua-tracker/internal/database/users"
	"manhua-tracker/internal/entities"
)

var (
	ErrIdentifierRequired = errors.New("username or email is required")
	ErrUsernameRequired   = errors.New("username is required")
	ErrUsernameTooShort   = errors.New("username must be at least 2 characters")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already exists")
)

// Service handles authentication and session lifecycle.
type Service struct {
	users  *users.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *users.Repository, cfg config.Auth) *Service {
	if cfg.SessionLifetime == 0 {
		cfg.SessionLifetime = config.SessionLifetime
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = config.DefaultBcryptCost
	}
	return &Service{users: repo, config: cfg}
}

// Login validates credentials and issues a fresh session token,
// overwriting any prior token for the user. The same ErrInvalidCredentials
// comes back for an unknown identifier and a wrong password, so callers
// cannot probe which identifiers exist.
func (s *Service) Login(identifier, password string) (*entities.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, "", ErrIdentifierRequired
	}
	if password == "" {
		return nil, "", ErrPasswordRequired
	}

	user, err := s.users.GetByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := CheckPassword(password, *user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	token, err := s.CreateSession(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Register creates a new non-admin account and logs it in.
func (s *Service) Register(username string, email *string, password string) (*entities.User, string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" {
		return nil, "", ErrUsernameRequired
	}
	if len(username) < MinUsernameLength {
		return nil, "", ErrUsernameTooShort
	}
	if len(password) < MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(username, normalizeEmail(email), false, hash)
	if err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}

	token, err := s.CreateSession(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// CreateSession issues a new token with the configured lifetime and stores
// it on the user row, replacing any prior token.
func (s *Service) CreateSession(userID uint) (string, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	expiresAt := time.Now().Add(s.config.SessionLifetime)
	if err := s.users.SetSession(userID, token, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// DestroySession clears the stored token both by token value and by user
// id, covering the case where the cookie token no longer matches the row.
func (s *Service) DestroySession(token string, userID uint) error {
	if token != "" {
		if err := s.users.ClearSessionByToken(token); err != nil {
			return err
		}
	}
	if userID != 0 {
		if err := s.users.ClearSessionByID(userID); err != nil {
			return err
		}
	}
	return nil
}

// UserByToken resolves a non-expired session token to its user.
// Returns nil without error when the token does not resolve.
func (s *Service) UserByToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, nil
	}
	user, err := s.users.GetBySessionToken(token, time.Now())
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// UserByID resolves a user id directly. Used by the trusted-header
// fallback; it performs no credential check.
func (s *Service) UserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// SessionLifetime returns the configured token lifetime.
func (s *Service) SessionLifetime() time.Duration {
	return s.config.SessionLifetime
}

// TrustUserIDHeader reports whether the x-user-id fallback is enabled.
func (s *Service) TrustUserIDHeader() bool {
	return s.config.TrustUserIDHeader
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
