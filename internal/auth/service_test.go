package auth

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"manhua-tracker/internal/config"
	"manhua-tracker/internal/database/users"
	"manhua-tracker/internal/entities"
)

func setupTestService(t *testing.T, cfg config.Auth) (*Service, *users.Repository, func()) {
	t.Helper()
	dbPath := "./test_auth_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.MinCost
	}

	repo := users.NewRepository(db)
	service := NewService(repo, cfg)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return service, repo, cleanup
}

func TestService_RegisterThenLogin(t *testing.T) {
	service, _, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	registered, token, err := service.Register("alice", nil, "password1")
	require.NoError(t, err)
	assert.NotZero(t, registered.ID)
	assert.False(t, registered.IsAdmin)
	assert.Len(t, token, 64)

	loggedIn, token2, err := service.Login("alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, loggedIn.ID)
	assert.NotEqual(t, token, token2) // login always issues a fresh token
}

func TestService_Register_Validation(t *testing.T) {
	service, _, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	_, _, err := service.Register("", nil, "password1")
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, _, err = service.Register("a", nil, "password1")
	assert.ErrorIs(t, err, ErrUsernameTooShort)

	_, _, err = service.Register("alice", nil, "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestService_Register_Duplicate(t *testing.T) {
	service, _, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	_, _, err := service.Register("alice", nil, "password1")
	require.NoError(t, err)

	_, _, err = service.Register("alice", nil, "password2")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Login_DoesNotLeakIdentifierExistence(t *testing.T) {
	service, _, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	_, _, err := service.Register("alice", nil, "password1")
	require.NoError(t, err)

	_, _, wrongPassword := service.Login("alice", "not-the-password")
	_, _, unknownUser := service.Login("nobody", "password1")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
}

func TestService_Login_ByEmail(t *testing.T) {
	service, _, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	email := "alice@example.com"
	registered, _, err := service.Register("alice", &email, "password1")
	require.NoError(t, err)

	user, _, err := service.Login("alice@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestService_Login_OverwritesPriorSession(t *testing.T) {
	service, _, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	_, first, err := service.Register("alice", nil, "password1")
	require.NoError(t, err)

	_, second, err := service.Login("alice", "password1")
	require.NoError(t, err)

	// At most one active token per user: the first stops resolving
	user, err := service.UserByToken(first)
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = service.UserByToken(second)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
}

func TestService_UserByToken_Expired(t *testing.T) {
	service, repo, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	registered, _, err := service.Register("alice", nil, "password1")
	require.NoError(t, err)

	require.NoError(t, repo.SetSession(registered.ID, "expiredtoken", time.Now().Add(-time.Minute)))

	user, err := service.UserByToken("expiredtoken")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestService_DestroySession(t *testing.T) {
	service, _, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	registered, token, err := service.Register("alice", nil, "password1")
	require.NoError(t, err)

	require.NoError(t, service.DestroySession(token, registered.ID))

	user, err := service.UserByToken(token)
	require.NoError(t, err)
	assert.Nil(t, user)
}
