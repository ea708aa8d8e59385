package scheduler

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"manhua-tracker/internal/config"
	"manhua-tracker/internal/database"
	"manhua-tracker/internal/entities"
)

func setupTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	dbPath := "./test_scheduler_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath, database.SeedPasswords{
		Admin:  "admin-password",
		Reader: "reader-password",
		Cost:   bcrypt.MinCost,
	})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestSessionSweepScheduler_DisabledByDefault(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	s := NewSessionSweepScheduler(db, config.Sessions{SweepEnabled: false})
	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestSessionSweepScheduler_RejectsBadSchedule(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	s := NewSessionSweepScheduler(db, config.Sessions{SweepEnabled: true, SweepSchedule: "not a schedule"})
	assert.Error(t, s.Start(context.Background()))
}

func TestSessionSweepScheduler_StartStop(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	s := NewSessionSweepScheduler(db, config.Sessions{SweepEnabled: true, SweepSchedule: "0 * * * *"})
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestSessionSweepScheduler_ClearsExpiredTokens(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	token := "stale-token"
	expired := time.Now().Add(-time.Hour)
	require.NoError(t, db.DB.Model(&entities.User{}).Where("username = ?", "reader").
		Updates(map[string]any{"session_token": token, "session_expires_at": expired}).Error)

	s := NewSessionSweepScheduler(db, config.Sessions{SweepEnabled: true, SweepSchedule: "0 * * * *"})
	s.runSweep()

	var user entities.User
	require.NoError(t, db.DB.Where("username = ?", "reader").First(&user).Error)
	assert.Nil(t, user.SessionToken)
	assert.Nil(t, user.SessionExpiresAt)
}
