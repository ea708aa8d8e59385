// Package database owns the SQLite bootstrap: connection, schema
// migration, first-boot seeding and the boot-time expired session sweep.
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"manhua-tracker/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// SeedPasswords holds the initial passwords for the default accounts
// created when the users table is empty.
type SeedPasswords struct {
	Admin  string
	Reader string
	Cost   int
}

// NewDatabase opens (or creates) the database file, migrates the schema and
// seeds the default accounts and sample catalog when the store is empty.
// Expired session tokens are cleared once here; afterwards expiry is
// enforced by the lookup predicate alone.
func NewDatabase(dbPath string, seed SeedPasswords) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+"?_journal_mode=WAL&_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Work{},
		&entities.LibraryEntry{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedDefaults(seed); err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	if err := database.ClearExpiredSessions(); err != nil {
		return nil, fmt.Errorf("failed to clear expired sessions: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ClearExpiredSessions nulls out session token/expiry pairs that are past
// their expiry. Run once at boot and optionally by the sweep scheduler.
func (d *Database) ClearExpiredSessions() error {
	return d.DB.Model(&entities.User{}).
		Where("session_expires_at IS NOT NULL AND session_expires_at < ?", time.Now()).
		Updates(map[string]any{
			"session_token":      nil,
			"session_expires_at": nil,
		}).Error
}
