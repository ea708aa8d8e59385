package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Seed
		Sessions
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Auth struct {
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// TrustUserIDHeader enables the x-user-id identity fallback.
		// Testing/internal affordance only; never enable in production.
		TrustUserIDHeader bool

		CSRFEnabled bool
		CSRFSecret  string
	}

	Seed struct {
		AdminPassword  string
		ReaderPassword string
	}

	Sessions struct {
		SweepEnabled  bool
		SweepSchedule string // Cron format: "0 * * * *" = hourly
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 3000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_session_lifetime", SessionLifetime.String())
	v.SetDefault("auth_bcrypt_cost", DefaultBcryptCost)
	v.SetDefault("auth_secure_cookies", false)
	v.SetDefault("auth_trust_user_id_header", false)
	v.SetDefault("auth_csrf_enabled", false)
	v.SetDefault("auth_csrf_secret", "")

	// Seed account defaults, matching the accounts created on first boot
	v.SetDefault("admin_password", "admin123")
	v.SetDefault("reader_password", "reader123")

	// Expired sessions are cleared once at boot; the periodic sweep is opt-in
	v.SetDefault("session_sweep_enabled", false)
	v.SetDefault("session_sweep_schedule", "0 * * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			SessionLifetime:   v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:        v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:     v.GetBool("AUTH_SECURE_COOKIES"),
			TrustUserIDHeader: v.GetBool("AUTH_TRUST_USER_ID_HEADER"),
			CSRFEnabled:       v.GetBool("AUTH_CSRF_ENABLED"),
			CSRFSecret:        v.GetString("AUTH_CSRF_SECRET"),
		},
		Seed: Seed{
			AdminPassword:  v.GetString("ADMIN_PASSWORD"),
			ReaderPassword: v.GetString("READER_PASSWORD"),
		},
		Sessions: Sessions{
			SweepEnabled:  v.GetBool("SESSION_SWEEP_ENABLED"),
			SweepSchedule: v.GetString("SESSION_SWEEP_SCHEDULE"),
		},
	}
}
