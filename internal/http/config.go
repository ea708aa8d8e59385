package http

import (
	"manhua-tracker/internal/auth"
	"manhua-tracker/internal/config"
	"manhua-tracker/internal/database"
)

// RouterConfig contains the dependencies needed to build the HTTP router.
type RouterConfig struct {
	Database    *database.Database
	AuthService *auth.Service
	AuthConfig  config.Auth
}
