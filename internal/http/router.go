package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"manhua-tracker/internal/auth"
	"manhua-tracker/internal/database/library"
	"manhua-tracker/internal/database/users"
	"manhua-tracker/internal/database/works"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before the session middleware so cookie validation
	// happens ahead of identity resolution.
	if cfg.AuthConfig.CSRFEnabled {
		router.Use(auth.CSRFMiddleware([]byte(cfg.AuthConfig.CSRFSecret), cfg.AuthConfig.SecureCookies))
	}

	router.Use(auth.NewMiddleware(cfg.AuthService).Handler())

	// Unsupported verbs on known paths are a 405, not a 404.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		respondError(c, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	router.NoRoute(func(c *gin.Context) {
		respondNotFound(c, "Not found.")
	})

	usersRepo := users.NewRepository(cfg.Database.DB)
	worksRepo := works.NewRepository(cfg.Database.DB)
	libraryRepo := library.NewRepository(cfg.Database.DB)

	auth.NewController(cfg.AuthService, cfg.AuthConfig).RegisterRoutes(router)
	NewWorksController(worksRepo, usersRepo).RegisterRoutes(router)
	NewLibraryController(libraryRepo, worksRepo).RegisterRoutes(router)
	NewUsersController(usersRepo, cfg.AuthConfig.BcryptCost).RegisterRoutes(router)

	return router
}
