package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"manhua-tracker/internal/config"
)

// Controller handles the /api/auth HTTP endpoints.
type Controller struct {
	service *Service
	config  config.Auth
}

// NewController creates a new authentication controller.
func NewController(service *Service, cfg config.Auth) *Controller {
	return &Controller{service: service, config: cfg}
}

// RegisterRoutes registers the authentication routes on the router.
func (ac *Controller) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/auth")
	group.POST("/login", ac.Login)
	group.POST("/register", ac.Register)
	group.POST("/logout", ac.Logout)
	group.GET("/session", ac.Session)
}

// Login authenticates by username or email plus password.
// POST /api/auth/login
func (ac *Controller) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	user, token, err := ac.service.Login(req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrIdentifierRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email is required."})
		case errors.Is(err, ErrPasswordRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required."})
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials."})
		default:
			log.Printf("Login failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	ac.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// Register creates a non-admin account and logs it in.
// POST /api/auth/register
func (ac *Controller) Register(c *gin.Context) {
	var req struct {
		Username string  `json:"username"`
		Email    *string `json:"email"`
		Password string  `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	user, token, err := ac.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required."})
		case errors.Is(err, ErrUsernameTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be at least 2 characters."})
		case errors.Is(err, ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters."})
		case errors.Is(err, ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists."})
		default:
			log.Printf("Registration failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	ac.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// Logout destroys the caller's session and clears the cookie.
// POST /api/auth/logout
func (ac *Controller) Logout(c *gin.Context) {
	user, ok := RequireUser(c)
	if !ok {
		return
	}

	token := SessionTokenFromRequest(c)
	if err := ac.service.DestroySession(token, user.ID); err != nil {
		log.Printf("Logout failed for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	ac.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session returns the current user, or null for anonymous callers.
// GET /api/auth/session
func (ac *Controller) Session(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

func (ac *Controller) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	maxAge := int(ac.service.SessionLifetime().Seconds())
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", ac.config.SecureCookies, true)
}

func (ac *Controller) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", ac.config.SecureCookies, true)
}
