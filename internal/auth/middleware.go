package auth

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"manhua-tracker/internal/entities"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "manhua_session"

// Header fallbacks for API clients without cookie support.
const (
	HeaderSessionToken = "x-session-token"
	HeaderUserID       = "x-user-id"
)

// ContextKeyUser is the Gin context key holding the resolved *entities.User.
const ContextKeyUser = "auth_user"

// Middleware resolves the current user for each request.
type Middleware struct {
	service *Service
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// Handler returns a Gin handler that resolves the caller's identity into
// the request context. Anonymous requests pass through; authorization is
// enforced per endpoint by the Require* predicates.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.resolve(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if user != nil {
			c.Set(ContextKeyUser, user)
		}
		c.Next()
	}
}

// resolve applies the identity resolution order: session token from cookie
// or header, then the optional trusted x-user-id fallback.
func (m *Middleware) resolve(c *gin.Context) (*entities.User, error) {
	if token := SessionTokenFromRequest(c); token != "" {
		user, err := m.service.UserByToken(token)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}

	if m.service.TrustUserIDHeader() {
		if header := c.GetHeader(HeaderUserID); header != "" {
			id, err := strconv.ParseUint(header, 10, 32)
			if err != nil {
				return nil, nil
			}
			return m.service.UserByID(uint(id))
		}
	}

	return nil, nil
}

// SessionTokenFromRequest extracts the session token from the cookie,
// falling back to the x-session-token header.
func SessionTokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		return token
	}
	return c.GetHeader(HeaderSessionToken)
}

// CurrentUser returns the resolved user from the Gin context, or nil for
// anonymous requests.
func CurrentUser(c *gin.Context) *entities.User {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := value.(*entities.User)
	if !ok {
		return nil
	}
	return user
}

// RequireUser returns the authenticated caller, or responds 401 and
// returns false.
func RequireUser(c *gin.Context) (*entities.User, bool) {
	user := CurrentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return nil, false
	}
	return user, true
}

// RequireAdmin returns the authenticated admin caller, or responds 401/403
// and returns false.
func RequireAdmin(c *gin.Context) (*entities.User, bool) {
	user, ok := RequireUser(c)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin privileges required"})
		return nil, false
	}
	return user, true
}

// AssertOwnerOrAdmin returns the caller if it owns the resource or is an
// admin, or responds 401/403 and returns false. Every resource controller
// shares this predicate instead of re-implementing the check.
func AssertOwnerOrAdmin(c *gin.Context, ownerID uint) (*entities.User, bool) {
	user, ok := RequireUser(c)
	if !ok {
		return nil, false
	}
	if user.ID != ownerID && !user.IsAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return nil, false
	}
	return user, true
}
