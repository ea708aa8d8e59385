package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"manhua-tracker/internal/auth"
	"manhua-tracker/internal/database/users"
	"manhua-tracker/internal/entities"
)

// UsersController serves public profiles and the admin-gated account
// management operations. Listing and single-profile reads are ungated:
// profiles expose no secrets and the API is same-origin.
type UsersController struct {
	users      *users.Repository
	bcryptCost int
}

func NewUsersController(usersRepo *users.Repository, bcryptCost int) *UsersController {
	return &UsersController{users: usersRepo, bcryptCost: bcryptCost}
}

func (controller *UsersController) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/users")
	group.GET("", controller.List)
	group.POST("", controller.Create)
	group.GET("/:id", controller.Get)
	group.PATCH("/:id", controller.Update)
	group.PUT("/:id", controller.Update)
	group.DELETE("/:id", controller.Delete)
}

func (controller *UsersController) List(c *gin.Context) {
	page, limit, offset := parsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	rows, total, err := controller.users.List(search, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}

	profiles := make([]entities.PublicUser, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, rows[i].Public())
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       profiles,
		Pagination: Pagination{Page: page, Limit: limit, Total: total},
	})
}

func (controller *UsersController) Get(c *gin.Context) {
	user, ok := controller.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

type createUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"isAdmin"`
}

func (controller *UsersController) Create(c *gin.Context) {
	if _, ok := auth.RequireAdmin(c); !ok {
		return
	}

	var body createUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "Username is required.")
		return
	}

	username := textOrNil(body.Username)
	if username == nil {
		respondBadRequest(c, "Username is required.")
		return
	}
	if len(*username) < auth.MinUsernameLength {
		respondBadRequest(c, "Username must be at least 2 characters.")
		return
	}

	password := ""
	if body.Password != nil {
		password = strings.TrimSpace(*body.Password)
	}
	if len(password) < auth.MinPasswordLength {
		respondBadRequest(c, "Password must be at least 8 characters.")
		return
	}

	hash, err := auth.HashPassword(password, controller.bcryptCost)
	if err != nil {
		respondInternalError(c, err, "hash password")
		return
	}

	isAdmin := body.IsAdmin != nil && *body.IsAdmin

	user, err := controller.users.Create(*username, textOrNil(body.Email), isAdmin, hash)
	if err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			respondConflict(c, "Username or email already exists.")
			return
		}
		respondInternalError(c, err, "create user")
		return
	}

	c.JSON(http.StatusOK, user.Public())
}

type updateUserRequest struct {
	Email    json.RawMessage `json:"email"`
	IsAdmin  *bool           `json:"isAdmin"`
	Password *string         `json:"password"`
}

func (controller *UsersController) Update(c *gin.Context) {
	user, ok := controller.lookup(c)
	if !ok {
		return
	}

	// An empty body is a valid no-op update.
	var body updateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "Invalid request body.")
		return
	}

	email, err := optionalText(body.Email, user.Email)
	if err != nil {
		respondBadRequest(c, "Invalid request body.")
		return
	}

	// Only an admin may flip the admin flag; the owner may edit the rest.
	isAdmin := user.IsAdmin
	if body.IsAdmin != nil {
		if _, ok := auth.RequireAdmin(c); !ok {
			return
		}
		isAdmin = *body.IsAdmin
	}
	if _, ok := auth.AssertOwnerOrAdmin(c, user.ID); !ok {
		return
	}

	if body.Password != nil {
		password := strings.TrimSpace(*body.Password)
		if len(password) < auth.MinPasswordLength {
			respondBadRequest(c, "Password must be at least 8 characters.")
			return
		}
		hash, err := auth.HashPassword(password, controller.bcryptCost)
		if err != nil {
			respondInternalError(c, err, "hash password")
			return
		}
		if err := controller.users.UpdatePasswordHash(user.ID, hash); err != nil {
			respondInternalError(c, err, "store password")
			return
		}
	}

	if err := controller.users.UpdateProfile(user.ID, email, isAdmin); err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			respondConflict(c, "Username or email already exists.")
			return
		}
		respondInternalError(c, err, "update user")
		return
	}

	user.Email = email
	user.IsAdmin = isAdmin
	c.JSON(http.StatusOK, user.Public())
}

func (controller *UsersController) Delete(c *gin.Context) {
	user, ok := controller.lookup(c)
	if !ok {
		return
	}
	if _, ok := auth.RequireAdmin(c); !ok {
		return
	}

	removed, err := controller.users.Delete(user.ID)
	if err != nil {
		respondInternalError(c, err, "delete user")
		return
	}
	if removed == 0 {
		respondError(c, http.StatusInternalServerError, "Failed to delete user.")
		return
	}
	respondSuccess(c)
}

// lookup parses the :id parameter and loads the user row, writing the
// 400/404 response itself on failure.
func (controller *UsersController) lookup(c *gin.Context) (*entities.User, bool) {
	id, ok := parseIDParam(c)
	if !ok {
		return nil, false
	}
	user, err := controller.users.GetByID(id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondNotFound(c, "User not found.")
			return nil, false
		}
		respondInternalError(c, err, "lookup user")
		return nil, false
	}
	return user, true
}
