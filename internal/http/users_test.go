package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manhua-tracker/internal/entities"
)

func TestUsersController_List(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	t.Run("lists public profiles without secrets", func(t *testing.T) {
		w := env.do(t, "GET", "/api/users", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data       []map[string]any `json:"data"`
			Pagination Pagination       `json:"pagination"`
		}
		decodeJSON(t, w, &resp)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, int64(2), resp.Pagination.Total)

		for _, profile := range resp.Data {
			assert.NotContains(t, profile, "passwordHash")
			assert.NotContains(t, profile, "sessionToken")
			assert.Contains(t, profile, "isAdmin")
		}
	})

	t.Run("filters by search", func(t *testing.T) {
		w := env.do(t, "GET", "/api/users?search=adm", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data []map[string]any `json:"data"`
		}
		decodeJSON(t, w, &resp)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "admin", resp.Data[0]["username"])
	})
}

func TestUsersController_Get(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	w := env.do(t, "GET", fmt.Sprintf("/api/users/%d", env.reader.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile map[string]any
	decodeJSON(t, w, &profile)
	assert.Equal(t, "reader", profile["username"])
	assert.Equal(t, false, profile["isAdmin"])

	w = env.do(t, "GET", "/api/users/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found.", errorMessage(t, w))

	w = env.do(t, "GET", "/api/users/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersController_Create(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	t.Run("admin only", func(t *testing.T) {
		w := env.do(t, "POST", "/api/users", "", gin.H{"username": "eve", "password": "password123"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		token := env.sessionFor(t, env.reader.ID)
		w = env.do(t, "POST", "/api/users", token, gin.H{"username": "eve", "password": "password123"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("validates username and password", func(t *testing.T) {
		token := env.sessionFor(t, env.admin.ID)

		w := env.do(t, "POST", "/api/users", token, gin.H{"password": "password123"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Username is required.", errorMessage(t, w))

		w = env.do(t, "POST", "/api/users", token, gin.H{"username": "e", "password": "password123"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Username must be at least 2 characters.", errorMessage(t, w))

		w = env.do(t, "POST", "/api/users", token, gin.H{"username": "eve", "password": "short"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Password must be at least 8 characters.", errorMessage(t, w))
	})

	t.Run("creates an account honoring the admin flag", func(t *testing.T) {
		token := env.sessionFor(t, env.admin.ID)
		w := env.do(t, "POST", "/api/users", token, gin.H{
			"username": "eve",
			"email":    "eve@example.com",
			"password": "password123",
			"isAdmin":  true,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var profile map[string]any
		decodeJSON(t, w, &profile)
		assert.Equal(t, "eve", profile["username"])
		assert.Equal(t, "eve@example.com", profile["email"])
		assert.Equal(t, true, profile["isAdmin"])
	})

	t.Run("409 on duplicates", func(t *testing.T) {
		token := env.sessionFor(t, env.admin.ID)
		w := env.do(t, "POST", "/api/users", token, gin.H{"username": "reader", "password": "password123"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Username or email already exists.", errorMessage(t, w))
	})
}

func TestUsersController_Update(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	readerPath := fmt.Sprintf("/api/users/%d", env.reader.ID)

	t.Run("owner may edit their email", func(t *testing.T) {
		token := env.sessionFor(t, env.reader.ID)
		w := env.do(t, "PATCH", readerPath, token, gin.H{"email": "reader@example.com"})
		require.Equal(t, http.StatusOK, w.Code)

		var profile map[string]any
		decodeJSON(t, w, &profile)
		assert.Equal(t, "reader@example.com", profile["email"])
	})

	t.Run("explicit null clears the email", func(t *testing.T) {
		token := env.sessionFor(t, env.reader.ID)
		w := env.do(t, "PATCH", readerPath, token, gin.H{"email": nil})
		require.Equal(t, http.StatusOK, w.Code)

		var profile map[string]any
		decodeJSON(t, w, &profile)
		assert.Nil(t, profile["email"])
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		token := env.sessionFor(t, env.reader.ID)

		w := env.do(t, "PATCH", readerPath, token, "not an object")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body.", errorMessage(t, w))

		w = env.do(t, "PATCH", readerPath, token, gin.H{"email": 5})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body.", errorMessage(t, w))
	})

	t.Run("only an admin may flip the admin flag", func(t *testing.T) {
		token := env.sessionFor(t, env.reader.ID)
		w := env.do(t, "PATCH", readerPath, token, gin.H{"isAdmin": true})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Admin privileges required", errorMessage(t, w))

		adminToken := env.sessionFor(t, env.admin.ID)
		w = env.do(t, "PATCH", readerPath, adminToken, gin.H{"isAdmin": true})
		require.Equal(t, http.StatusOK, w.Code)

		var profile map[string]any
		decodeJSON(t, w, &profile)
		assert.Equal(t, true, profile["isAdmin"])

		w = env.do(t, "PATCH", readerPath, adminToken, gin.H{"isAdmin": false})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-owners are rejected", func(t *testing.T) {
		other, _, err := env.auth.Register("frank", nil, "password123")
		require.NoError(t, err)

		token := env.sessionFor(t, other.ID)
		w := env.do(t, "PATCH", readerPath, token, gin.H{"email": "sneaky@example.com"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Insufficient permissions", errorMessage(t, w))
	})

	t.Run("password changes are validated and take effect", func(t *testing.T) {
		token := env.sessionFor(t, env.reader.ID)

		w := env.do(t, "PATCH", readerPath, token, gin.H{"password": "short"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Password must be at least 8 characters.", errorMessage(t, w))

		w = env.do(t, "PATCH", readerPath, token, gin.H{"password": "new-password-1"})
		require.Equal(t, http.StatusOK, w.Code)

		_, _, err := env.auth.Login("reader", "new-password-1")
		assert.NoError(t, err)
	})

	t.Run("409 on an email collision", func(t *testing.T) {
		adminToken := env.sessionFor(t, env.admin.ID)
		w := env.do(t, "PATCH", fmt.Sprintf("/api/users/%d", env.admin.ID), adminToken,
			gin.H{"email": "taken@example.com"})
		require.Equal(t, http.StatusOK, w.Code)

		token := env.sessionFor(t, env.reader.ID)
		w = env.do(t, "PATCH", readerPath, token, gin.H{"email": "taken@example.com"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Username or email already exists.", errorMessage(t, w))
	})
}

func TestUsersController_Delete(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	t.Run("admin only", func(t *testing.T) {
		token := env.sessionFor(t, env.reader.ID)
		w := env.do(t, "DELETE", fmt.Sprintf("/api/users/%d", env.reader.ID), token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("removes the account and cascades entries", func(t *testing.T) {
		entry := entities.LibraryEntry{UserID: env.reader.ID, WorkID: 1, Status: entities.EntryStatusReading}
		require.NoError(t, env.db.DB.Create(&entry).Error)

		token := env.sessionFor(t, env.admin.ID)
		w := env.do(t, "DELETE", fmt.Sprintf("/api/users/%d", env.reader.ID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, "GET", fmt.Sprintf("/api/users/%d", env.reader.ID), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		var count int64
		require.NoError(t, env.db.DB.Model(&entities.LibraryEntry{}).
			Where("user_id = ?", env.reader.ID).Count(&count).Error)
		assert.Zero(t, count)
	})
}
