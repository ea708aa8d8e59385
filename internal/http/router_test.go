package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"manhua-tracker/internal/auth"
	"manhua-tracker/internal/config"
	"manhua-tracker/internal/database"
	"manhua-tracker/internal/database/users"
	"manhua-tracker/internal/entities"
)

// testEnv wires a full router against a freshly seeded on-disk database.
type testEnv struct {
	db     *database.Database
	auth   *auth.Service
	router *gin.Engine
	admin  *entities.User
	reader *entities.User
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath, database.SeedPasswords{
		Admin:  "admin-password",
		Reader: "reader-password",
		Cost:   bcrypt.MinCost,
	})
	require.NoError(t, err)

	authCfg := config.Auth{SessionLifetime: time.Hour, BcryptCost: bcrypt.MinCost}
	usersRepo := users.NewRepository(db.DB)
	service := auth.NewService(usersRepo, authCfg)

	router := NewRouter(RouterConfig{
		Database:    db,
		AuthService: service,
		AuthConfig:  authCfg,
	})

	admin, err := usersRepo.GetByIdentifier("admin")
	require.NoError(t, err)
	reader, err := usersRepo.GetByIdentifier("reader")
	require.NoError(t, err)

	env := &testEnv{db: db, auth: service, router: router, admin: admin, reader: reader}
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return env, cleanup
}

// sessionFor mints a session token for the given user.
func (env *testEnv) sessionFor(t *testing.T, userID uint) string {
	t.Helper()
	token, err := env.auth.CreateSession(userID)
	require.NoError(t, err)
	return token
}

// do performs a request against the router, optionally authenticated via
// the session token header.
func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, payload)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.HeaderSessionToken, token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	return resp.Error
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	w := env.do(t, "DELETE", "/api/works", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method Not Allowed", errorMessage(t, w))
}

func TestRouter_UnknownRoute(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	w := env.do(t, "GET", "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	w := env.do(t, "GET", "/api/works", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
