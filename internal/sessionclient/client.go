// Package sessionclient is a small HTTP client for the auth endpoints,
// mirroring the server-side session in local state. It carries the
// session cookie through a cookie jar, so a Login survives across calls
// without manual token plumbing.
package sessionclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"manhua-tracker/internal/entities"
)

// errorTranslations maps known server error messages to user-facing
// strings. Unknown messages pass through untranslated.
var errorTranslations = []struct {
	needle      string
	translation string
}{
	{"Invalid credentials", "Identifiants invalides"},
	{"Username or email is required", "Le nom d'utilisateur ou l'email est requis"},
	{"Password is required", "Le mot de passe est requis"},
	{"Unexpected error", "Erreur inattendue"},
}

func translateMessage(raw string) string {
	for _, entry := range errorTranslations {
		if strings.Contains(raw, entry.needle) {
			return entry.translation
		}
	}
	return raw
}

// State is a snapshot of the mirrored session.
type State struct {
	User        *entities.PublicUser
	Loading     bool
	Initialized bool
	Error       string
}

// RegisterPayload carries the fields for a registration call.
type RegisterPayload struct {
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Password string  `json:"password"`
}

// Client mirrors the server session: it tracks the signed-in user, a
// loading flag and the last error, guarded by a mutex.
type Client struct {
	baseURL string
	http    *http.Client

	mu          sync.RWMutex
	user        *entities.PublicUser
	loading     bool
	initialized bool
	lastError   string
}

// New creates a client for the API at baseURL (e.g. "http://localhost:3000").
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

// State returns a snapshot of the mirrored session.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		User:        c.user,
		Loading:     c.loading,
		Initialized: c.initialized,
		Error:       c.lastError,
	}
}

// ClearError drops the last stored error message.
func (c *Client) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastError = ""
}

// Refresh fetches the current session from the server. Once the client is
// initialized, further calls are no-ops unless force is set.
func (c *Client) Refresh(force bool) error {
	c.mu.Lock()
	if c.initialized && !force {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	user, err := c.sessionCall("GET", "/api/auth/session", nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.initialized = true
	if err != nil {
		c.user = nil
		c.lastError = err.Error()
		return err
	}
	c.user = user
	c.lastError = ""
	return nil
}

// Login authenticates with a username or email plus password.
func (c *Client) Login(identifier, password string) error {
	return c.authCall("/api/auth/login", map[string]any{
		"identifier": identifier,
		"password":   password,
	})
}

// Register creates an account and signs it in.
func (c *Client) Register(payload RegisterPayload) error {
	return c.authCall("/api/auth/register", payload)
}

// Logout destroys the server session and clears the mirrored user.
func (c *Client) Logout() error {
	c.mu.Lock()
	c.loading = true
	c.lastError = ""
	c.mu.Unlock()

	_, err := c.sessionCall("POST", "/api/auth/logout", nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.lastError = err.Error()
		return err
	}
	c.user = nil
	return nil
}

// Close discards the client's idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) authCall(path string, payload any) error {
	c.mu.Lock()
	c.loading = true
	c.lastError = ""
	c.mu.Unlock()

	user, err := c.sessionCall("POST", path, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.initialized = true
	if err != nil {
		c.lastError = err.Error()
		return err
	}
	c.user = user
	return nil
}

// sessionCall performs a request and decodes the {user} envelope shared
// by the auth endpoints.
func (c *Client) sessionCall(method, path string, payload any) (*entities.PublicUser, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s", translateMessage("Unexpected error"))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s", translateMessage("Unexpected error"))
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		message := "Unexpected error"
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return nil, fmt.Errorf("%s", translateMessage(message))
	}

	var envelope struct {
		User *entities.PublicUser `json:"user"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%s", translateMessage("Unexpected error"))
	}
	return envelope.User, nil
}
