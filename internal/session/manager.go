package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"flourmill/internal/authz"
)

// MockTokenPrefix marks development bearer tokens that bypass backend
// validation. The bypass only activates when Config.AllowMockTokens is set;
// in production builds a mock-shaped token goes through normal validation
// and is rejected by the backend like any other garbage credential.
const MockTokenPrefix = "mock-jwt-token-"

// Config wires a Manager to its collaborators. Storage is required; the
// HTTP client defaults to http.DefaultClient.
type Config struct {
	BaseURL         string
	Storage         Storage
	HTTPClient      *http.Client
	AllowMockTokens bool
}

// LoginResult is the typed outcome of a login attempt. On failure, Message
// carries the backend-provided reason or a generic fallback.
type LoginResult struct {
	Success bool
	Message string
	User    *User
}

// Snapshot is a consistent read-only view of the session.
type Snapshot struct {
	User            *User
	Role            authz.Role
	Permissions     []authz.Permission
	IsAuthenticated bool
	Loading         bool
}

// Manager is the single source of truth for who is logged in and what they
// can do. It is the sole writer of both the in-memory session and the
// persisted storage; guards and screens only read through it.
type Manager struct {
	cfg Config
	api *apiClient

	mu          sync.Mutex
	user        *User
	role        authz.Role
	token       string
	permissions []authz.Permission
	loading     bool
}

// New builds a Manager. The session starts empty; call Bootstrap to restore
// a persisted session before any guard decision is made.
func New(cfg Config) (*Manager, error) {
	if cfg.Storage == nil {
		return nil, errors.New("session: Config.Storage is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Manager{
		cfg: cfg,
		api: &apiClient{baseURL: strings.TrimRight(cfg.BaseURL, "/"), http: client},
		// loading starts true so guards defer decisions until Bootstrap has run
		loading:     true,
		permissions: []authz.Permission{},
	}, nil
}

// Bootstrap restores the session from persisted storage, validating real
// tokens against the backend. A rejected or unverifiable real token clears
// the session entirely; mock tokens (when enabled) are trusted without any
// network call. The loading flag is cleared no matter which branch runs.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.setLoading(true)
	defer m.setLoading(false)

	token, err := m.cfg.Storage.Get(KeyToken)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	if m.cfg.AllowMockTokens && strings.HasPrefix(token, MockTokenPrefix) {
		// Development token: restore unconditionally, never touch the network.
		m.restoreFromStorage(token)
		return nil
	}

	valid, err := m.api.validate(ctx, token)
	if err != nil || !valid {
		if err != nil {
			log.Printf("session: bootstrap validation failed: %v", err)
		}
		m.clear()
		return nil
	}

	m.restoreFromStorage(token)
	return nil
}

// Login authenticates against the backend. On failure the existing session
// is left untouched and the result carries a human-readable message.
func (m *Manager) Login(ctx context.Context, email, password string) LoginResult {
	m.setLoading(true)
	defer m.setLoading(false)

	resp, err := m.api.login(ctx, email, password)
	if err != nil {
		log.Printf("session: login request failed: %v", err)
		return LoginResult{Success: false, Message: "Login failed. Please try again."}
	}
	if !resp.Success || resp.User == nil || resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Login failed. Please try again."
		}
		return LoginResult{Success: false, Message: msg}
	}

	if err := m.persist(resp.Token, resp.User); err != nil {
		log.Printf("session: persisting login failed: %v", err)
		return LoginResult{Success: false, Message: "Login failed. Please try again."}
	}
	m.apply(resp.Token, resp.User)
	return LoginResult{Success: true, User: resp.User}
}

// Logout notifies the backend on a best-effort basis, then unconditionally
// clears persisted and in-memory session state. Safe to call repeatedly.
func (m *Manager) Logout(ctx context.Context) {
	token := m.Token()
	if token != "" {
		if err := m.api.logout(ctx, token); err != nil {
			log.Printf("session: logout notification failed: %v", err)
		}
	}
	m.clear()
}

// RefreshToken requests a replacement credential. Success rewrites the
// stored token only; failure invalidates the whole session, since a
// rejected credential must not leave a stale authenticated view behind.
func (m *Manager) RefreshToken(ctx context.Context) bool {
	token := m.Token()
	if token == "" {
		return false
	}

	resp, err := m.api.refresh(ctx, token)
	if err != nil || !resp.Success || resp.Token == "" {
		if err != nil {
			log.Printf("session: token refresh failed: %v", err)
		}
		m.clear()
		return false
	}

	if err := m.cfg.Storage.Set(KeyToken, resp.Token); err != nil {
		log.Printf("session: persisting refreshed token failed: %v", err)
		m.clear()
		return false
	}
	m.mu.Lock()
	m.token = resp.Token
	m.mu.Unlock()
	return true
}

// Snapshot returns a consistent view of the current session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	perms := make([]authz.Permission, len(m.permissions))
	copy(perms, m.permissions)
	return Snapshot{
		User:            m.user,
		Role:            m.role,
		Permissions:     perms,
		IsAuthenticated: m.user != nil,
		Loading:         m.loading,
	}
}

// Token returns the current bearer credential, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// IsAuthenticated reports whether a user is currently loaded.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil
}

// Loading reports whether the initial bootstrap is still in flight. Guards
// must treat true as "decision deferred", never as "unauthenticated".
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Role returns the current role, authz.RoleUnknown when logged out.
func (m *Manager) Role() authz.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.role
}

func (m *Manager) IsAdmin() bool    { return m.Role() == authz.RoleAdmin }
func (m *Manager) IsManager() bool  { return m.Role() == authz.RoleManager }
func (m *Manager) IsEmployee() bool { return m.Role() == authz.RoleEmployee }
func (m *Manager) IsCashier() bool  { return m.Role() == authz.RoleCashier }

// HasPermission reports whether the current role grants p.
func (m *Manager) HasPermission(p authz.Permission) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, have := range m.permissions {
		if have == p {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether at least one of perms is granted.
func (m *Manager) HasAnyPermission(perms ...authz.Permission) bool {
	for _, p := range perms {
		if m.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every one of perms is granted.
func (m *Manager) HasAllPermissions(perms ...authz.Permission) bool {
	for _, p := range perms {
		if !m.HasPermission(p) {
			return false
		}
	}
	return true
}

// CanAccess reports whether the current role ranks at or above required in
// the fixed role hierarchy.
func (m *Manager) CanAccess(required authz.Role) bool {
	return authz.CanAccess(m.Role(), required)
}

// restoreFromStorage rebuilds in-memory state from the persisted user and
// role records. An unreadable user record degrades to an empty session.
func (m *Manager) restoreFromStorage(token string) {
	raw, err := m.cfg.Storage.Get(KeyUser)
	if err != nil || raw == "" {
		m.clear()
		return
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Printf("session: persisted user record unreadable: %v", err)
		m.clear()
		return
	}
	if role, err := m.cfg.Storage.Get(KeyRole); err == nil && role != "" {
		user.Role = role
	}
	m.apply(token, &user)
}

// persist writes token, user, and role together. Storage and memory may
// only diverge transiently inside the login/bootstrap call itself.
func (m *Manager) persist(token string, user *User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := m.cfg.Storage.Set(KeyToken, token); err != nil {
		return err
	}
	if err := m.cfg.Storage.Set(KeyUser, string(raw)); err != nil {
		return err
	}
	return m.cfg.Storage.Set(KeyRole, user.Role)
}

func (m *Manager) apply(token string, user *User) {
	role := authz.ParseRole(user.Role)
	m.mu.Lock()
	m.user = user
	m.role = role
	m.token = token
	m.permissions = authz.PermissionsFor(role)
	m.mu.Unlock()
}

// clear removes the persisted session and resets in-memory state.
func (m *Manager) clear() {
	for _, key := range []string{KeyToken, KeyUser, KeyRole} {
		if err := m.cfg.Storage.Delete(key); err != nil {
			log.Printf("session: clearing %q failed: %v", key, err)
		}
	}
	m.mu.Lock()
	m.user = nil
	m.role = authz.RoleUnknown
	m.token = ""
	m.permissions = []authz.Permission{}
	m.mu.Unlock()
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}
