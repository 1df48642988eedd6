package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flourmill/internal/authz"
)

type countingTransport struct {
	calls int64
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt64(&t.calls, 1)
	return t.next.RoundTrip(req)
}

// fakeBackend serves the four auth endpoints with programmable behavior.
type fakeBackend struct {
	loginResp    loginResponse
	valid        bool
	refreshResp  refreshResponse
	logoutCalled int64
}

func (b *fakeBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, b.loginResp)
	})
	mux.HandleFunc("GET /api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, validateResponse{Valid: b.valid})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&b.logoutCalled, 1)
		writeJSON(w, map[string]bool{"success": true})
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, b.refreshResp)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newManager(t *testing.T, baseURL string, storage Storage, allowMock bool) *Manager {
	t.Helper()
	m, err := New(Config{BaseURL: baseURL, Storage: storage, AllowMockTokens: allowMock})
	require.NoError(t, err)
	return m
}

func seedStorage(t *testing.T, storage Storage, token string, user User) {
	t.Helper()
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, storage.Set(KeyToken, token))
	require.NoError(t, storage.Set(KeyUser, string(raw)))
	require.NoError(t, storage.Set(KeyRole, user.Role))
}

func TestNewRequiresStorage(t *testing.T) {
	_, err := New(Config{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestBootstrapEmptyStorage(t *testing.T) {
	m := newManager(t, "http://127.0.0.1:1", NewMemoryStorage(), false)

	assert.True(t, m.Loading())
	require.NoError(t, m.Bootstrap(context.Background()))
	assert.False(t, m.Loading())
	assert.False(t, m.IsAuthenticated())
	assert.Empty(t, m.Snapshot().Permissions)
}

func TestBootstrapMockTokenMakesNoNetworkCalls(t *testing.T) {
	storage := NewMemoryStorage()
	seedStorage(t, storage, "mock-jwt-token-1700000000000", User{
		ID: "u1", FirstName: "Dev", LastName: "Account", Email: "dev@flourmill.com", Role: "Manager",
	})

	transport := &countingTransport{next: http.DefaultTransport}
	m, err := New(Config{
		BaseURL:         "http://127.0.0.1:1", // unroutable; must never be dialed
		Storage:         storage,
		HTTPClient:      &http.Client{Transport: transport},
		AllowMockTokens: true,
	})
	require.NoError(t, err)

	require.NoError(t, m.Bootstrap(context.Background()))

	assert.EqualValues(t, 0, atomic.LoadInt64(&transport.calls))
	snap := m.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, authz.RoleManager, snap.Role)
	assert.Equal(t, authz.PermissionsFor(authz.RoleManager), snap.Permissions)
	assert.False(t, snap.Loading)
}

func TestBootstrapMockTokenDisabledGoesThroughValidation(t *testing.T) {
	backend := &fakeBackend{valid: false}
	srv := backend.server(t)

	storage := NewMemoryStorage()
	seedStorage(t, storage, "mock-jwt-token-1700000000000", User{ID: "u1", Role: "Manager"})

	m := newManager(t, srv.URL, storage, false)
	require.NoError(t, m.Bootstrap(context.Background()))

	assert.False(t, m.IsAuthenticated())
	tok, _ := storage.Get(KeyToken)
	assert.Empty(t, tok)
}

func TestBootstrapValidTokenRestoresSession(t *testing.T) {
	backend := &fakeBackend{valid: true}
	srv := backend.server(t)

	storage := NewMemoryStorage()
	seedStorage(t, storage, "real-token", User{
		ID: "u2", FirstName: "Jane", LastName: "Doe", Email: "jane@flourmill.com", Role: "Cashier",
	})

	m := newManager(t, srv.URL, storage, false)
	require.NoError(t, m.Bootstrap(context.Background()))

	snap := m.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, authz.RoleCashier, snap.Role)
	assert.Equal(t, "jane@flourmill.com", snap.User.Email)
}

func TestBootstrapRejectedTokenClearsEverything(t *testing.T) {
	backend := &fakeBackend{valid: false}
	srv := backend.server(t)

	storage := NewMemoryStorage()
	seedStorage(t, storage, "stale-token", User{ID: "u3", Role: "Admin"})

	m := newManager(t, srv.URL, storage, false)
	require.NoError(t, m.Bootstrap(context.Background()))

	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.Loading())
	for _, key := range []string{KeyToken, KeyUser, KeyRole} {
		v, _ := storage.Get(key)
		assert.Empty(t, v, "storage key %q should be cleared", key)
	}
}

func TestBootstrapNetworkErrorClearsRealTokenSession(t *testing.T) {
	storage := NewMemoryStorage()
	seedStorage(t, storage, "real-token", User{ID: "u4", Role: "Manager"})

	// Unroutable backend: validation cannot complete.
	m := newManager(t, "http://127.0.0.1:1", storage, false)
	require.NoError(t, m.Bootstrap(context.Background()))

	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.Loading())
}

func TestLoginSuccess(t *testing.T) {
	backend := &fakeBackend{loginResp: loginResponse{
		Success: true,
		User: &User{
			ID: "a1", FirstName: "John", LastName: "Miller",
			Email: "admin@flourmill.com", Role: "Admin",
		},
		Token: "abc",
	}}
	srv := backend.server(t)

	storage := NewMemoryStorage()
	m := newManager(t, srv.URL, storage, false)
	require.NoError(t, m.Bootstrap(context.Background()))

	res := m.Login(context.Background(), "admin@flourmill.com", "admin123")
	require.True(t, res.Success)
	assert.Equal(t, "John", res.User.FirstName)

	assert.True(t, m.IsAdmin())
	assert.True(t, m.HasPermission(authz.PermSystemAdmin))
	assert.False(t, m.Loading())

	role, _ := storage.Get(KeyRole)
	assert.Equal(t, "Admin", role)
	tok, _ := storage.Get(KeyToken)
	assert.Equal(t, "abc", tok)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	backend := &fakeBackend{loginResp: loginResponse{
		Success: false, Message: "Invalid email or password",
	}}
	srv := backend.server(t)

	m := newManager(t, srv.URL, NewMemoryStorage(), false)
	require.NoError(t, m.Bootstrap(context.Background()))
	before := m.IsAuthenticated()

	res := m.Login(context.Background(), "admin@flourmill.com", "wrong")
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid email or password", res.Message)
	assert.Equal(t, before, m.IsAuthenticated())
}

func TestLoginNetworkErrorReturnsGenericMessage(t *testing.T) {
	m := newManager(t, "http://127.0.0.1:1", NewMemoryStorage(), false)

	res := m.Login(context.Background(), "a@b.com", "pw")
	assert.False(t, res.Success)
	assert.Equal(t, "Login failed. Please try again.", res.Message)
	assert.False(t, m.IsAuthenticated())
}

func TestLogoutIsIdempotent(t *testing.T) {
	backend := &fakeBackend{loginResp: loginResponse{
		Success: true,
		User:    &User{ID: "a1", Role: "Admin"},
		Token:   "abc",
	}}
	srv := backend.server(t)

	storage := NewMemoryStorage()
	m := newManager(t, srv.URL, storage, false)
	require.True(t, m.Login(context.Background(), "admin@flourmill.com", "admin123").Success)

	m.Logout(context.Background())
	assert.False(t, m.IsAuthenticated())
	assert.EqualValues(t, 1, atomic.LoadInt64(&backend.logoutCalled))

	m.Logout(context.Background())
	assert.False(t, m.IsAuthenticated())
	// No token anymore, so no second backend notification.
	assert.EqualValues(t, 1, atomic.LoadInt64(&backend.logoutCalled))

	for _, key := range []string{KeyToken, KeyUser, KeyRole} {
		v, _ := storage.Get(key)
		assert.Empty(t, v)
	}
}

func TestLogoutClearsLocallyEvenWhenBackendUnreachable(t *testing.T) {
	storage := NewMemoryStorage()
	seedStorage(t, storage, "mock-jwt-token-1", User{ID: "u1", Role: "Admin"})

	m := newManager(t, "http://127.0.0.1:1", storage, true)
	require.NoError(t, m.Bootstrap(context.Background()))
	require.True(t, m.IsAuthenticated())

	m.Logout(context.Background())
	assert.False(t, m.IsAuthenticated())
	tok, _ := storage.Get(KeyToken)
	assert.Empty(t, tok)
}

func TestRefreshTokenSuccessUpdatesTokenOnly(t *testing.T) {
	backend := &fakeBackend{
		loginResp: loginResponse{
			Success: true,
			User:    &User{ID: "m1", FirstName: "Mai", Role: "Manager"},
			Token:   "tok-1",
		},
		refreshResp: refreshResponse{Success: true, Token: "tok-2"},
	}
	srv := backend.server(t)

	storage := NewMemoryStorage()
	m := newManager(t, srv.URL, storage, false)
	require.True(t, m.Login(context.Background(), "mai@flourmill.com", "pw").Success)
	userBefore, _ := storage.Get(KeyUser)

	assert.True(t, m.RefreshToken(context.Background()))

	tok, _ := storage.Get(KeyToken)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, "tok-2", m.Token())
	userAfter, _ := storage.Get(KeyUser)
	assert.Equal(t, userBefore, userAfter)
	role, _ := storage.Get(KeyRole)
	assert.Equal(t, "Manager", role)
	assert.True(t, m.IsAuthenticated())
}

func TestRefreshTokenFailureInvalidatesSession(t *testing.T) {
	backend := &fakeBackend{
		loginResp: loginResponse{
			Success: true,
			User:    &User{ID: "m1", Role: "Manager"},
			Token:   "tok-1",
		},
		refreshResp: refreshResponse{Success: false, Message: "refresh token expired"},
	}
	srv := backend.server(t)

	storage := NewMemoryStorage()
	m := newManager(t, srv.URL, storage, false)
	require.True(t, m.Login(context.Background(), "mai@flourmill.com", "pw").Success)

	assert.False(t, m.RefreshToken(context.Background()))
	assert.False(t, m.IsAuthenticated())
	tok, _ := storage.Get(KeyToken)
	assert.Empty(t, tok)
}

func TestRefreshTokenWithoutSession(t *testing.T) {
	m := newManager(t, "http://127.0.0.1:1", NewMemoryStorage(), false)
	assert.False(t, m.RefreshToken(context.Background()))
}

func TestAuthenticatedTracksUserThroughLifecycle(t *testing.T) {
	backend := &fakeBackend{
		loginResp: loginResponse{
			Success: true,
			User:    &User{ID: "e1", Role: "Employee"},
			Token:   "tok",
		},
		valid: true,
	}
	srv := backend.server(t)

	storage := NewMemoryStorage()
	m := newManager(t, srv.URL, storage, false)

	require.NoError(t, m.Bootstrap(context.Background()))
	assert.False(t, m.IsAuthenticated())

	require.True(t, m.Login(context.Background(), "e@flourmill.com", "pw").Success)
	assert.True(t, m.IsAuthenticated())
	assert.NotNil(t, m.Snapshot().User)

	m.Logout(context.Background())
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.Snapshot().User)
}

func TestCanAccessHierarchy(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{"Admin", true},
		{"Manager", true},
		{"Employee", false},
		{"Cashier", false},
	}
	for _, tc := range cases {
		storage := NewMemoryStorage()
		seedStorage(t, storage, "mock-jwt-token-1", User{ID: "u", Role: tc.role})
		m := newManager(t, "http://127.0.0.1:1", storage, true)
		require.NoError(t, m.Bootstrap(context.Background()))
		assert.Equal(t, tc.want, m.CanAccess(authz.RoleManager), "role %s", tc.role)
	}

	// Unset role (logged out) never passes.
	m := newManager(t, "http://127.0.0.1:1", NewMemoryStorage(), false)
	require.NoError(t, m.Bootstrap(context.Background()))
	assert.False(t, m.CanAccess(authz.RoleManager))
}

func TestPermissionPredicates(t *testing.T) {
	storage := NewMemoryStorage()
	seedStorage(t, storage, "mock-jwt-token-1", User{ID: "c1", Role: "Cashier"})
	m := newManager(t, "http://127.0.0.1:1", storage, true)
	require.NoError(t, m.Bootstrap(context.Background()))

	assert.True(t, m.HasPermission(authz.PermPurchaseCreate))
	assert.False(t, m.HasPermission(authz.PermUserDelete))

	assert.True(t, m.HasAnyPermission(authz.PermUserDelete, authz.PermPurchaseRead))
	assert.False(t, m.HasAnyPermission(authz.PermUserDelete, authz.PermSystemAdmin))

	assert.True(t, m.HasAllPermissions(authz.PermPurchaseCreate, authz.PermPurchaseRead))
	assert.False(t, m.HasAllPermissions(authz.PermPurchaseCreate, authz.PermUserDelete))
}

func TestPermissionsMatchTablePerRole(t *testing.T) {
	for _, role := range []authz.Role{authz.RoleAdmin, authz.RoleManager, authz.RoleEmployee, authz.RoleCashier} {
		storage := NewMemoryStorage()
		seedStorage(t, storage, "mock-jwt-token-1", User{ID: "u", Role: string(role)})
		m := newManager(t, "http://127.0.0.1:1", storage, true)
		require.NoError(t, m.Bootstrap(context.Background()))
		assert.Equal(t, authz.PermissionsFor(role), m.Snapshot().Permissions, "role %s", role)
	}
}

func TestWarehouseManagerRoleHasNoPermissions(t *testing.T) {
	storage := NewMemoryStorage()
	seedStorage(t, storage, "mock-jwt-token-1", User{ID: "w1", Role: "Warehouse Manager"})
	m := newManager(t, "http://127.0.0.1:1", storage, true)
	require.NoError(t, m.Bootstrap(context.Background()))

	assert.True(t, m.IsAuthenticated())
	assert.Empty(t, m.Snapshot().Permissions)
	assert.False(t, m.CanAccess(authz.RoleCashier))
}
