package guard

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flourmill/internal/authz"
	"flourmill/internal/session"
)

// sessionWithRole builds a bootstrapped manager holding the given role, or a
// logged-out one when role is empty. Mock tokens keep the network out of it.
func sessionWithRole(t *testing.T, role string) *session.Manager {
	t.Helper()
	storage := session.NewMemoryStorage()
	if role != "" {
		raw, err := json.Marshal(session.User{ID: "u1", Email: "u@flourmill.com", Role: role})
		require.NoError(t, err)
		require.NoError(t, storage.Set(session.KeyToken, "mock-jwt-token-1700000000000"))
		require.NoError(t, storage.Set(session.KeyUser, string(raw)))
		require.NoError(t, storage.Set(session.KeyRole, role))
	}
	m, err := session.New(session.Config{
		BaseURL:         "http://127.0.0.1:1",
		Storage:         storage,
		AllowMockTokens: true,
	})
	require.NoError(t, err)
	require.NoError(t, m.Bootstrap(context.Background()))
	return m
}

func TestEvaluatePendingBeforeBootstrap(t *testing.T) {
	m, err := session.New(session.Config{
		BaseURL: "http://127.0.0.1:1",
		Storage: session.NewMemoryStorage(),
	})
	require.NoError(t, err)

	d := RequireAuth(m).Evaluate("/purchases")
	assert.Equal(t, StatePending, d.State)
	assert.Empty(t, d.RedirectTo)
	assert.Equal(t, "/purchases", d.From)
}

func TestEvaluateUnauthenticatedRedirectsToLogin(t *testing.T) {
	m := sessionWithRole(t, "")

	d := RequireAuth(m).Evaluate("/suppliers")
	assert.Equal(t, StateUnauthenticated, d.State)
	assert.Equal(t, LoginPath, d.RedirectTo)
	assert.Equal(t, "/suppliers", d.From)
}

func TestRequireAuthPassesAnyRole(t *testing.T) {
	for _, role := range []string{"Admin", "Manager", "Employee", "Cashier", "Warehouse Manager"} {
		d := RequireAuth(sessionWithRole(t, role)).Evaluate("/")
		assert.Equal(t, StateAuthorized, d.State, "role %s", role)
	}
}

func TestGuardPresetMatrix(t *testing.T) {
	presets := []struct {
		name    string
		build   func(*session.Manager) *Guard
		allowed map[string]bool
	}{
		{"AdminOnly", AdminOnly, map[string]bool{"Admin": true}},
		{"Management", Management, map[string]bool{"Admin": true, "Manager": true}},
		{"Staff", Staff, map[string]bool{"Admin": true, "Manager": true, "Employee": true}},
		{"SalesDesk", SalesDesk, map[string]bool{"Admin": true, "Manager": true, "Cashier": true}},
	}
	roles := []string{"Admin", "Manager", "Employee", "Cashier", "Warehouse Manager"}

	for _, preset := range presets {
		for _, role := range roles {
			d := preset.build(sessionWithRole(t, role)).Evaluate("/screen")
			want := StateForbidden
			if preset.allowed[role] {
				want = StateAuthorized
			}
			assert.Equal(t, want, d.State, "%s with role %s", preset.name, role)
		}
	}
}

func TestDecisionReflectsSessionChanges(t *testing.T) {
	m := sessionWithRole(t, "Admin")
	g := AdminOnly(m)

	assert.Equal(t, StateAuthorized, g.Evaluate("/admin").State)

	m.Logout(context.Background())
	d := g.Evaluate("/admin")
	assert.Equal(t, StateUnauthenticated, d.State)
	assert.Equal(t, LoginPath, d.RedirectTo)
}

func TestCustomRoleSet(t *testing.T) {
	m := sessionWithRole(t, "Warehouse Manager")
	g := New(m, authz.RoleWarehouseManager)
	assert.Equal(t, StateAuthorized, g.Evaluate("/warehouse-dashboard").State)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
	assert.Equal(t, "forbidden", StateForbidden.String())
	assert.Equal(t, "authorized", StateAuthorized.String())
}
