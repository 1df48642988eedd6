// Package guard decides, per protected screen, whether to show content,
// bounce to login, or show an access-denied panel. A Guard keeps no state of
// its own: every Evaluate re-derives the decision from the session manager,
// so a session change is reflected on the next evaluation.
package guard

import (
	"flourmill/internal/authz"
	"flourmill/internal/session"
)

// LoginPath is the redirect target for unauthenticated access.
const LoginPath = "/login"

// State is the observable outcome of evaluating a guard.
type State int

const (
	// StatePending means bootstrap has not finished; render a loading
	// indicator, make no redirect and show no content.
	StatePending State = iota
	// StateUnauthenticated means no user is logged in; redirect to login,
	// preserving the requested location for a post-login return.
	StateUnauthenticated
	// StateForbidden means the user is logged in but their role is not
	// allowed here; render the access-denied panel with a go-back affordance.
	StateForbidden
	// StateAuthorized means the protected content renders unchanged.
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateForbidden:
		return "forbidden"
	case StateAuthorized:
		return "authorized"
	}
	return "unknown"
}

// Decision carries the evaluated state plus the navigation hints a consumer
// needs to act on it.
type Decision struct {
	State      State
	RedirectTo string // login path when unauthenticated, "" otherwise
	From       string // originally requested location, preserved for return
}

// Guard gates one route. An empty allowed set means any authenticated user
// passes; otherwise the session role must be one of the allowed roles.
type Guard struct {
	session *session.Manager
	allowed []authz.Role
}

// New builds a guard allowing the given roles (none = any authenticated).
func New(sm *session.Manager, allowed ...authz.Role) *Guard {
	return &Guard{session: sm, allowed: allowed}
}

// RequireAuth passes any authenticated user.
func RequireAuth(sm *session.Manager) *Guard { return New(sm) }

// AdminOnly passes administrators.
func AdminOnly(sm *session.Manager) *Guard { return New(sm, authz.RoleAdmin) }

// Management passes administrators and managers.
func Management(sm *session.Manager) *Guard {
	return New(sm, authz.RoleAdmin, authz.RoleManager)
}

// Staff passes administrators, managers, and employees.
func Staff(sm *session.Manager) *Guard {
	return New(sm, authz.RoleAdmin, authz.RoleManager, authz.RoleEmployee)
}

// SalesDesk passes administrators, managers, and cashiers.
func SalesDesk(sm *session.Manager) *Guard {
	return New(sm, authz.RoleAdmin, authz.RoleManager, authz.RoleCashier)
}

// Evaluate derives the current decision for a request to the given location.
func (g *Guard) Evaluate(requested string) Decision {
	snap := g.session.Snapshot()

	if snap.Loading {
		return Decision{State: StatePending, From: requested}
	}
	if !snap.IsAuthenticated {
		return Decision{State: StateUnauthenticated, RedirectTo: LoginPath, From: requested}
	}
	if len(g.allowed) == 0 {
		return Decision{State: StateAuthorized, From: requested}
	}
	for _, role := range g.allowed {
		if snap.Role == role {
			return Decision{State: StateAuthorized, From: requested}
		}
	}
	return Decision{State: StateForbidden, From: requested}
}
