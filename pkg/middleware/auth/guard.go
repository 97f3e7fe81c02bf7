package auth

import (
	"context"
	"net/http"
	"slices"
)

// Guard restricts a route to authenticated callers, optionally by user
// name or role. Admins pass any role check.
type Guard struct {
	RequireAuth bool
	Users       []string
	Roles       []string
}

func (g Guard) Empty() bool { return !g.RequireAuth && len(g.Users) == 0 && len(g.Roles) == 0 }

// Allow returns 0 when the caller in ctx passes g, otherwise the HTTP
// status to answer with. A nil middleware only admits unguarded routes.
func (m *Middleware) Allow(ctx context.Context, g Guard) int {
	if g.Empty() {
		return 0
	}
	if m == nil {
		return http.StatusUnauthorized
	}
	u := m.GetUser(ctx)
	if u.Username == "" {
		return http.StatusUnauthorized
	}
	if len(g.Users) > 0 {
		if slices.Contains(g.Users, u.Username) {
			return 0
		}
		return http.StatusForbidden
	}
	if len(g.Roles) > 0 {
		if m.IsAdmin(ctx) || slices.Contains(g.Roles, u.Role.Name) {
			return 0
		}
		return http.StatusForbidden
	}
	return 0
}
