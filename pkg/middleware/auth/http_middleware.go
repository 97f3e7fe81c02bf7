package auth

import (
	"net/http"
	"strings"
)

func (m *Middleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Dev bypass for local testing (NEVER enable in prod)
			if m.devBypass {
				if u := devUserFromHeaders(r); u.Username != "" {
					next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
					return
				}
			}

			if raw := m.rawAssertion(r); raw != "" && m.assertKey != nil {
				if u, err := m.validateAssertion(raw); err == nil {
					next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
					return
				}
				// invalid assertions continue anonymously; guards decide
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) rawAssertion(r *http.Request) string {
	if c, err := r.Cookie(m.assertCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func devUserFromHeaders(r *http.Request) User {
	user := r.Header.Get("X-Dev-User")
	if user == "" {
		return User{}
	}
	return User{
		Username:             user,
		AuthenticationSource: AuthenticationSource{Provider: r.Header.Get("X-Dev-Provider")},
		Role:                 Role{Name: r.Header.Get("X-Dev-Role")},
	}
}
