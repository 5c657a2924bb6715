package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/onlinestore/onlinestore/internal/auth"
)

// Middleware enforces the authorization policy for HTTP handlers. It must run
// after the authentication gate.
type Middleware struct {
	Policy       *Policy
	Unauthorized *UnauthorizedHandler
	Logger       *slog.Logger
}

// Authorize evaluates every request against the policy before it reaches a handler.
func (m Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := currentPrincipal(r)
		decision := m.Policy.Evaluate(r.Method, r.URL.Path, principal)
		if !decision.Allowed {
			reason := decision.Reason
			if decision.Rule != nil {
				reason += " (" + decision.Rule.String() + ")"
			} else {
				reason += " (default)"
			}
			m.Unauthorized.Handle(w, r, reason)
			return
		}
		if m.Logger != nil && decision.Rule == nil {
			m.Logger.Debug("request allowed by default rule", slog.String("path", r.URL.Path))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAny ensures the current principal holds at least one of roles. It is
// used on individual routes in addition to the policy table.
func (m Middleware) RequireAny(roles ...auth.RoleName) func(http.Handler) http.Handler {
	normalized := normalizeRoles(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal := currentPrincipal(r)
			if principal == nil {
				m.Unauthorized.Handle(w, r, "authentication required")
				return
			}
			if hasAnyRole(principal, normalized) {
				next.ServeHTTP(w, r)
				return
			}
			m.Unauthorized.Handle(w, r, "missing any of roles "+joinRoles(normalized))
		})
	}
}

func currentPrincipal(r *http.Request) *auth.Principal {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return nil
	}
	return &p
}

func normalizeRoles(roles []auth.RoleName) []auth.RoleName {
	seen := make(map[auth.RoleName]struct{}, len(roles))
	normalized := make([]auth.RoleName, 0, len(roles))
	for _, r := range roles {
		r = auth.RoleName(strings.ToUpper(strings.TrimSpace(string(r))))
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		normalized = append(normalized, r)
	}
	return normalized
}

func hasAnyRole(p *auth.Principal, required []auth.RoleName) bool {
	for _, r := range required {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

func joinRoles(roles []auth.RoleName) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}
