package middleware

import (
	"net/http"

	"hireloop/internal/models"
)

// Guard gates handlers on the session user and its role. The two callbacks
// decide how a denied request is answered.
type Guard struct {
	Unauthenticated http.HandlerFunc
	Forbidden       http.HandlerFunc
}

// PageGuard redirects like the marketplace pages do.
var PageGuard = Guard{
	Unauthenticated: func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/auth", http.StatusFound)
	},
	Forbidden: func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	},
}

// Require admits any session user when roles is empty, otherwise only users
// whose role is listed.
func (g Guard) Require(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				g.Unauthenticated(w, r)
				return
			}
			if len(roles) > 0 && !hasRole(user.Role, roles) {
				g.Forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits admins only.
func (g Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			g.Unauthenticated(w, r)
			return
		}
		if !user.IsAdmin {
			g.Forbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// DashboardPath is the landing page for a role.
func DashboardPath(role models.Role) string {
	if !role.Valid() {
		return "/onboarding"
	}
	return "/" + string(role) + "/dashboard"
}
