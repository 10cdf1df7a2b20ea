// Package rbac provides role-based access control middleware.
package rbac

import (
	"net/http"

	"github.com/arthomesoni/arthome/pkg/middleware"
	"github.com/arthomesoni/arthome/pkg/response"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// HasRole returns middleware that allows access only to users with one of the
// given roles. Requires middleware.Auth to have already run.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := middleware.RoleFromCtx(r.Context())
			if role == "" || !allowed[role] {
				response.Forbidden(w, "Доступ запрещен")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly is shorthand for HasRole(RoleAdmin).
func AdminOnly() func(http.Handler) http.Handler {
	return HasRole(RoleAdmin)
}
