package middleware

import (
	"net/http"

	"hrledger/internal/domain/auth"
	"hrledger/internal/transport/http/api"
)

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireApprover limits a route to the roles that decide leave requests and
// run payroll.
func RequireApprover(next http.Handler) http.Handler {
	return requireRoles(next, auth.IsApproverRole)
}

// RequireAdmin limits a route to the Admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return requireRoles(next, func(role string) bool { return role == auth.RoleAdmin })
}

func requireRoles(next http.Handler, allowed func(string) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		if !allowed(user.Role) {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient role", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
