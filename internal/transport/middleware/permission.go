package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/admin-management/internal"
	"github.com/frahmantamala/admin-management/internal/permission"
	"github.com/frahmantamala/admin-management/internal/session"
)

// RequirePermissions passes when the session holds ANY of the listed
// permission strings. The wildcard grant short-circuits every check.
func RequirePermissions(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loginUser, ok := session.FromContext(r.Context())
			if !ok {
				writeGuardError(w, internal.ErrSessionExpired)
				return
			}

			if !permission.HasAnyPermission(loginUser.Permissions, perms...) {
				writeGuardError(w, internal.ErrInsufficientPermission)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles passes when the session holds ANY of the listed role keys.
// The built-in admin role key bypasses the check.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loginUser, ok := session.FromContext(r.Context())
			if !ok {
				writeGuardError(w, internal.ErrSessionExpired)
				return
			}

			if !permission.HasAnyRole(loginUser.RoleKeys, roles...) {
				writeGuardError(w, internal.ErrInsufficientPermission)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeGuardError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		status, body := appErr.ToHTTPResponse()
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusForbidden, map[string]interface{}{
		"code":    http.StatusForbidden,
		"message": "forbidden",
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
