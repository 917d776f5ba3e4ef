package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequirePermission checks that one of the token's roles grants permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			roles := rolesClaim(claims["roles"])
			if !user.AnyHasPermission(roles, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user roles are %v", permission, roles))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Decoded JSON arrays arrive as []interface{}.
func rolesClaim(v interface{}) []string {
	switch roles := v.(type) {
	case []string:
		return roles
	case []interface{}:
		out := make([]string, 0, len(roles))
		for _, r := range roles {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{roles}
	default:
		return nil
	}
}
