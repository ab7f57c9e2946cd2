package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"snd/internal/domain/rbac"
	"snd/internal/transport/http/api"
)

// PermissionChecker is the slice of the permission service the middleware
// needs. Checks run against the authenticated user, not the role claim, so a
// stale token cannot outlive a role change.
type PermissionChecker interface {
	CheckNamed(ctx context.Context, userID, permission string) (rbac.Decision, error)
}

// RequirePermission denies the request unless the authenticated user holds
// the named permission. Any resolution failure is a denial, never a pass.
func RequirePermission(permission string, checker PermissionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}

			decision, err := checker.CheckNamed(r.Context(), user.UserID, permission)
			if err != nil || !decision.Allowed {
				if err != nil {
					slog.Error("permission check failed, denying",
						"userId", user.UserID,
						"permission", permission,
						"error", err,
					)
				}
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
