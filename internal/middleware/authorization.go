package middleware

import (
	"net/http"

	"shop-catalog/internal/policy"

	"go.uber.org/zap"
)

// RequirePermission lets the request through only when the caller's role may perform op.
// It must run after AuthMiddleware.
func RequirePermission(op policy.Operation, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if err := policy.Authorize(role, op); err != nil {
				logger.Warn("User role not authorized",
					zap.String("role", string(role)),
					zap.String("operation", string(op)),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
