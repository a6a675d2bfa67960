package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole enforces that the authenticated caller holds one of the given
// roles, as snapshotted into the access token at login. A mismatch is an
// authorization failure, not an authentication one, so it answers 403
// rather than 401. Assumes AuthGate ran earlier in the chain.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextRole).(string)
			if !ok || !allowed[role] {
				return failure(c, http.StatusForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}
