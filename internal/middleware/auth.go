package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
	"github.com/iliyamo/auth-account-service/internal/utils"
)

// Context keys populated by the authorization gate for downstream handlers.
const (
	ContextUserID    = "user_id"
	ContextRole      = "role"
	ContextSessionID = "session_id"
)

// SessionReader is the slice of the session store the gate needs.
type SessionReader interface {
	GetByID(ctx context.Context, id string) (*model.Session, error)
}

// AuthGate returns the authorization gate middleware. It performs the
// two-layer check that makes logout and forced revocation effective despite
// tokens being unrevocable by the signing scheme alone:
//
//  1. stateless: verify the access token's signature and expiry;
//  2. stateful: the session named in the claims must still exist and be
//     unexpired. A cryptographically valid token whose session is gone is
//     rejected and the client's cookies are cleared.
//
// The token is read from the access cookie, falling back to a Bearer
// Authorization header for non-browser clients.
func AuthGate(accessSecret string, sessions SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return unauthorized(c, "Unauthorized")
			}

			claims, err := utils.ParseAccessToken(accessSecret, raw)
			if err != nil {
				// Both classes are 401, but an expired token is routine
				// while a malformed one is worth noticing in the logs.
				if errors.Is(err, utils.ErrTokenExpired) {
					return unauthorized(c, "Token expired")
				}
				log.Printf("authgate: rejected malformed token from %s", c.RealIP())
				return unauthorized(c, "Invalid token")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			sess, err := sessions.GetByID(ctx, claims.SessionID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					ClearAuthCookies(c)
					return unauthorized(c, "Session not found")
				}
				return failure(c, http.StatusServiceUnavailable, "Service unavailable")
			}
			if !sess.Live(time.Now().UTC()) {
				// Expired-but-present rows are dead sessions.
				ClearAuthCookies(c)
				return unauthorized(c, "Session not found")
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextRole, claims.Role)
			c.Set(ContextSessionID, claims.SessionID)
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func unauthorized(c echo.Context, msg string) error {
	return failure(c, http.StatusUnauthorized, msg)
}

// failure renders the standard error envelope for responses produced inside
// the middleware chain, before any handler helper is reachable.
func failure(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{
		"success": false,
		"message": msg,
		"meta":    echo.Map{"timestamp": time.Now().UTC().Format(time.RFC3339)},
	})
}
