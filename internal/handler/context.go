package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-account-service/internal/apperr"
	mw "github.com/iliyamo/auth-account-service/internal/middleware"
	"github.com/iliyamo/auth-account-service/internal/service"
)

// requestContext collects the transport-level facts the services record in
// the audit trail.
func requestContext(c echo.Context) service.RequestContext {
	return service.RequestContext{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// currentUser pulls the identity the authorization gate stored in context.
func currentUser(c echo.Context) (userID, role, sessionID string) {
	userID, _ = c.Get(mw.ContextUserID).(string)
	role, _ = c.Get(mw.ContextRole).(string)
	sessionID, _ = c.Get(mw.ContextSessionID).(string)
	return
}

// minPasswordLen is the schema-level lower bound on passwords.
const minPasswordLen = 6

// errUnauthorized is the generic 401 used when no credential is present at
// all, before any token or session inspection happens.
var errUnauthorized = apperr.Unauthorized("Unauthorized")
