package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/auth-account-service/internal/config"
	"github.com/iliyamo/auth-account-service/internal/handler"
	"github.com/iliyamo/auth-account-service/internal/middleware"
	"github.com/iliyamo/auth-account-service/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check used by load balancers and the
// Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the credential endpoints under /v1/auth. When a
// Redis client is available the whole group sits behind the token-bucket
// rate limiter; without Redis the limiter is skipped rather than failing
// closed.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	if rdb != nil {
		g.Use(middleware.NewTokenBucket(rl, rdb))
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	// GET so browsers can follow the scoped refresh cookie without a body.
	g.GET("/refresh", a.Refresh)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)
}

// RegisterUser registers the authenticated self-service endpoints under
// /v1/user. AuthGate verifies the access token signature and then checks
// that the session row behind it is still alive.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, accessSecret string, sessions middleware.SessionReader) {
	g := e.Group("/v1/user")
	g.Use(middleware.AuthGate(accessSecret, sessions))
	g.GET("/profile", u.Profile)
	g.PUT("/update", u.Update)
	g.POST("/changepassword", u.ChangePassword)
	g.DELETE("/revoke-sessions", u.RevokeSessions)
}

// RegisterAdmin registers the account administration endpoints under
// /v1/admin. Every route requires a live session plus the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, accessSecret string, sessions middleware.SessionReader) {
	g := e.Group("/v1/admin")
	g.Use(middleware.AuthGate(accessSecret, sessions))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.GET("/users", a.ListUsers)
	g.GET("/users/:id", a.GetUser)
	g.PUT("/users/:id", a.UpdateUser)
	g.DELETE("/users/:id", a.DeleteUser)
	// Static segment wins over :id, so the batch route can share the prefix.
	g.DELETE("/users/delete", a.DeleteUsers)

	g.DELETE("/revoke-sessions", a.RevokeUserSessions)
	g.DELETE("/sessions/:id", a.RevokeSession)
	g.GET("/active-sessions", a.ActiveSessions)

	g.GET("/users/login-history/:id", a.LoginHistory)
	g.GET("/suspicious-activity", a.SuspiciousActivity)
}
