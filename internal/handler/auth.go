package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-account-service/internal/apperr"
	"github.com/iliyamo/auth-account-service/internal/config"
	mw "github.com/iliyamo/auth-account-service/internal/middleware"
	"github.com/iliyamo/auth-account-service/internal/service"
	"github.com/iliyamo/auth-account-service/internal/utils"
)

// AuthHandler bundles dependencies for the unauthenticated auth endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotPasswordReq struct {
	Email string `json:"email"`
}
type resetPasswordReq struct {
	ID              string `json:"id"`
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates a new account with role USER.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respondInvalid(c, FieldError{Message: "invalid body"})
	}
	var errs []FieldError
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Name is required"})
	}
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	}
	if len(req.Password) < minPasswordLen {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 6 characters long"})
	}
	if req.Password != req.ConfirmPassword {
		errs = append(errs, FieldError{Field: "confirmPassword", Message: "Passwords do not match"})
	}
	if len(errs) > 0 {
		return respondInvalid(c, errs...)
	}

	ctx, cancel := timeout(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.Name, req.Email, req.Password, requestContext(c))
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusCreated, "User registered successfully", u)
}

// Login verifies credentials and sets both auth cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondInvalid(c, FieldError{Message: "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return respondInvalid(c, FieldError{Message: "Email and password are required"})
	}

	ctx, cancel := timeout(c)
	defer cancel()

	pair, err := h.Auth.Login(ctx, req.Email, req.Password, requestContext(c))
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}

	mw.SetAuthCookies(c, pair.AccessToken, pair.RefreshToken,
		h.Cfg.AccessTTL, h.Cfg.RefreshTTL, h.Cfg.IsProd())
	return respond(c, http.StatusOK, "Logged in successfully", nil)
}

// Logout revokes the caller's session and clears both cookies. The access
// token only needs to be parseable here; the session row itself is about to
// be deleted.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := accessTokenFromRequest(c)
	if raw == "" {
		return respondErr(c, errUnauthorized, !h.Cfg.IsProd())
	}
	claims, err := utils.ParseAccessToken(h.Cfg.AccessSecret, raw)
	if err != nil {
		mw.ClearAuthCookies(c)
		return respondErr(c, errUnauthorized, !h.Cfg.IsProd())
	}

	ctx, cancel := timeout(c)
	defer cancel()

	err = h.Auth.Logout(ctx, claims.SessionID, requestContext(c))
	mw.ClearAuthCookies(c)
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}

// Refresh exchanges the refresh cookie for a new access token, rotating the
// refresh token when the sliding-expiry policy extended the session.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ck, err := c.Cookie(mw.RefreshCookieName)
	if err != nil || ck.Value == "" {
		return respondErr(c, errUnauthorized, !h.Cfg.IsProd())
	}

	ctx, cancel := timeout(c)
	defer cancel()

	res, err := h.Auth.Refresh(ctx, ck.Value, requestContext(c))
	if err != nil {
		// A rejected credential is gone for good; a store hiccup is not,
		// so the client keeps its cookies and can retry.
		if apperr.Is(err, http.StatusUnauthorized) {
			mw.ClearAuthCookies(c)
		}
		return respondErr(c, err, !h.Cfg.IsProd())
	}

	mw.SetAuthCookies(c, res.AccessToken, res.NewRefreshToken,
		h.Cfg.AccessTTL, h.Cfg.RefreshTTL, h.Cfg.IsProd())
	return respond(c, http.StatusOK, "Token refreshed", nil)
}

// ForgotPassword issues a password reset ticket. The plaintext secret is
// returned in the response body; delivering it out-of-band is the caller's
// concern.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return respondInvalid(c, FieldError{Field: "email", Message: "Email is required"})
	}

	ctx, cancel := timeout(c)
	defer cancel()

	ticket, err := h.Auth.CreateResetToken(ctx, req.Email, requestContext(c))
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusCreated, "Reset token created", ticket)
}

// ResetPassword consumes a reset ticket and clears any session cookies the
// client still holds, since every session of the user was just revoked.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return respondInvalid(c, FieldError{Message: "invalid body"})
	}
	var errs []FieldError
	if req.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "Reset id is required"})
	}
	if req.Token == "" {
		errs = append(errs, FieldError{Field: "token", Message: "Reset token is required"})
	}
	if len(req.Password) < minPasswordLen {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 6 characters long"})
	}
	if req.Password != req.ConfirmPassword {
		errs = append(errs, FieldError{Field: "confirmPassword", Message: "Passwords do not match"})
	}
	if len(errs) > 0 {
		return respondInvalid(c, errs...)
	}

	ctx, cancel := timeout(c)
	defer cancel()

	u, err := h.Auth.ResetPassword(ctx, req.ID, req.Token, req.Password, requestContext(c))
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	mw.ClearAuthCookies(c)
	return respond(c, http.StatusOK, "Password reset successfully", u)
}

func accessTokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(mw.AccessCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func timeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
