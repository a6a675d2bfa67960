package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-account-service/internal/config"
	"github.com/iliyamo/auth-account-service/internal/service"
)

// UserHandler serves the authenticated self-service endpoints.
type UserHandler struct {
	Cfg   config.Config
	Users *service.UserService
	Auth  *service.AuthService
}

func NewUserHandler(cfg config.Config, users *service.UserService, auth *service.AuthService) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Auth: auth}
}

type updateProfileReq struct {
	Name string `json:"name"`
}
type changePasswordReq struct {
	OldPassword        string `json:"oldPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// Profile returns the caller's own account.
func (h *UserHandler) Profile(c echo.Context) error {
	userID, _, _ := currentUser(c)

	ctx, cancel := timeout(c)
	defer cancel()

	u, err := h.Users.Profile(ctx, userID)
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Profile fetched", u)
}

// Update changes the caller's display name.
func (h *UserHandler) Update(c echo.Context) error {
	userID, _, _ := currentUser(c)

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return respondInvalid(c, FieldError{Message: "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return respondInvalid(c, FieldError{Field: "name", Message: "Name is required"})
	}

	ctx, cancel := timeout(c)
	defer cancel()

	u, err := h.Users.UpdateName(ctx, userID, req.Name, requestContext(c))
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Profile updated", u)
}

// ChangePassword swaps the caller's password after re-verifying the old one.
// Existing sessions, this one included, stay alive.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, _, _ := currentUser(c)

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return respondInvalid(c, FieldError{Message: "invalid body"})
	}
	var errs []FieldError
	if req.OldPassword == "" {
		errs = append(errs, FieldError{Field: "oldPassword", Message: "Old password is required"})
	}
	if len(req.NewPassword) < minPasswordLen {
		errs = append(errs, FieldError{Field: "newPassword", Message: "Password must be at least 6 characters long"})
	}
	if req.NewPassword != req.ConfirmNewPassword {
		errs = append(errs, FieldError{Field: "confirmNewPassword", Message: "Passwords do not match"})
	}
	if len(errs) > 0 {
		return respondInvalid(c, errs...)
	}

	ctx, cancel := timeout(c)
	defer cancel()

	u, err := h.Auth.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword, requestContext(c))
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Password changed successfully", u)
}

// RevokeSessions signs the user out everywhere except the session making the
// call.
func (h *UserHandler) RevokeSessions(c echo.Context) error {
	userID, _, sessionID := currentUser(c)

	ctx, cancel := timeout(c)
	defer cancel()

	n, err := h.Users.RevokeOtherSessions(ctx, userID, sessionID, requestContext(c))
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Sessions revoked", map[string]int64{"revokedCount": n})
}
