package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-account-service/internal/config"
	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/service"
)

// AdminHandler serves the admin-only account management endpoints. Role
// enforcement happens in the route group, not here.
type AdminHandler struct {
	Cfg   config.Config
	Admin *service.AdminService
}

func NewAdminHandler(cfg config.Config, admin *service.AdminService) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Admin: admin}
}

type adminUpdateUserReq struct {
	Name string `json:"name"`
}
type userIDsReq struct {
	UserIDs []string `json:"userIds"`
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()

	users, err := h.Admin.ListUsers(ctx)
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Users fetched", users)
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()

	u, err := h.Admin.GetUser(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "User fetched", u)
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	adminID, _, _ := currentUser(c)

	var req adminUpdateUserReq
	if err := c.Bind(&req); err != nil {
		return respondInvalid(c, FieldError{Message: "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return respondInvalid(c, FieldError{Field: "name", Message: "Name is required"})
	}

	ctx, cancel := timeout(c)
	defer cancel()

	u, err := h.Admin.UpdateUser(ctx, adminID, c.Param("id"), req.Name, requestContext(c))
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "User updated", u)
}

// DeleteUser soft-deletes a single account by path parameter.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	adminID, _, _ := currentUser(c)

	ctx, cancel := timeout(c)
	defer cancel()

	if err := h.Admin.DeleteUser(ctx, adminID, c.Param("id"), requestContext(c)); err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "User deleted", nil)
}

// DeleteUsers soft-deletes a batch of accounts named in the body.
func (h *AdminHandler) DeleteUsers(c echo.Context) error {
	adminID, _, _ := currentUser(c)

	var req userIDsReq
	if err := c.Bind(&req); err != nil || len(req.UserIDs) == 0 {
		return respondInvalid(c, FieldError{Field: "userIds", Message: "At least one user id is required"})
	}

	ctx, cancel := timeout(c)
	defer cancel()

	if err := h.Admin.DeleteUsers(ctx, adminID, req.UserIDs, requestContext(c)); err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Users deleted", nil)
}

// RevokeUserSessions force-logs-out every session of the listed users.
func (h *AdminHandler) RevokeUserSessions(c echo.Context) error {
	adminID, _, _ := currentUser(c)

	var req userIDsReq
	if err := c.Bind(&req); err != nil || len(req.UserIDs) == 0 {
		return respondInvalid(c, FieldError{Field: "userIds", Message: "At least one user id is required"})
	}

	ctx, cancel := timeout(c)
	defer cancel()

	n, err := h.Admin.RevokeSessions(ctx, adminID, req.UserIDs, requestContext(c))
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Sessions revoked", map[string]int64{"revokedCount": n})
}

// RevokeSession kills one session by id.
func (h *AdminHandler) RevokeSession(c echo.Context) error {
	adminID, _, _ := currentUser(c)

	ctx, cancel := timeout(c)
	defer cancel()

	if err := h.Admin.RevokeSession(ctx, adminID, c.Param("id"), requestContext(c)); err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Session revoked", nil)
}

// ActiveSessions lists live sessions for the users named in the userIds
// query parameter (comma separated).
func (h *AdminHandler) ActiveSessions(c echo.Context) error {
	raw := c.QueryParam("userIds")
	if raw == "" {
		return respondInvalid(c, FieldError{Field: "userIds", Message: "At least one user id is required"})
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return respondInvalid(c, FieldError{Field: "userIds", Message: "At least one user id is required"})
	}

	ctx, cancel := timeout(c)
	defer cancel()

	sessions, err := h.Admin.ActiveSessions(ctx, ids)
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Active sessions fetched", sessions)
}

// LoginHistory returns a user's audit trail, defaulting to successful
// logins.
func (h *AdminHandler) LoginHistory(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	action := c.QueryParam("action")
	if action == "" {
		action = model.ActionLoginSuccess
	}

	ctx, cancel := timeout(c)
	defer cancel()

	logs, err := h.Admin.UserAuditLogs(ctx, c.Param("id"), limit, action)
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Login history fetched", logs)
}

// SuspiciousActivity counts failed logins from an address inside the given
// window (minutes, default 15).
func (h *AdminHandler) SuspiciousActivity(c echo.Context) error {
	ip := c.QueryParam("ip")
	if ip == "" {
		return respondInvalid(c, FieldError{Field: "ip", Message: "IP address is required"})
	}
	window := -1
	if raw := c.QueryParam("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return respondInvalid(c, FieldError{Field: "window", Message: "Window must be a non-negative integer"})
		}
		window = n
	}

	ctx, cancel := timeout(c)
	defer cancel()

	count, err := h.Admin.SuspiciousActivity(ctx, ip, window)
	if err != nil {
		return respondErr(c, err, !h.Cfg.IsProd())
	}
	return respond(c, http.StatusOK, "Suspicious activity fetched", map[string]any{
		"ip":           ip,
		"failedLogins": count,
	})
}
