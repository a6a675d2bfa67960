package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/auth-account-service/internal/apperr"
	"github.com/iliyamo/auth-account-service/internal/metrics"
	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
	"github.com/iliyamo/auth-account-service/internal/utils"
)

// AdminService orchestrates privileged user mutation, deletion and forced
// session revocation. The authorization gate enforces the ADMIN role before
// any of these run; the adminID parameter is the acting admin, recorded as
// the actor on every audit entry, success or failure.
type AdminService struct {
	users    UserStore
	sessions SessionStore
	auditQ   AuditQueryStore
	audit    Auditor
	now      func() time.Time
}

func NewAdminService(users UserStore, sessions SessionStore, auditQ AuditQueryStore, audit Auditor) *AdminService {
	return &AdminService{
		users:    users,
		sessions: sessions,
		auditQ:   auditQ,
		audit:    audit,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListUsers returns every user that is not soft-deleted.
func (s *AdminService) ListUsers(ctx context.Context) ([]model.UserAdminView, error) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserAdminView, 0, len(users))
	for _, u := range users {
		out = append(out, u.AdminView())
	}
	return out, nil
}

// GetUser returns one user by id, soft-deleted rows included.
func (s *AdminService) GetUser(ctx context.Context, userID string) (model.UserAdminView, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.UserAdminView{}, apperr.NotFound("User not found")
		}
		return model.UserAdminView{}, err
	}
	return u.AdminView(), nil
}

// UpdateUser changes the target user's name on behalf of an admin.
func (s *AdminService) UpdateUser(ctx context.Context, adminID, userID, name string, rc RequestContext) (model.UserAdminView, error) {
	name = utils.Sanitize(name)
	if name == "" {
		return model.UserAdminView{}, apperr.BadRequest("Name is required")
	}
	if err := s.users.UpdateName(ctx, userID, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.UserAdminView{}, apperr.NotFound("User not found")
		}
		return model.UserAdminView{}, err
	}

	s.audit.Record(model.AuditLog{
		UserID:    adminID,
		Action:    model.ActionAdminUserUpdate,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
		Metadata:  map[string]string{"target_user": userID},
	})

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.UserAdminView{}, err
	}
	return u.AdminView(), nil
}

// DeleteUser soft-deletes one user.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID string, rc RequestContext) error {
	return s.DeleteUsers(ctx, adminID, []string{userID}, rc)
}

// DeleteUsers soft-deletes a batch of users. NotFound when no row changed.
func (s *AdminService) DeleteUsers(ctx context.Context, adminID string, userIDs []string, rc RequestContext) error {
	n, err := s.users.SoftDelete(ctx, userIDs)
	if err != nil {
		return err
	}
	if n == 0 {
		s.audit.Record(model.AuditLog{
			UserID:       adminID,
			Action:       model.ActionAdminUserDelete,
			Status:       model.AuditFailure,
			ErrorMessage: "User not found",
			IPAddress:    rc.IP,
			UserAgent:    rc.UserAgent,
			Metadata:     map[string]string{"target_users": strings.Join(userIDs, ",")},
		})
		return apperr.NotFound("User not found")
	}

	s.audit.Record(model.AuditLog{
		UserID:    adminID,
		Action:    model.ActionAdminUserDelete,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
		Metadata: map[string]string{
			"target_users":  strings.Join(userIDs, ","),
			"deleted_count": strconv.FormatInt(n, 10),
		},
	})
	return nil
}

// RevokeSessions hard-deletes every session of the given users (global
// forced logout). On a store failure the FAILURE entry is recorded first and
// the error re-raised, never swallowed.
func (s *AdminService) RevokeSessions(ctx context.Context, adminID string, userIDs []string, rc RequestContext) (int64, error) {
	targets := strings.Join(userIDs, ",")
	n, err := s.sessions.DeleteByUsers(ctx, userIDs)
	if err != nil {
		s.audit.Record(model.AuditLog{
			UserID:       adminID,
			Action:       model.ActionAdminSessionRevokeFailed,
			Status:       model.AuditFailure,
			ErrorMessage: err.Error(),
			IPAddress:    rc.IP,
			UserAgent:    rc.UserAgent,
			Metadata:     map[string]string{"target_users": targets},
		})
		return 0, err
	}

	metrics.SessionsRevoked.WithLabelValues("admin").Add(float64(n))
	s.audit.Record(model.AuditLog{
		UserID:    adminID,
		Action:    model.ActionAdminSessionRevoke,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
		Metadata: map[string]string{
			"target_users":  targets,
			"revoked_count": strconv.FormatInt(n, 10),
		},
	})
	return n, nil
}

// RevokeSession deletes a single session by id. The owning user id is
// captured before deletion so the audit entry can still name it.
func (s *AdminService) RevokeSession(ctx context.Context, adminID, sessionID string, rc RequestContext) error {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.Record(model.AuditLog{
				UserID:       adminID,
				Action:       model.ActionAdminSessionRevokeFailed,
				Status:       model.AuditFailure,
				ErrorMessage: "Session not found",
				IPAddress:    rc.IP,
				UserAgent:    rc.UserAgent,
				Metadata:     map[string]string{"target_session": sessionID},
			})
			return apperr.NotFound("Session not found")
		}
		return err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	metrics.SessionsRevoked.WithLabelValues("admin").Inc()
	s.audit.Record(model.AuditLog{
		UserID:    adminID,
		SessionID: sessionID,
		Action:    model.ActionAdminSessionRevoke,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
		Metadata:  map[string]string{"target_user": sess.UserID},
	})
	return nil
}

// UserAuditLogs returns the most recent audit entries for a user, optionally
// filtered to a single action.
func (s *AdminService) UserAuditLogs(ctx context.Context, userID string, limit int, action string) ([]*model.AuditLog, error) {
	return s.auditQ.ListByUser(ctx, userID, limit, action)
}

// ActiveSessions returns the live sessions of the given users.
func (s *AdminService) ActiveSessions(ctx context.Context, userIDs []string) ([]*model.Session, error) {
	return s.sessions.ListActiveByUsers(ctx, userIDs, s.now())
}

// SuspiciousActivity counts failed logins from an IP inside a sliding
// window. A zero window is honored (and counts nothing); negative values
// fall back to the 15 minute default.
func (s *AdminService) SuspiciousActivity(ctx context.Context, ip string, windowMinutes int) (int, error) {
	if windowMinutes < 0 {
		windowMinutes = 15
	}
	since := s.now().Add(-time.Duration(windowMinutes) * time.Minute)
	return s.auditQ.CountFailedLogins(ctx, ip, since)
}
