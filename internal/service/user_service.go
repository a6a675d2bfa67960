package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/iliyamo/auth-account-service/internal/apperr"
	"github.com/iliyamo/auth-account-service/internal/metrics"
	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
	"github.com/iliyamo/auth-account-service/internal/utils"
)

// UserService covers the account owner's self-service surface: profile,
// name updates and revoking one's other sessions.
type UserService struct {
	users    UserStore
	sessions SessionStore
	audit    Auditor
}

func NewUserService(users UserStore, sessions SessionStore, audit Auditor) *UserService {
	return &UserService{users: users, sessions: sessions, audit: audit}
}

// Profile returns the owner-facing view of the user.
func (s *UserService) Profile(ctx context.Context, userID string) (model.UserPublic, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.UserPublic{}, apperr.NotFound("User not found")
		}
		return model.UserPublic{}, err
	}
	return u.Public(), nil
}

// UpdateName changes the display name.
func (s *UserService) UpdateName(ctx context.Context, userID, name string, rc RequestContext) (model.UserPublic, error) {
	name = utils.Sanitize(name)
	if name == "" {
		return model.UserPublic{}, apperr.BadRequest("Name is required")
	}
	if err := s.users.UpdateName(ctx, userID, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.UserPublic{}, apperr.NotFound("User not found")
		}
		return model.UserPublic{}, err
	}

	s.audit.Record(model.AuditLog{
		UserID:    userID,
		Action:    model.ActionUserUpdate,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
	})

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.UserPublic{}, err
	}
	return u.Public(), nil
}

// RevokeOtherSessions logs the user out everywhere except the session the
// call was made on. Returns the number of sessions revoked. A store failure
// is audited before being returned.
func (s *UserService) RevokeOtherSessions(ctx context.Context, userID, currentSessionID string, rc RequestContext) (int64, error) {
	n, err := s.sessions.DeleteByUserExcept(ctx, userID, currentSessionID)
	if err != nil {
		s.audit.Record(model.AuditLog{
			UserID:       userID,
			SessionID:    currentSessionID,
			Action:       model.ActionAllSessionsRevokeFailed,
			Status:       model.AuditFailure,
			ErrorMessage: err.Error(),
			IPAddress:    rc.IP,
			UserAgent:    rc.UserAgent,
		})
		return 0, err
	}

	metrics.SessionsRevoked.WithLabelValues("self").Add(float64(n))
	s.audit.Record(model.AuditLog{
		UserID:    userID,
		SessionID: currentSessionID,
		Action:    model.ActionAllSessionsRevokeSuccess,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
		Metadata:  map[string]string{"revoked_count": strconv.FormatInt(n, 10)},
	})
	return n, nil
}
