package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/auth-account-service/internal/apperr"
	"github.com/iliyamo/auth-account-service/internal/config"
	"github.com/iliyamo/auth-account-service/internal/metrics"
	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
	"github.com/iliyamo/auth-account-service/internal/utils"
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
}

// RefreshResult carries the outcome of a refresh. NewRefreshToken is empty
// unless the sliding-expiry policy rotated the session.
type RefreshResult struct {
	AccessToken     string
	NewRefreshToken string
}

// ResetTicket is returned by CreateResetToken. Secret is the plaintext reset
// secret, delivered to the user out-of-band; only its hash is stored.
type ResetTicket struct {
	ID     string `json:"id"`
	Secret string `json:"resetToken"`
}

// AuthService orchestrates login, registration, logout, refresh and the two
// password-change paths. All session and credential state lives in the
// stores; the service itself holds no mutable state and is safe for
// concurrent use.
type AuthService struct {
	cfg      config.Config
	users    UserStore
	sessions SessionStore
	resets   ResetStore
	audit    Auditor
	now      func() time.Time
}

func NewAuthService(cfg config.Config, users UserStore, sessions SessionStore, resets ResetStore, audit Auditor) *AuthService {
	return &AuthService{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		resets:   resets,
		audit:    audit,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with role USER. A duplicate email yields Conflict;
// both branches are audited.
func (s *AuthService) Register(ctx context.Context, name, email, password string, rc RequestContext) (model.UserPublic, error) {
	name = utils.Sanitize(name)
	email = utils.Sanitize(email)

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return model.UserPublic{}, err
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.audit.Record(model.AuditLog{
				Action:       model.ActionRegister,
				Status:       model.AuditFailure,
				ErrorMessage: "User already exists",
				IPAddress:    rc.IP,
				UserAgent:    rc.UserAgent,
			})
			return model.UserPublic{}, apperr.Conflict("User already exists")
		}
		return model.UserPublic{}, err
	}

	s.audit.Record(model.AuditLog{
		UserID:    u.ID,
		Action:    model.ActionRegister,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
	})
	return u.Public(), nil
}

// Login verifies credentials, creates a session and issues both tokens.
// A user may hold multiple concurrent sessions; login never touches other
// sessions. Unknown email and wrong password surface as distinct statuses
// (404 vs 400), matching the upstream API contract.
func (s *AuthService) Login(ctx context.Context, email, password string, rc RequestContext) (TokenPair, error) {
	email = utils.Sanitize(email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues("not_found").Inc()
			s.audit.Record(model.AuditLog{
				Action:       model.ActionLoginFailed,
				Status:       model.AuditFailure,
				ErrorMessage: "User not found",
				IPAddress:    rc.IP,
				UserAgent:    rc.UserAgent,
			})
			return TokenPair{}, apperr.NotFound("User not found")
		}
		return TokenPair{}, err
	}

	if !utils.VerifyPassword(u.PasswordHash, password) {
		metrics.LoginAttempts.WithLabelValues("bad_password").Inc()
		s.audit.Record(model.AuditLog{
			UserID:       u.ID,
			Action:       model.ActionLoginFailed,
			Status:       model.AuditFailure,
			ErrorMessage: "Invalid password",
			IPAddress:    rc.IP,
			UserAgent:    rc.UserAgent,
		})
		return TokenPair{}, apperr.BadRequest("Invalid password")
	}

	now := s.now()
	sess := &model.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Role:      u.Role,
		UserAgent: rc.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return TokenPair{}, err
	}

	access, _, err := utils.NewAccessToken(s.cfg.AccessSecret, u.ID, u.Role, sess.ID, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := utils.NewRefreshToken(s.cfg.RefreshSecret, sess.ID, u.ID, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	s.audit.Record(model.AuditLog{
		UserID:    u.ID,
		SessionID: sess.ID,
		Action:    model.ActionLoginSuccess,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
	})
	return TokenPair{AccessToken: access, RefreshToken: refresh, SessionID: sess.ID}, nil
}

// Logout deletes the session, immediately invalidating both outstanding
// tokens at the authorization gate.
func (s *AuthService) Logout(ctx context.Context, sessionID string, rc RequestContext) error {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.Record(model.AuditLog{
				Action:       model.ActionLogoutFailed,
				Status:       model.AuditFailure,
				ErrorMessage: "Session not found or already logged out",
				IPAddress:    rc.IP,
				UserAgent:    rc.UserAgent,
			})
			return apperr.NotFound("Session not found")
		}
		return err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	metrics.SessionsRevoked.WithLabelValues("logout").Inc()
	s.audit.Record(model.AuditLog{
		UserID:    sess.UserID,
		SessionID: sess.ID,
		Action:    model.ActionLogout,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
	})
	return nil
}

// Refresh validates a refresh token against the refresh secret and the
// session row. Sliding expiry: a session whose last update is older than the
// staleness threshold is extended to a full lifetime again and its refresh
// token rotated; otherwise only a new access token is issued. An expired
// session row is treated exactly like a deleted one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, rc RequestContext) (RefreshResult, error) {
	claims, err := utils.ParseRefreshToken(s.cfg.RefreshSecret, refreshToken)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
		msg := "Malformed refresh token"
		if errors.Is(err, utils.ErrTokenExpired) {
			msg = "Expired refresh token"
		}
		s.audit.Record(model.AuditLog{
			Action:       model.ActionTokenRefresh,
			Status:       model.AuditFailure,
			ErrorMessage: msg,
			IPAddress:    rc.IP,
			UserAgent:    rc.UserAgent,
		})
		return RefreshResult{}, apperr.Unauthorized("Invalid refresh token")
	}

	now := s.now()
	sess, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
			s.audit.Record(model.AuditLog{
				UserID:       claims.UserID,
				SessionID:    claims.SessionID,
				Action:       model.ActionTokenRefresh,
				Status:       model.AuditFailure,
				ErrorMessage: "Session not found",
				IPAddress:    rc.IP,
				UserAgent:    rc.UserAgent,
			})
			return RefreshResult{}, apperr.Unauthorized("Session expired")
		}
		return RefreshResult{}, err
	}
	if !sess.Live(now) {
		metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
		s.audit.Record(model.AuditLog{
			UserID:       sess.UserID,
			SessionID:    sess.ID,
			Action:       model.ActionTokenRefresh,
			Status:       model.AuditFailure,
			ErrorMessage: "Session expired",
			IPAddress:    rc.IP,
			UserAgent:    rc.UserAgent,
		})
		return RefreshResult{}, apperr.Unauthorized("Session expired")
	}

	var newRefresh string
	if sess.UpdatedAt.Before(now.Add(-s.cfg.SessionStale)) {
		// Stale session: roll the expiry forward and rotate the refresh
		// token. Last writer wins when two refreshes race.
		if err := s.sessions.Extend(ctx, sess.ID, now.Add(s.cfg.RefreshTTL), now); err != nil {
			return RefreshResult{}, err
		}
		newRefresh, _, err = utils.NewRefreshToken(s.cfg.RefreshSecret, sess.ID, sess.UserID, s.cfg.RefreshTTL)
		if err != nil {
			return RefreshResult{}, err
		}
		metrics.TokenRefreshes.WithLabelValues("rotated").Inc()
	} else {
		metrics.TokenRefreshes.WithLabelValues("reissued").Inc()
	}

	access, _, err := utils.NewAccessToken(s.cfg.AccessSecret, sess.UserID, sess.Role, sess.ID, s.cfg.AccessTTL)
	if err != nil {
		return RefreshResult{}, err
	}

	s.audit.Record(model.AuditLog{
		UserID:    sess.UserID,
		SessionID: sess.ID,
		Action:    model.ActionTokenRefresh,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
	})
	return RefreshResult{AccessToken: access, NewRefreshToken: newRefresh}, nil
}

// CreateResetToken issues a password reset ticket for the user behind the
// email. Prior outstanding tickets are invalidated so at most one is valid
// at a time. The plaintext secret is returned to the caller for out-of-band
// delivery; only its hash is stored.
func (s *AuthService) CreateResetToken(ctx context.Context, email string, rc RequestContext) (ResetTicket, error) {
	email = utils.Sanitize(email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.Record(model.AuditLog{
				Action:       model.ActionPasswordResetFailed,
				Status:       model.AuditFailure,
				ErrorMessage: "User not found",
				IPAddress:    rc.IP,
				UserAgent:    rc.UserAgent,
			})
			return ResetTicket{}, apperr.NotFound("User not found")
		}
		return ResetTicket{}, err
	}

	if err := s.resets.DeleteByUser(ctx, u.ID); err != nil {
		return ResetTicket{}, err
	}

	secret, hash, err := utils.NewResetSecret(s.cfg.BcryptCost)
	if err != nil {
		return ResetTicket{}, err
	}
	pr := &model.PasswordReset{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(s.cfg.ResetTTL),
		CreatedAt: s.now(),
	}
	if err := s.resets.Create(ctx, pr); err != nil {
		return ResetTicket{}, err
	}

	s.audit.Record(model.AuditLog{
		UserID:    u.ID,
		Action:    model.ActionPasswordResetRequest,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
	})
	return ResetTicket{ID: pr.ID, Secret: secret}, nil
}

// ResetPassword consumes a reset ticket: persists the new password, deletes
// the ticket (single use) and revokes every session of the user. A replayed
// ticket fails as not-found because the row is gone.
func (s *AuthService) ResetPassword(ctx context.Context, resetID, secret, newPassword string, rc RequestContext) (model.UserPublic, error) {
	pr, err := s.resets.GetByID(ctx, resetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.Record(model.AuditLog{
				Action:       model.ActionPasswordResetFailed,
				Status:       model.AuditFailure,
				ErrorMessage: "Reset token not found",
				IPAddress:    rc.IP,
				UserAgent:    rc.UserAgent,
			})
			return model.UserPublic{}, apperr.NotFound("Reset token not found")
		}
		return model.UserPublic{}, err
	}

	if !utils.VerifyResetSecret(pr.TokenHash, secret) || !pr.ExpiresAt.After(s.now()) {
		s.audit.Record(model.AuditLog{
			UserID:       pr.UserID,
			Action:       model.ActionPasswordResetFailed,
			Status:       model.AuditFailure,
			ErrorMessage: "Invalid or expired reset token",
			IPAddress:    rc.IP,
			UserAgent:    rc.UserAgent,
		})
		return model.UserPublic{}, apperr.Unauthorized("Invalid or expired reset token")
	}

	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return model.UserPublic{}, err
	}
	if err := s.users.UpdatePassword(ctx, pr.UserID, hash); err != nil {
		return model.UserPublic{}, err
	}
	if err := s.resets.Delete(ctx, pr.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return model.UserPublic{}, err
	}
	// Force global logout: every outstanding token of this user dies here.
	// A store failure must surface, otherwise old sessions would keep
	// working against a password the user just rotated.
	n, err := s.sessions.DeleteByUser(ctx, pr.UserID)
	if err != nil {
		s.audit.Record(model.AuditLog{
			UserID:       pr.UserID,
			Action:       model.ActionPasswordResetFailed,
			Status:       model.AuditFailure,
			ErrorMessage: err.Error(),
			IPAddress:    rc.IP,
			UserAgent:    rc.UserAgent,
		})
		return model.UserPublic{}, err
	}
	metrics.SessionsRevoked.WithLabelValues("reset").Add(float64(n))

	u, err := s.users.GetByID(ctx, pr.UserID)
	if err != nil {
		return model.UserPublic{}, err
	}

	s.audit.Record(model.AuditLog{
		UserID:    pr.UserID,
		Action:    model.ActionPasswordResetSuccess,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
	})
	return u.Public(), nil
}

// ChangePassword is the authenticated password change path. Unlike
// ResetPassword it does not revoke other sessions, matching the upstream
// behavior.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string, rc RequestContext) (model.UserPublic, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.UserPublic{}, apperr.NotFound("User not found")
		}
		return model.UserPublic{}, err
	}

	if !utils.VerifyPassword(u.PasswordHash, oldPassword) {
		s.audit.Record(model.AuditLog{
			UserID:       u.ID,
			Action:       model.ActionPasswordChangeFailed,
			Status:       model.AuditFailure,
			ErrorMessage: "Invalid password",
			IPAddress:    rc.IP,
			UserAgent:    rc.UserAgent,
		})
		return model.UserPublic{}, apperr.Unauthorized("Invalid password")
	}
	if utils.VerifyPassword(u.PasswordHash, newPassword) {
		return model.UserPublic{}, apperr.BadRequest("New password must differ from the old one")
	}

	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return model.UserPublic{}, err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return model.UserPublic{}, err
	}

	s.audit.Record(model.AuditLog{
		UserID:    u.ID,
		Action:    model.ActionPasswordChangeSuccess,
		Status:    model.AuditSuccess,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
	})
	u.PasswordHash = hash
	return u.Public(), nil
}
