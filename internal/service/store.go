// Package service contains the transport-agnostic core: the auth, user and
// admin engines. Handlers validate and decode requests, then call plain
// methods here; everything stateful lives behind the store interfaces, which
// the repository package implements on MySQL.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
)

// UserStore is the persistence capability for user records.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	ListActive(ctx context.Context) ([]*model.User, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	SoftDelete(ctx context.Context, ids []string) (int64, error)
}

// SessionStore is the persistence capability for login sessions. It is the
// single source of truth for revocation: deleting a row invalidates both
// tokens bound to it.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	Extend(ctx context.Context, id string, expiresAt, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteByUserExcept(ctx context.Context, userID, keepID string) (int64, error)
	DeleteByUsers(ctx context.Context, userIDs []string) (int64, error)
	ListActiveByUsers(ctx context.Context, userIDs []string, now time.Time) ([]*model.Session, error)
}

// ResetStore is the persistence capability for password reset tickets.
type ResetStore interface {
	Create(ctx context.Context, pr *model.PasswordReset) error
	GetByID(ctx context.Context, id string) (*model.PasswordReset, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// AuditQueryStore reads the audit trail for the security dashboard. Writes
// go through the Auditor instead.
type AuditQueryStore interface {
	ListByUser(ctx context.Context, userID string, limit int, action string) ([]*model.AuditLog, error)
	CountFailedLogins(ctx context.Context, ip string, since time.Time) (int, error)
}

// Auditor accepts audit entries best-effort: implementations must never
// block the caller or surface failures.
type Auditor interface {
	Record(e model.AuditLog)
}

// RequestContext carries the transport-level facts every audited operation
// records. Handlers build it once per request.
type RequestContext struct {
	IP        string
	UserAgent string
}
