package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
)

// SessionRepo persists rows of the 'sessions' table. Deletion is the only
// revocation mechanism; there is no revoked flag.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

const sessionColumns = "id,user_id,role,user_agent,created_at,updated_at,expires_at"

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, role, user_agent, created_at, updated_at, expires_at) VALUES (?,?,?,?,?,?,?)",
		s.ID, s.UserID, s.Role, s.UserAgent, s.CreatedAt, s.UpdatedAt, s.ExpiresAt)
	return err
}

// GetByID fetches a session by id. Expired rows are returned as-is; liveness
// is the caller's concern.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id=? LIMIT 1", id).
		Scan(&s.ID, &s.UserID, &s.Role, &s.UserAgent, &s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Extend rolls the session expiry forward and bumps updated_at. Last writer
// wins when two refreshes race; both writes carry a full new expiry so the
// outcome is consistent either way.
func (r *SessionRepo) Extend(ctx context.Context, id string, expiresAt, updatedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET expires_at=?, updated_at=? WHERE id=?",
		expiresAt, updatedAt, id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// Delete removes a single session, revoking both tokens bound to it.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// DeleteByUser removes every session of one user and reports the count.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE user_id=?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByUserExcept removes every session of a user except the given one.
// Used by self-service "log out everywhere else".
func (r *SessionRepo) DeleteByUserExcept(ctx context.Context, userID, keepID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id=? AND id<>?", userID, keepID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByUsers removes all sessions of the given users (admin bulk revoke).
func (r *SessionRepo) DeleteByUsers(ctx context.Context, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	q := "DELETE FROM sessions WHERE user_id IN (" + placeholders(len(userIDs)) + ")"
	res, err := r.DB.ExecContext(ctx, q, args(userIDs)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListActiveByUsers returns unexpired sessions for the given users, newest
// first.
func (r *SessionRepo) ListActiveByUsers(ctx context.Context, userIDs []string, now time.Time) ([]*model.Session, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	q := "SELECT " + sessionColumns + " FROM sessions WHERE user_id IN (" +
		placeholders(len(userIDs)) + ") AND expires_at > ? ORDER BY created_at DESC"
	qargs := append(args(userIDs), now)
	rows, err := r.DB.QueryContext(ctx, q, qargs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Role, &s.UserAgent,
			&s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
