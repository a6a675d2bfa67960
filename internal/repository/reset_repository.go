package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/auth-account-service/internal/model"
)

// ResetRepo persists rows of the 'password_resets' table. Rows are single
// use: consumed tickets are deleted, so a replayed id lands on ErrNotFound.
type ResetRepo struct{ DB *sql.DB }

func NewResetRepo(db *sql.DB) *ResetRepo { return &ResetRepo{DB: db} }

// Create inserts a reset ticket.
func (r *ResetRepo) Create(ctx context.Context, pr *model.PasswordReset) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_resets (id, user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?,?)",
		pr.ID, pr.UserID, pr.TokenHash, pr.ExpiresAt, pr.CreatedAt)
	return err
}

// GetByID fetches a ticket by its correlation handle.
func (r *ResetRepo) GetByID(ctx context.Context, id string) (*model.PasswordReset, error) {
	var pr model.PasswordReset
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,token_hash,expires_at,created_at FROM password_resets WHERE id=? LIMIT 1", id).
		Scan(&pr.ID, &pr.UserID, &pr.TokenHash, &pr.ExpiresAt, &pr.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

// Delete consumes a ticket.
func (r *ResetRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM password_resets WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// DeleteByUser invalidates every outstanding ticket for a user. Called when
// a new ticket is issued so at most one ticket is valid at a time.
func (r *ResetRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM password_resets WHERE user_id=?", userID)
	return err
}
