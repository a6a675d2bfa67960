package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
)

// AuditRepo appends to and queries the append-only 'audit_logs' table.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Insert appends one audit entry. device_info and metadata are stored as
// JSON columns.
func (r *AuditRepo) Insert(ctx context.Context, e *model.AuditLog) error {
	device, err := json.Marshal(e.DeviceInfo)
	if err != nil {
		return err
	}
	var meta any
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		meta = string(b)
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO audit_logs
		 (id, user_id, session_id, action, ip_address, user_agent, device_info, status, error_message, metadata, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		e.ID, nullable(e.UserID), nullable(e.SessionID), e.Action, e.IPAddress,
		e.UserAgent, string(device), e.Status, nullable(e.ErrorMessage), meta, e.CreatedAt)
	return err
}

// ListByUser returns the most recent entries for a user, optionally filtered
// by action.
func (r *AuditRepo) ListByUser(ctx context.Context, userID string, limit int, action string) ([]*model.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, user_id, session_id, action, ip_address, user_agent, device_info, status, error_message, metadata, created_at
	      FROM audit_logs WHERE user_id=?`
	qargs := []any{userID}
	if action != "" {
		q += " AND action=?"
		qargs = append(qargs, action)
	}
	q += " ORDER BY created_at DESC LIMIT ?"
	qargs = append(qargs, limit)

	rows, err := r.DB.QueryContext(ctx, q, qargs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AuditLog
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountFailedLogins counts LOGIN_FAILED entries from an IP since the given
// instant. Basic brute-force signal for the security dashboard.
func (r *AuditRepo) CountFailedLogins(ctx context.Context, ip string, since time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audit_logs WHERE ip_address=? AND action=? AND status=? AND created_at >= ?",
		ip, model.ActionLoginFailed, model.AuditFailure, since).Scan(&n)
	return n, err
}

func scanAudit(rows *sql.Rows) (*model.AuditLog, error) {
	var (
		e              model.AuditLog
		userID, sessID sql.NullString
		device, meta   sql.NullString
		errMsg         sql.NullString
	)
	if err := rows.Scan(&e.ID, &userID, &sessID, &e.Action, &e.IPAddress,
		&e.UserAgent, &device, &e.Status, &errMsg, &meta, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.UserID = userID.String
	e.SessionID = sessID.String
	e.ErrorMessage = errMsg.String
	if device.Valid {
		_ = json.Unmarshal([]byte(device.String), &e.DeviceInfo)
	}
	if meta.Valid {
		_ = json.Unmarshal([]byte(meta.String), &e.Metadata)
	}
	return &e, nil
}

// nullable maps empty strings to NULL so weak references stay NULL rather
// than empty.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
