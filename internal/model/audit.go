package model

import "time"

// Audit actions recorded in audit_logs.action. The set mirrors every
// security-relevant branch in the auth, user and admin services.
const (
	ActionLoginSuccess = "LOGIN_SUCCESS"
	ActionLoginFailed  = "LOGIN_FAILED"
	ActionLogout       = "LOGOUT"
	ActionLogoutFailed = "LOGOUT_FAILED"
	ActionRegister     = "REGISTER"
	ActionTokenRefresh = "TOKEN_REFRESH"

	ActionPasswordChangeSuccess = "PASSWORD_CHANGE_SUCCESS"
	ActionPasswordChangeFailed  = "PASSWORD_CHANGE_FAILED"
	ActionPasswordResetRequest  = "PASSWORD_RESET_REQUEST"
	ActionPasswordResetSuccess  = "PASSWORD_RESET_SUCCESS"
	ActionPasswordResetFailed   = "PASSWORD_RESET_FAILED"

	ActionUserUpdate = "USER_UPDATE"

	ActionAllSessionsRevokeSuccess = "ALL_SESSIONS_REVOKE_SUCCESS"
	ActionAllSessionsRevokeFailed  = "ALL_SESSIONS_REVOKE_FAILED"

	ActionAdminUserUpdate          = "ADMIN_USER_UPDATE"
	ActionAdminUserDelete          = "ADMIN_USER_DELETE"
	ActionAdminSessionRevoke       = "ADMIN_SESSION_REVOKE_SUCCESS"
	ActionAdminSessionRevokeFailed = "ADMIN_SESSION_REVOKE_FAILED"
)

// Audit entry outcome.
const (
	AuditSuccess = "SUCCESS"
	AuditFailure = "FAILURE"
)

// DeviceInfo is derived from the user agent string and stored alongside each
// audit entry so the security dashboard does not have to re-parse agents.
type DeviceInfo struct {
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Device  string `json:"device"`
}

// AuditLog models a row in the append-only `audit_logs` table.
// UserID and SessionID are weak references: they may be empty (a failed
// login against an unknown email precedes identity resolution) and they
// survive deletion of the referenced rows.
type AuditLog struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id,omitempty"`
	SessionID    string            `json:"session_id,omitempty"`
	Action       string            `json:"action"`
	IPAddress    string            `json:"ip_address"`
	UserAgent    string            `json:"user_agent"`
	DeviceInfo   DeviceInfo        `json:"device_info"`
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}
