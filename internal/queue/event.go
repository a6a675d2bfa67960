// Package queue defines message payloads exchanged over the message broker
// and a best-effort publisher for them.
package queue

// SecurityEvent is published when a security-relevant operation fails
// (failed logins, rejected refreshes, invalid reset attempts). Downstream
// consumers can alert or feed SIEM tooling without querying the primary
// database.
type SecurityEvent struct {
	Action       string `json:"action"`
	UserID       string `json:"user_id,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	IPAddress    string `json:"ip_address"`
	UserAgent    string `json:"user_agent"`
	ErrorMessage string `json:"error_message,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}
