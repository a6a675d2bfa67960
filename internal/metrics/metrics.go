// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts login outcomes by result (success, not_found,
	// bad_password).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"result"})

	// TokenRefreshes counts refresh outcomes by result (rotated, reissued,
	// rejected).
	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_refreshes_total",
		Help: "Refresh attempts by outcome.",
	}, []string{"result"})

	// SessionsRevoked counts revoked sessions by origin (logout, reset,
	// self, admin).
	SessionsRevoked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_sessions_revoked_total",
		Help: "Sessions revoked by origin.",
	}, []string{"origin"})

	// AuditDropped counts audit entries discarded because the recorder
	// buffer was full.
	AuditDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_entries_dropped_total",
		Help: "Audit entries dropped due to a full buffer.",
	})
)
