package model

import "time"

// PasswordReset models a row in the `password_resets` table. The row id is a
// non-secret correlation handle shared with the client; the secret itself is
// never stored, only a bcrypt hash of its SHA-256 digest. A reset row is
// single use: it is deleted as soon as a password reset succeeds, so a
// replayed {id, secret} pair fails as not-found.
//
// Fields:
//  ID        – opaque UUID primary key, returned to the caller.
//  UserID    – user the reset was requested for.
//  TokenHash – bcrypt hash of the SHA-256 hex digest of the secret.
//  ExpiresAt – expiry of the ticket (one hour after issuance).
//  CreatedAt – timestamp of creation.
type PasswordReset struct {
	ID        string    // password_resets.id
	UserID    string    // password_resets.user_id
	TokenHash string    // password_resets.token_hash
	ExpiresAt time.Time // password_resets.expires_at
	CreatedAt time.Time // password_resets.created_at
}
