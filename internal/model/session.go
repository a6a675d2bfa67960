package model

import "time"

// Session models a row in the `sessions` table. A session is the server-side
// anchor that makes signed tokens revocable: both the access and refresh
// token embed the session id, and deleting the row is the only revocation
// mechanism. A session is live iff ExpiresAt is in the future and the row
// still exists; an expired-but-present row is treated the same as a deleted
// one by the authorization gate and the refresh path.
//
// Fields:
//  ID        – opaque UUID primary key, embedded in both token classes.
//  UserID    – owning user.
//  Role      – role snapshot taken at login, avoids a user lookup per request.
//  UserAgent – client user agent recorded at login.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – bumped when the sliding-expiry policy extends the session.
//  ExpiresAt – hard expiry; rolled forward on stale refresh.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Live reports whether the session should still be honored at the given
// instant.
func (s Session) Live(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
