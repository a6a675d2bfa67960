package model

import "time"

// Role values stored in users.role and snapshotted into sessions.role.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an application user record as stored in the `users`
// table. The password hash never leaves the repository/service layers;
// handlers serialize the Public/AdminView projections instead.
//
// Fields:
//  ID           – opaque UUID primary key.
//  Name         – display name.
//  Email        – unique email address (stored as received, case-sensitive).
//  PasswordHash – bcrypt hashed password.
//  Role         – USER or ADMIN.
//  IsVerified   – whether the email address has been verified.
//  IsDeleted    – soft-delete flag; deleted users keep their row for history.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsVerified   bool      // users.is_verified
	IsDeleted    bool      // users.is_deleted
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// UserPublic is the projection returned to the account owner. It never
// carries the password hash or the soft-delete flag.
type UserPublic struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserAdminView is the projection returned to administrators. Unlike
// UserPublic it exposes the soft-delete flag so admins can inspect users
// that are hidden from the active listing.
type UserAdminView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	IsDeleted  bool      `json:"is_deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Public projects the user into its owner-facing view.
func (u User) Public() UserPublic {
	return UserPublic{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// AdminView projects the user into its admin-facing view.
func (u User) AdminView() UserAdminView {
	return UserAdminView{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		IsDeleted:  u.IsDeleted,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
