package repository

import "errors"

var (
	// ErrEmailExists signals a unique-key violation on users.email.
	ErrEmailExists = errors.New("email already exists")
	// ErrNotFound is returned when a lookup matches no row. Repositories
	// normalize sql.ErrNoRows into this so services never import
	// database/sql.
	ErrNotFound = errors.New("record not found")
)
