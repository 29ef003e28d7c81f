package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The email is stored lower-cased and trimmed so lookups are
// case-insensitive.  Handlers never serialize this struct directly because
// it carries the password hash.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash (bcrypt)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

