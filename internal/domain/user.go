package domain

import "time"

// User is the domain entity for an admin account.
// PasswordHash is an argon2id PHC string and must never appear in responses or logs.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
