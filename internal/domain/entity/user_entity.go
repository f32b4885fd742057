package entity

import (
	"time"
)

// User is the identity record of an account holder.
// PasswordHash holds a bcrypt digest, never the plaintext, and is never serialized.
//
// Email is matched by exact, case-sensitive equality.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}
