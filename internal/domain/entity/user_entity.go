package entity

import (
	"time"
)

// User is the aggregate root for the registration domain.
// PasswordHash holds a bcrypt hash; the plaintext never reaches this type.
//
// Email is stored normalized (trimmed, lower-cased) so uniqueness is case-insensitive.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
