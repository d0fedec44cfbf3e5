package entity

import (
	"time"
)

// User is the aggregate root for the credential store.
// PasswordHash holds a bcrypt digest, never the plaintext.
// Records are created once at registration and are not mutated afterwards.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
