package models

import (
	"time"
)

// User is an account in the credential store behind the identity provider.
type User struct {
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize in JSON
	Disabled     bool      `json:"disabled" db:"disabled"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
