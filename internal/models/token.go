package models

import "time"

// Session is a signed-in identity as observed by the auth gate.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"` // password, oauth
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenResponse is returned on successful sign-in.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresIn   int       `json:"expiresIn"`
	Email       string    `json:"email"`
	IsAdmin     bool      `json:"isAdmin"`
	IssuedAt    time.Time `json:"issuedAt"`
}
