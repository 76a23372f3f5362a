package models

import "time"

// RefreshToken is a stored refresh token joined with the name of its user,
// which is needed to mint the next access token.
type RefreshToken struct {
	UserID    string
	UserName  string
	Token     string
	ExpiresAt time.Time
}
