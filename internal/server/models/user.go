// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. UserName doubles as the identity notes are
// owned and shared under.
type User struct {
	ID        string
	UserName  string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
