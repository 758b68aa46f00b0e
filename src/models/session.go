package models

import "time"

// MSession represents a server side login session referenced by the
// session cookie.
type MSession struct {
	Token     string    `json:"-"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}
