// Package entity defines the domain model for the groups feature.
package entity

import "time"

// User is the read-only view of a directory user that the groups feature works with.
// The credential hash never leaves the auth feature.
type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stored reports whether the user has been assigned an identity by storage.
func (u User) Stored() bool {
	return u.ID != 0
}

// SameAs reports whether u and other are the same stored user.
// Two unsaved users are never the same.
func (u User) SameAs(other User) bool {
	return u.Stored() && u.ID == other.ID
}
