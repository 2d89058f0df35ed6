// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
// It contains authentication credentials and metadata for user management.
type User struct {
	// ID is the unique identifier for the user. Zero until the user is stored.
	ID uint `gorm:"primaryKey"`

	// Username is the public handle of the user.
	// It must be unique across all users.
	Username string `gorm:"uniqueIndex:uk_user_username;size:50;not null"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users and is stored lower-cased.
	Email string `gorm:"uniqueIndex:uk_user_email;size:100;not null"`

	// Password is the hashed password for the user.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null" json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "app_users"
}

// SameAs reports whether u and other refer to the same stored user.
// Users that have not been stored yet are never the same as anything.
func (u *User) SameAs(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	return u.ID != 0 && u.ID == other.ID
}
