// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email, username or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrUsernameTaken is returned when attempting to create a user with a username that already exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidInput is returned when signup input fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials is returned when the email or password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
