// Package usecase implements the group membership rules.
package usecase

import "errors"

var (
	// ErrValidation is returned for malformed input such as a bad group name.
	ErrValidation = errors.New("validation failed")

	// ErrUserNotFound is returned when a user id does not resolve in the user directory.
	ErrUserNotFound = errors.New("user not found")

	// ErrGroupNotFound is returned when a group id does not resolve.
	ErrGroupNotFound = errors.New("group not found")

	// ErrAccessDenied is returned when the requesting user may not perform the operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrUserAlreadyInGroup is returned when adding a user who is already a member.
	ErrUserAlreadyInGroup = errors.New("user is already a member of the group")

	// ErrUserNotInGroup is returned when removing a user who is not a member.
	ErrUserNotInGroup = errors.New("user is not a member of the group")

	// ErrCannotRemoveLastMember is returned when a removal would leave the group empty.
	ErrCannotRemoveLastMember = errors.New("cannot remove the last member of the group")

	// ErrConcurrentUpdate is returned by storage when the group changed since it was read.
	ErrConcurrentUpdate = errors.New("group was modified concurrently")
)
