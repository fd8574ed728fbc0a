package account

import "errors"

var (
	// ErrAuthFailure indicates bad credentials.
	ErrAuthFailure = errors.New("invalid email or password")
	// ErrDuplicateAccount indicates an account with the email already exists.
	ErrDuplicateAccount = errors.New("an account with this email already exists")
	// ErrNoSession indicates the caller has no live session.
	ErrNoSession = errors.New("no active session")
	// ErrProfileNotFound indicates the user has no profile document.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrPasswordMismatch indicates the new password and its confirmation differ.
	ErrPasswordMismatch = errors.New("new passwords do not match")
	// ErrInvalidInput indicates invalid account input.
	ErrInvalidInput = errors.New("invalid account input")
)
