package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique constraint rejects a write
	ErrConflict = errors.New("conflict: entity already exists")

	// ErrInvalidCredentials is returned when a password check fails
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")
)
