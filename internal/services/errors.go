package services

import "errors"

var (
	// ErrNotFound means an operation referenced a user id with no
	// registry entry.
	ErrNotFound = errors.New("user not found")

	// ErrAccessDenied means an approval or ownership gate failed. It is
	// a normal user-visible outcome, not a system fault.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput means a command argument was missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
)
