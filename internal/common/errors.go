// Package common defines shared constants and sentinel errors used across
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Session errors.
	ErrNotLoggedIn = errors.New("not logged in")
	ErrForbidden   = errors.New("insufficient role")
)
