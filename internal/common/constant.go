// Package common contains shared constants and sentinel errors used across
// the ajenda client components.
package common

// Outbound header names.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// AuthPathMarker identifies the backend's authentication endpoints. Requests
// whose path contains it are sent without credentials.
const AuthPathMarker = "/api/auth/"

// Session storage keys.
const (
	TokenStorageKey = "auth-token"
	UserStorageKey  = "auth-user"
)

// Role names as issued by the backend.
const (
	RolePrefix = "ROLE_"
	RoleAdmin  = "ADMIN"
)
