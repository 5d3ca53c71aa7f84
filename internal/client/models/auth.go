package models

import (
	"strings"

	"github.com/ajenda/ajenda/internal/common"
)

// LoginRequest is the body of POST /api/auth/signin.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

// JwtResponse is what the backend returns on a successful sign-in.
type JwtResponse struct {
	Token    string   `json:"token"`
	Type     string   `json:"type,omitempty"`
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// Profile extracts the user part of the response.
func (r *JwtResponse) Profile() *Profile {
	return &Profile{
		ID:       r.ID,
		Username: r.Username,
		Email:    r.Email,
		Roles:    append([]string(nil), r.Roles...),
	}
}

// MessageResponse is the generic {"message": "..."} body.
type MessageResponse struct {
	Message string `json:"message"`
}

// Profile is the signed-in user as the client knows it.
type Profile struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the profile carries role. "ADMIN" and "ROLE_ADMIN"
// are treated as the same role on both sides of the comparison.
func (p *Profile) HasRole(role string) bool {
	if p == nil {
		return false
	}
	want := bareRole(role)
	if want == "" {
		return false
	}
	for _, r := range p.Roles {
		if bareRole(r) == want {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, so subscribers cannot mutate shared state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Roles = append([]string(nil), p.Roles...)
	return &c
}

func bareRole(role string) string {
	return strings.TrimPrefix(strings.TrimSpace(role), common.RolePrefix)
}
