// Package tokentest mints signed tokens for tests. The signing key is fixed;
// the client never verifies it.
package tokentest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var secret = []byte("ajenda-test-secret")

// Mint returns an HS256 token for subject expiring at exp.
func Mint(t testing.TB, subject string, exp time.Time) string {
	t.Helper()
	return sign(t, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
}

// Valid returns a token expiring in an hour.
func Valid(t testing.TB) string {
	return Mint(t, "alice", time.Now().Add(time.Hour))
}

// Expired returns a token that expired a second ago.
func Expired(t testing.TB) string {
	return Mint(t, "alice", time.Now().Add(-time.Second))
}

// WithoutExpiry returns a signed token that has no exp claim.
func WithoutExpiry(t testing.TB) string {
	return sign(t, jwt.RegisteredClaims{Subject: "alice"})
}

func sign(t testing.TB, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
