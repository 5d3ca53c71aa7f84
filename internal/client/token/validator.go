// Package token evaluates bearer tokens on the client side.
//
// The client never verifies signatures (it has no key); it only checks that a
// token is structurally a JWT and that its exp claim is still in the future.
// Every caller that needs to know whether the stored token is usable goes
// through Validator, so the rules live in one place.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed covers wrong segment count and undecodable payloads.
	ErrMalformed = errors.New("token malformed")
	// ErrMissingExpiry is a well-formed payload without an exp claim.
	ErrMissingExpiry = fmt.Errorf("%w: no exp claim", ErrMalformed)
	// ErrExpired is a well-formed token whose exp is not in the future.
	ErrExpired = errors.New("token expired")
)

// Claims is the part of the payload the client reads. Expiry shadows the
// embedded ExpiresAt, which is cut to whole seconds on decode; it holds exp
// in seconds exactly as sent.
type Claims struct {
	jwt.RegisteredClaims
	Expiry *float64 `json:"exp,omitempty"`
}

// Validator checks tokens against a clock.
type Validator struct {
	now    func() time.Time
	parser *jwt.Parser
}

type Option func(*Validator)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		now:    time.Now,
		parser: jwt.NewParser(jwt.WithPaddingAllowed()),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// DecodePayload returns the claims carried in the second segment. It fails
// with ErrMalformed unless raw has exactly three dot-separated segments and
// the second one is base64url-encoded JSON.
func (v *Validator) DecodePayload(raw string) (*Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %d segments", ErrMalformed, len(parts))
	}

	payload, err := v.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding: %v", ErrMalformed, err)
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload json: %v", ErrMalformed, err)
	}
	return &claims, nil
}

// Check returns nil for a usable token, otherwise ErrMalformed,
// ErrMissingExpiry or ErrExpired. The token is usable iff exp*1000 is
// strictly greater than the current time in milliseconds.
func (v *Validator) Check(raw string) error {
	claims, err := v.DecodePayload(raw)
	if err != nil {
		return err
	}
	if claims.Expiry == nil {
		return ErrMissingExpiry
	}
	if *claims.Expiry*1000 <= float64(v.now().UnixMilli()) {
		return ErrExpired
	}
	return nil
}

// IsValid reports whether Check passes.
func (v *Validator) IsValid(raw string) bool {
	return v.Check(raw) == nil
}

// ExpiresAt returns the exp claim of a decodable token.
func (v *Validator) ExpiresAt(raw string) (time.Time, error) {
	claims, err := v.DecodePayload(raw)
	if err != nil {
		return time.Time{}, err
	}
	if claims.Expiry == nil {
		return time.Time{}, ErrMissingExpiry
	}
	return expiryTime(*claims.Expiry), nil
}

// expiryTime converts exp seconds to a time with millisecond resolution,
// saturating outside the int64 millisecond range.
func expiryTime(exp float64) time.Time {
	ms := exp * 1000
	switch {
	case ms >= math.MaxInt64:
		return time.UnixMilli(math.MaxInt64)
	case ms <= math.MinInt64:
		return time.UnixMilli(math.MinInt64)
	}
	return time.UnixMilli(int64(ms))
}
