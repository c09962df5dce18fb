// Package identity decodes the caller's identity from a bearer credential and
// evaluates role allow-lists against it.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when a credential cannot be decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrTokenExpired is returned when a credential's exp claim has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrUnknownRole is returned for roles outside the enumeration.
	ErrUnknownRole = errors.New("unknown role")
)

// Claims mirrors the JWT payload issued by the auth backend.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is derived from a credential and never stored on its own.
type Identity struct {
	Subject   string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the identity's expiry lies before now. Identities
// without an exp claim never expire client-side.
func (i *Identity) Expired(now time.Time) bool {
	if i == nil || i.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(i.ExpiresAt)
}

// Decode extracts the identity from a JWT without verifying its signature.
// The console only uses the result for UI gating; the backend re-checks every
// request.
func Decode(token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedToken)
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	id := &Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    role,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	if id.Email == "" {
		id.Email = id.Subject
	}
	return id, nil
}

// DecodeAt decodes token and additionally rejects it when expired at now.
func DecodeAt(token string, now time.Time) (*Identity, error) {
	id, err := Decode(token)
	if err != nil {
		return nil, err
	}
	if id.Expired(now) {
		return nil, fmt.Errorf("%w: at %s", ErrTokenExpired, id.ExpiresAt.Format(time.RFC3339))
	}
	return id, nil
}

// Permits reports whether id may access a resource guarded by allow.
// A nil allow-list admits any identity; a nil identity is never admitted.
func Permits(id *Identity, allow []Role) bool {
	if id == nil {
		return false
	}
	if allow == nil {
		return true
	}
	for _, r := range allow {
		if r == id.Role {
			return true
		}
	}
	return false
}
