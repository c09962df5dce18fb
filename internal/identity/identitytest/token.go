// Package identitytest mints credentials for tests.
package identitytest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hcms-console/hcms-console/internal/identity"
)

const signingKey = "identitytest-signing-key"

// Token returns a signed JWT carrying email and role, valid for one hour.
func Token(t testing.TB, email string, role identity.Role) string {
	t.Helper()
	return TokenWithExpiry(t, email, role, time.Now().Add(time.Hour))
}

// TokenWithExpiry returns a signed JWT with an explicit exp claim.
func TokenWithExpiry(t testing.TB, email string, role identity.Role, exp time.Time) string {
	t.Helper()
	claims := identity.Claims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(exp.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
