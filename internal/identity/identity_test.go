package identity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/identity/identitytest"
)

func TestPermitsNilAllowList(t *testing.T) {
	assert.False(t, identity.Permits(nil, nil))
	for _, role := range identity.AllRoles() {
		id := &identity.Identity{Email: "a@hcms.local", Role: role}
		assert.True(t, identity.Permits(id, nil), "role %s", role)
	}
}

func TestPermitsAllowList(t *testing.T) {
	admins := []identity.Role{identity.RoleSuperAdmin, identity.RoleAdmin}
	managers := []identity.Role{identity.RoleSuperAdmin, identity.RoleAdmin, identity.RoleManager}
	onlySuper := []identity.Role{identity.RoleSuperAdmin}
	empty := []identity.Role{}

	cases := []struct {
		role  identity.Role
		allow []identity.Role
		want  bool
	}{
		{identity.RoleSuperAdmin, admins, true},
		{identity.RoleAdmin, admins, true},
		{identity.RoleManager, admins, false},
		{identity.RoleEmployee, admins, false},
		{identity.RoleSuperAdmin, managers, true},
		{identity.RoleAdmin, managers, true},
		{identity.RoleManager, managers, true},
		{identity.RoleEmployee, managers, false},
		{identity.RoleSuperAdmin, onlySuper, true},
		{identity.RoleAdmin, onlySuper, false},
		{identity.RoleManager, onlySuper, false},
		{identity.RoleEmployee, onlySuper, false},
		{identity.RoleSuperAdmin, empty, false},
		{identity.RoleAdmin, empty, false},
		{identity.RoleManager, empty, false},
		{identity.RoleEmployee, empty, false},
	}
	for _, tc := range cases {
		id := &identity.Identity{Role: tc.role}
		assert.Equal(t, tc.want, identity.Permits(id, tc.allow), "role %s allow %v", tc.role, tc.allow)
	}
	for _, allow := range [][]identity.Role{admins, managers, onlySuper, empty} {
		assert.False(t, identity.Permits(nil, allow))
	}
}

func TestDecode(t *testing.T) {
	token := identitytest.Token(t, "manager@hcms.local", identity.RoleManager)

	id, err := identity.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "manager@hcms.local", id.Email)
	assert.Equal(t, identity.RoleManager, id.Role)
	assert.False(t, id.ExpiresAt.IsZero())
	assert.False(t, id.Expired(time.Now()))
}

func TestDecodeMalformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-jwt", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30"} {
		_, err := identity.Decode(raw)
		assert.ErrorIs(t, err, identity.ErrMalformedToken, "token %q", raw)
	}
}

func TestDecodeUnknownRole(t *testing.T) {
	token := identitytest.Token(t, "x@hcms.local", identity.Role("AUDITOR"))
	_, err := identity.Decode(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, identity.ErrMalformedToken))
}

func TestDecodeAtExpired(t *testing.T) {
	token := identitytest.TokenWithExpiry(t, "old@hcms.local", identity.RoleEmployee, time.Now().Add(-time.Minute))

	_, err := identity.DecodeAt(token, time.Now())
	assert.ErrorIs(t, err, identity.ErrTokenExpired)

	id, err := identity.Decode(token)
	require.NoError(t, err)
	assert.True(t, id.Expired(time.Now()))
}

func TestParseRole(t *testing.T) {
	for _, role := range identity.AllRoles() {
		got, err := identity.ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, got)
	}
	_, err := identity.ParseRole("admin")
	assert.ErrorIs(t, err, identity.ErrUnknownRole)
}
