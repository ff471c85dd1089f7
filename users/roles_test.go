package users_test

import (
	"testing"

	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/users"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, in := range []string{"tenant", "Landlord", " ADMIN "} {
		r, err := users.ParseRole(in)
		require.NoError(t, err, in)
		require.True(t, r.IsValid())
	}

	_, err := users.ParseRole("super_admin")
	require.ErrorIs(t, err, apperrors.ErrInvalidRole)

	_, err = users.ParseRole("")
	require.ErrorIs(t, err, apperrors.ErrInvalidRole)
}

func TestRoleType_HasAnyRole(t *testing.T) {
	require.True(t, users.RoleAdmin.HasAnyRole())
	require.True(t, users.RoleLandlord.HasAnyRole(users.RoleLandlord, users.RoleAdmin))
	require.False(t, users.RoleTenant.HasAnyRole(users.RoleLandlord, users.RoleAdmin))
	require.False(t, users.RoleType("guest").HasAnyRole())
}

func TestValidateRegistration(t *testing.T) {
	require.NoError(t, users.ValidateRegistration("alice", "alice@example.com", "secret1"))
	require.ErrorContains(t, users.ValidateRegistration("al", "alice@example.com", "secret1"), "username")
	require.ErrorContains(t, users.ValidateRegistration("alice", "alice-at-example", "secret1"), "email")
	require.ErrorContains(t, users.ValidateRegistration("alice", "alice@example.com", "123"), "password")
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("secret1")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("secret1", hash))
	require.False(t, users.CheckPasswordHash("secret2", hash))
}
