package jwt_test

import (
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/token"
	tokenjwt "github.com/jrsteele09/go-rental-session/token/jwt"
	"github.com/jrsteele09/go-rental-session/token/keys"
	"github.com/jrsteele09/go-rental-session/users"
	"github.com/stretchr/testify/require"
)

var testUser = &users.User{ID: "u-1", Username: "carol", Role: users.RoleLandlord}

func setup(t *testing.T) (*tokenjwt.Creator, *tokenjwt.Inspector, tokenjwt.RevokedTokenCache) {
	t.Helper()
	signer := keys.NewHMACSigner("secret")
	revoked := tokenjwt.NewInMemoryRevokedTokenCache()
	return tokenjwt.NewCreator(signer, time.Hour, 24*time.Hour), tokenjwt.NewInspector(signer, revoked), revoked
}

func TestCreator_AccessTokenDecodesClientSide(t *testing.T) {
	creator, _, _ := setup(t)

	raw, err := creator.CreateAccessToken(testUser)
	require.NoError(t, err)

	c, err := token.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "u-1", c.UserID)
	require.Equal(t, "carol", c.Username)
	require.Equal(t, "landlord", c.Role)
	require.Equal(t, tokenjwt.TypeAccess, c.Type)
	require.NotEmpty(t, c.ID)
	require.InDelta(t, time.Hour.Seconds(), c.Remaining().Seconds(), 5)
}

func TestInspector_Verify(t *testing.T) {
	creator, inspector, revoked := setup(t)

	access, err := creator.CreateAccessToken(testUser)
	require.NoError(t, err)
	refresh, err := creator.CreateRefreshToken(testUser)
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		v, err := inspector.Verify(access, tokenjwt.TypeAccess)
		require.NoError(t, err)
		require.Equal(t, "carol", v.Identity.Username)
		require.Equal(t, "landlord", v.Identity.Role)
	})

	t.Run("wrong token type", func(t *testing.T) {
		_, err := inspector.Verify(refresh, tokenjwt.TypeAccess)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other := tokenjwt.NewInspector(keys.NewHMACSigner("other"), nil)
		_, err := other.Verify(access, tokenjwt.TypeAccess)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("revoked", func(t *testing.T) {
		v, err := inspector.Verify(refresh, tokenjwt.TypeRefresh)
		require.NoError(t, err)
		revoked.Add(v.ID, v.ExpiresAt)

		_, err = inspector.Verify(refresh, tokenjwt.TypeRefresh)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		original := tokenjwt.NowTimeFunc
		tokenjwt.NowTimeFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { tokenjwt.NowTimeFunc = original }()

		_, err := inspector.Verify(access, tokenjwt.TypeAccess)
		require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})
}

func TestRevokedTokenCache(t *testing.T) {
	now := time.Now()
	original := tokenjwt.NowTimeFunc
	tokenjwt.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { tokenjwt.NowTimeFunc = original })

	cache := tokenjwt.NewInMemoryRevokedTokenCache().(*tokenjwt.InMemoryRevokedTokenCache)

	t.Run("ignores expired and anonymous tokens", func(t *testing.T) {
		cache.Add("old", now.Add(-time.Minute))
		cache.Add("", now.Add(time.Hour))
		require.False(t, cache.IsRevoked("old"))
		require.False(t, cache.IsRevoked(""))
		require.Equal(t, 0, cache.Len())
	})

	t.Run("lookup prunes once the token expires", func(t *testing.T) {
		cache.Add("short", now.Add(time.Minute))
		cache.Add("long", now.Add(time.Hour))
		require.True(t, cache.IsRevoked("short"))

		now = now.Add(2 * time.Minute)
		require.False(t, cache.IsRevoked("short"))
		require.True(t, cache.IsRevoked("long"))
		require.Equal(t, 1, cache.Len())
	})

	t.Run("cleanup", func(t *testing.T) {
		cache.Add("unread", now.Add(time.Minute))
		now = now.Add(2 * time.Hour)
		cache.Cleanup()
		require.Equal(t, 0, cache.Len())
	})
}
