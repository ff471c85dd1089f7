package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, apperrors.Wrapf(nil, "refresh %s", "x"))
	})

	t.Run("keeps chain", func(t *testing.T) {
		err := apperrors.Wrapf(apperrors.ErrRefreshRejected, "refresh status %d", 401)
		require.EqualError(t, err, "refresh status 401: refresh token rejected")
		require.True(t, apperrors.Is(err, apperrors.ErrRefreshRejected))
	})
}

func TestDecodeError(t *testing.T) {
	err := fmt.Errorf("login: %w", apperrors.MissingField("tokens.access_token"))

	var decodeErr *apperrors.DecodeError
	require.True(t, apperrors.As(err, &decodeErr))
	require.Equal(t, "tokens.access_token", decodeErr.Field)
	require.Contains(t, err.Error(), "required field missing")

	inner := &apperrors.DecodeError{Field: "body", Reason: "invalid json", Err: apperrors.ErrInternal}
	require.True(t, apperrors.Is(inner, apperrors.ErrInternal))
}
