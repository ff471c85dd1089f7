package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/session"
	"github.com/jrsteele09/go-rental-session/session/filestore"
	"github.com/stretchr/testify/require"
)

var sample = session.Values{
	session.KeyAccessToken:  "header.payload.sig",
	session.KeyRefreshToken: "refresh",
	session.KeyRole:         "landlord",
	session.KeyUsername:     "olga",
}

func TestFileStore_Plain(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	store := filestore.New(path)

	got, err := store.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, got, "missing file reads as empty")

	require.NoError(t, store.Set(ctx, sample))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "access_token: header.payload.sig")

	got, err = filestore.New(path).Get(ctx)
	require.NoError(t, err)
	require.Equal(t, sample, got)

	require.NoError(t, store.Clear(ctx))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
	require.NoError(t, store.Clear(ctx))
}

func TestFileStore_Encrypted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.yaml")
	store := filestore.New(path, filestore.WithPassphrase("correct horse"))

	require.NoError(t, store.Set(ctx, sample))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "header.payload.sig")
	require.Contains(t, string(raw), "sealed:")

	got, err := filestore.New(path, filestore.WithPassphrase("correct horse")).Get(ctx)
	require.NoError(t, err)
	require.Equal(t, sample, got)

	_, err = filestore.New(path, filestore.WithPassphrase("wrong")).Get(ctx)
	require.ErrorIs(t, err, apperrors.ErrWrongPassphrase)

	_, err = filestore.New(path).Get(ctx)
	require.ErrorIs(t, err, apperrors.ErrWrongPassphrase)
}

func TestFileStore_IgnoresUnknownEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nsession:\n  role: admin\n  theme: dark\n"), 0o600))

	got, err := filestore.New(path).Get(ctx)
	require.NoError(t, err)
	require.Equal(t, session.Values{session.KeyRole: "admin"}, got)
}
