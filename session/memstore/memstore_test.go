package memstore_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-rental-session/session"
	"github.com/jrsteele09/go-rental-session/session/memstore"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	values := session.Values{session.KeyAccessToken: "a", session.KeyUsername: "nia"}
	require.NoError(t, store.Set(ctx, values))

	values[session.KeyAccessToken] = "mutated"
	got, err := store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", got[session.KeyAccessToken], "store keeps its own copy")

	require.NoError(t, store.Clear(ctx))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}
