package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/store/sqlite"
)

func TestTokenStore_UpsertAndGet(t *testing.T) {
	conn, worker := newTestDB(t)
	settings := sqlite.NewSettingsStore(conn, worker)
	s := sqlite.NewTokenStore(conn, worker)
	ctx := context.Background()

	// Tokens hang off the settings row.
	require.NoError(t, settings.Save(ctx, branchSettings("B1")))

	got, err := s.Get(ctx, "B1")
	require.NoError(t, err)
	require.Nil(t, got)

	expires := time.Now().UTC().Add(2 * time.Hour)
	require.NoError(t, s.Upsert(ctx, store.TokenRecord{
		BranchID:    "B1",
		AccessToken: "tok-1",
		ExpiresAt:   expires,
		AreaDomain:  "https://area.vendor.test",
	}))

	got, err = s.Get(ctx, "B1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "tok-1", got.AccessToken)
	require.Equal(t, "https://area.vendor.test", got.AreaDomain)
	require.Equal(t, expires.UnixMilli(), got.ExpiresAt.UnixMilli())

	// Refresh overwrites in place.
	require.NoError(t, s.Upsert(ctx, store.TokenRecord{
		BranchID:    "B1",
		AccessToken: "tok-2",
		ExpiresAt:   expires.Add(time.Hour),
	}))

	got, err = s.Get(ctx, "B1")
	require.NoError(t, err)
	require.Equal(t, "tok-2", got.AccessToken)
}

func TestTokenStore_DeletedWithSettings(t *testing.T) {
	conn, worker := newTestDB(t)
	settings := sqlite.NewSettingsStore(conn, worker)
	s := sqlite.NewTokenStore(conn, worker)
	ctx := context.Background()

	require.NoError(t, settings.Save(ctx, branchSettings("B1")))
	require.NoError(t, s.Upsert(ctx, store.TokenRecord{
		BranchID:    "B1",
		AccessToken: "tok-1",
		ExpiresAt:   time.Now().UTC().Add(time.Hour),
	}))

	require.NoError(t, settings.Delete(ctx, "B1"))

	got, err := s.Get(ctx, "B1")
	require.NoError(t, err)
	require.Nil(t, got)
}
