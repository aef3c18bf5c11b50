package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tovigym/gymgate/internal/gymgate/store/sqlite"
	"github.com/tovigym/gymgate/internal/gymgate/types"
)

func TestSettingsStore_SaveAndGet(t *testing.T) {
	conn, worker := newTestDB(t)
	s := sqlite.NewSettingsStore(conn, worker)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, branchSettings("B1")))

	got, err := s.Get(ctx, "B1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "https://vendor.test", got.APIURL)
	require.True(t, got.IsActive)
	require.Equal(t, types.SyncStatusUnknown, got.LastSyncStatus)

	require.Len(t, got.Devices, 2)
	require.Equal(t, "dev-1", got.Devices[0].ID)
	require.Equal(t, types.DeviceTypeCloud, got.Devices[0].Type)
	require.Equal(t, "DEV1", got.Devices[0].SerialNumber)
	require.Equal(t, types.DeviceTypeLocal, got.Devices[1].Type)
	require.Equal(t, "10.0.0.5", got.Devices[1].IP)
	require.Equal(t, 4370, got.Devices[1].Port)
	require.False(t, got.Devices[1].IsActive)
}

func TestSettingsStore_GetMissing(t *testing.T) {
	conn, worker := newTestDB(t)
	s := sqlite.NewSettingsStore(conn, worker)

	got, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSettingsStore_UpsertPreservesBookkeeping(t *testing.T) {
	conn, worker := newTestDB(t)
	s := sqlite.NewSettingsStore(conn, worker)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, branchSettings("B1")))
	require.NoError(t, s.SetSubscriptionID(ctx, "B1", "sub-1"))
	require.NoError(t, s.AdvanceOffset(ctx, "B1", "77"))
	syncAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateSyncStatus(ctx, "B1", types.SyncStatusSuccess, "", syncAt))

	// Editing credentials must not reset what the poller wrote.
	edited := branchSettings("B1")
	edited.AppKey = "k2"
	require.NoError(t, s.Save(ctx, edited))

	got, err := s.Get(ctx, "B1")
	require.NoError(t, err)
	require.Equal(t, "k2", got.AppKey)
	require.Equal(t, "sub-1", got.SubscriptionID)
	require.Equal(t, "77", got.LastOffset)
	require.Equal(t, types.SyncStatusSuccess, got.LastSyncStatus)
	require.NotNil(t, got.LastSyncAt)
	require.Equal(t, syncAt.UnixMilli(), got.LastSyncAt.UnixMilli())
}

func TestSettingsStore_SaveReplacesDevicesWholesale(t *testing.T) {
	conn, worker := newTestDB(t)
	s := sqlite.NewSettingsStore(conn, worker)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, branchSettings("B1")))

	edited := branchSettings("B1")
	edited.Devices = []types.Device{
		{ID: "dev-3", Name: "Side Gate", Type: types.DeviceTypeCloud, SerialNumber: "DEV3", IsActive: true},
	}
	require.NoError(t, s.Save(ctx, edited))

	got, err := s.Get(ctx, "B1")
	require.NoError(t, err)
	require.Len(t, got.Devices, 1)
	require.Equal(t, "dev-3", got.Devices[0].ID)
}

func TestSettingsStore_ListActive(t *testing.T) {
	conn, worker := newTestDB(t)
	s := sqlite.NewSettingsStore(conn, worker)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, branchSettings("B1")))
	inactive := branchSettings("B2")
	inactive.IsActive = false
	require.NoError(t, s.Save(ctx, inactive))

	got, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "B1", got[0].BranchID)
	require.Len(t, got[0].Devices, 2)
}

func TestSettingsStore_DeleteCascadesDevices(t *testing.T) {
	conn, worker := newTestDB(t)
	s := sqlite.NewSettingsStore(conn, worker)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, branchSettings("B1")))
	require.NoError(t, s.Delete(ctx, "B1"))

	got, err := s.Get(ctx, "B1")
	require.NoError(t, err)
	require.Nil(t, got)

	var n int
	require.NoError(t, conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM branch_devices WHERE branch_id = 'B1';`).Scan(&n))
	require.Zero(t, n)
}
