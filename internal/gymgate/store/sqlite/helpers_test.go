package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tovigym/gymgate/internal/db"
	"github.com/tovigym/gymgate/internal/gymgate/types"
)

// newTestDB opens a migrated throwaway database and its write worker.
func newTestDB(t *testing.T) (*sql.DB, *db.Worker) {
	t.Helper()

	conn, err := db.Open(context.Background(), db.Config{
		Path: filepath.Join(t.TempDir(), "gymgate.db"),
		Env:  "dev",
	})
	require.NoError(t, err)

	worker := db.NewWorker(conn)
	t.Cleanup(func() {
		worker.Close()
		_ = conn.Close()
	})
	return conn, worker
}

func branchSettings(branchID string) types.BranchSettings {
	return types.BranchSettings{
		BranchID:  branchID,
		APIURL:    "https://vendor.test",
		AppKey:    "k",
		AppSecret: "s",
		IsActive:  true,
		Devices: []types.Device{
			{ID: "dev-1", Name: "Main Entrance", Type: types.DeviceTypeCloud, SerialNumber: "DEV1", IsActive: true},
			{ID: "dev-2", Name: "Turnstile", Type: types.DeviceTypeLocal, IP: "10.0.0.5", Port: 4370, Username: "admin", Password: "pw", IsActive: false},
		},
	}
}
