package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SeedDevOptions struct {
	// BranchID for the starter integration row. Defaults to "branch-001".
	BranchID string
}

// SeedDev inserts a starter branch integration and a couple of members so
// local development has something to poll and register against.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	now := time.Now().UTC().UnixMilli()

	branchID := opt.BranchID
	if branchID == "" {
		branchID = "branch-001"
	}

	if _, err := db.ExecContext(ctx, `
INSERT INTO branch_settings(
  branch_id, api_url, app_key, app_secret, is_active,
  created_at_ms, updated_at_ms
) VALUES (?, 'http://localhost:9000/artemis', 'dev-key', 'dev-secret', 0, ?, ?)
ON CONFLICT(branch_id) DO NOTHING;
`, branchID, now, now); err != nil {
		return fmt.Errorf("seed branch settings: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
INSERT INTO branch_devices(
  device_id, branch_id, name, device_type, serial_number, is_active, position
) VALUES ('dev-device-1', ?, 'Main Entrance', 'cloud', 'DEV1', 1, 0)
ON CONFLICT(device_id) DO NOTHING;
`, branchID); err != nil {
		return fmt.Errorf("seed device: %w", err)
	}

	members := []struct {
		id, name, gender, phone string
	}{
		{"member-001", "Alex Morgan", "female", "+15550100"},
		{"member-002", "Sam Okafor", "male", "+15550101"},
	}
	for _, m := range members {
		if _, err := db.ExecContext(ctx, `
INSERT INTO members(member_id, full_name, gender, phone, is_active, created_at_ms)
VALUES (?, ?, ?, ?, 1, ?)
ON CONFLICT(member_id) DO NOTHING;
`, m.id, m.name, m.gender, m.phone, now); err != nil {
			return fmt.Errorf("seed member %s: %w", m.id, err)
		}
	}

	return nil
}
