package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/tovigym/gymgate/internal/db"
	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/types"
)

type SettingsStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewSettingsStore(db *sql.DB, writer *dbpkg.Worker) *SettingsStore {
	return &SettingsStore{db: db, writer: writer}
}

var _ store.SettingsStore = (*SettingsStore)(nil)

func (s *SettingsStore) Get(ctx context.Context, branchID string) (*types.BranchSettings, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT branch_id, api_url, app_key, app_secret, is_active,
       subscription_id, last_offset, last_sync_at_ms, last_sync_status, last_sync_error
FROM branch_settings
WHERE branch_id = ?;
`, branchID)

	st, err := scanSettings(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get settings: %w", err)
	}

	devices, err := s.loadDevices(ctx, branchID)
	if err != nil {
		return nil, err
	}
	st.Devices = devices
	return st, nil
}

func (s *SettingsStore) ListActive(ctx context.Context) ([]types.BranchSettings, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT branch_id, api_url, app_key, app_secret, is_active,
       subscription_id, last_offset, last_sync_at_ms, last_sync_status, last_sync_error
FROM branch_settings
WHERE is_active = 1
ORDER BY branch_id;
`)
	if err != nil {
		return nil, fmt.Errorf("ListActive query: %w", err)
	}
	defer rows.Close()

	var out []types.BranchSettings
	for rows.Next() {
		st, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive scan: %w", err)
		}
		out = append(out, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListActive rows: %w", err)
	}

	for i := range out {
		devices, err := s.loadDevices(ctx, out[i].BranchID)
		if err != nil {
			return nil, err
		}
		out[i].Devices = devices
	}
	return out, nil
}

// Save upserts the settings row and replaces the device list wholesale.
// Poller bookkeeping (subscription id, offset, sync status) is owned by
// the poller and left untouched on update.
func (s *SettingsStore) Save(ctx context.Context, in types.BranchSettings) error {
	now := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO branch_settings(
  branch_id, api_url, app_key, app_secret, is_active,
  last_sync_status, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, 'unknown', ?, ?)
ON CONFLICT(branch_id) DO UPDATE SET
  api_url       = excluded.api_url,
  app_key       = excluded.app_key,
  app_secret    = excluded.app_secret,
  is_active     = excluded.is_active,
  updated_at_ms = excluded.updated_at_ms;
`,
			in.BranchID, in.APIURL, in.AppKey, in.AppSecret, boolToInt(in.IsActive),
			now, now,
		); err != nil {
			return fmt.Errorf("Save upsert settings: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM branch_devices WHERE branch_id = ?;`, in.BranchID,
		); err != nil {
			return fmt.Errorf("Save clear devices: %w", err)
		}

		for i, d := range in.Devices {
			var port any
			if d.Port != 0 {
				port = d.Port
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO branch_devices(
  device_id, branch_id, name, device_type, serial_number,
  ip, port, username, password, is_active, position
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
				d.ID, in.BranchID, d.Name, string(d.Type), nullStr(d.SerialNumber),
				nullStr(d.IP), port, nullStr(d.Username), nullStr(d.Password),
				boolToInt(d.IsActive), i,
			); err != nil {
				return fmt.Errorf("Save insert device %s: %w", d.ID, err)
			}
		}

		return nil
	})
}

func (s *SettingsStore) SetSubscriptionID(ctx context.Context, branchID, subscriptionID string) error {
	now := time.Now().UTC().UnixMilli()
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
UPDATE branch_settings
SET subscription_id = ?,
    updated_at_ms   = ?
WHERE branch_id = ?;
`, subscriptionID, now, branchID); err != nil {
			return fmt.Errorf("SetSubscriptionID: %w", err)
		}
		return nil
	})
}

func (s *SettingsStore) AdvanceOffset(ctx context.Context, branchID, offset string) error {
	now := time.Now().UTC().UnixMilli()
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
UPDATE branch_settings
SET last_offset   = ?,
    updated_at_ms = ?
WHERE branch_id = ?;
`, offset, now, branchID); err != nil {
			return fmt.Errorf("AdvanceOffset: %w", err)
		}
		return nil
	})
}

func (s *SettingsStore) UpdateSyncStatus(ctx context.Context, branchID string, status types.SyncStatus, syncErr string, at time.Time) error {
	atMs := at.UTC().UnixMilli()
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
UPDATE branch_settings
SET last_sync_at_ms  = ?,
    last_sync_status = ?,
    last_sync_error  = ?,
    updated_at_ms    = ?
WHERE branch_id = ?;
`, atMs, string(status), nullStr(syncErr), atMs, branchID); err != nil {
			return fmt.Errorf("UpdateSyncStatus: %w", err)
		}
		return nil
	})
}

func (s *SettingsStore) Delete(ctx context.Context, branchID string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM branch_settings WHERE branch_id = ?;`, branchID,
		); err != nil {
			return fmt.Errorf("Delete settings: %w", err)
		}
		return nil
	})
}

func (s *SettingsStore) loadDevices(ctx context.Context, branchID string) ([]types.Device, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT device_id, name, device_type, serial_number, ip, port, username, password, is_active
FROM branch_devices
WHERE branch_id = ?
ORDER BY position;
`, branchID)
	if err != nil {
		return nil, fmt.Errorf("loadDevices query: %w", err)
	}
	defer rows.Close()

	var out []types.Device
	for rows.Next() {
		var (
			d                  types.Device
			devType            string
			serial, ip         sql.NullString
			port               sql.NullInt64
			username, password sql.NullString
			active             int
		)
		if err := rows.Scan(&d.ID, &d.Name, &devType, &serial, &ip, &port, &username, &password, &active); err != nil {
			return nil, fmt.Errorf("loadDevices scan: %w", err)
		}
		d.Type = types.DeviceType(devType)
		d.SerialNumber = strOf(serial)
		d.IP = strOf(ip)
		if port.Valid {
			d.Port = int(port.Int64)
		}
		d.Username = strOf(username)
		d.Password = strOf(password)
		d.IsActive = active == 1
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettings(row rowScanner) (*types.BranchSettings, error) {
	var (
		st             types.BranchSettings
		active         int
		subID, offset  sql.NullString
		syncAt         sql.NullInt64
		status         string
		syncErr        sql.NullString
	)
	if err := row.Scan(
		&st.BranchID, &st.APIURL, &st.AppKey, &st.AppSecret, &active,
		&subID, &offset, &syncAt, &status, &syncErr,
	); err != nil {
		return nil, err
	}
	st.IsActive = active == 1
	st.SubscriptionID = strOf(subID)
	st.LastOffset = strOf(offset)
	st.LastSyncAt = timePtrOf(syncAt)
	st.LastSyncStatus = types.SyncStatus(status)
	st.LastSyncError = strOf(syncErr)
	return &st, nil
}
