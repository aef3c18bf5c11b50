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

type RegistrationLogStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewRegistrationLogStore(db *sql.DB, writer *dbpkg.Worker) *RegistrationLogStore {
	return &RegistrationLogStore{db: db, writer: writer}
}

var _ store.RegistrationLogStore = (*RegistrationLogStore)(nil)

func (s *RegistrationLogStore) Create(ctx context.Context, rec store.RegistrationLogRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO registration_logs(
  id, member_id, branch_id, device_type, action, status, details, error, created_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			rec.ID, rec.MemberID, rec.BranchID, rec.DeviceType, rec.Action,
			string(rec.Status), rec.Details, nullStr(rec.Error), rec.CreatedAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("Create registration log: %w", err)
		}
		return nil
	})
}

func (s *RegistrationLogStore) Complete(ctx context.Context, id string, status types.RegistrationStatus, details, errMsg string, at time.Time) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE registration_logs
SET status          = ?,
    details         = ?,
    error           = ?,
    completed_at_ms = ?
WHERE id = ? AND completed_at_ms IS NULL;
`, string(status), details, nullStr(errMsg), at.UTC().UnixMilli(), id)
		if err != nil {
			return fmt.Errorf("Complete registration log: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("Complete registration log: %s not found or already completed", id)
		}
		return nil
	})
}
