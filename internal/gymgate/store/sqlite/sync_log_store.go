package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/tovigym/gymgate/internal/db"
	"github.com/tovigym/gymgate/internal/gymgate/store"
)

type SyncLogStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewSyncLogStore(db *sql.DB, writer *dbpkg.Worker) *SyncLogStore {
	return &SyncLogStore{db: db, writer: writer}
}

var _ store.SyncLogStore = (*SyncLogStore)(nil)

func (s *SyncLogStore) Append(ctx context.Context, rec store.SyncLogRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO sync_logs(branch_id, category, message, details, status, entity_type, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?);
`,
			rec.BranchID, string(rec.Category), rec.Message, rec.Details,
			rec.Status, rec.EntityType, rec.CreatedAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("Append sync log: %w", err)
		}
		return nil
	})
}

// PruneOlderThan deletes log rows created before the given cutoff time.
// Returns the number of rows deleted.
//
// Uses the idx_sync_logs_time index for an efficient range scan.
func (s *SyncLogStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM sync_logs
WHERE created_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
