package store

import (
	"context"
	"time"

	"github.com/tovigym/gymgate/internal/gymgate/types"
)

// SyncLogRecord is one entry in the operational sync trail, distinct
// from the access-event log, used for diagnosis rather than business data.
type SyncLogRecord struct {
	BranchID   string
	Category   types.LogCategory
	Message    string
	Details    string
	Status     string // "success" | "error"
	EntityType string // e.g. "event", "subscription"
	CreatedAt  time.Time
}

type SyncLogStore interface {
	Append(ctx context.Context, rec SyncLogRecord) error

	// PruneOlderThan deletes entries created before cutoff and returns
	// the number of rows removed.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
