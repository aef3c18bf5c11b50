package store

import (
	"context"
	"time"

	"github.com/tovigym/gymgate/internal/gymgate/types"
)

// SettingsStore persists per-branch integration settings and their device
// lists. Save is an upsert keyed by branch; the device list is replaced
// wholesale on every save.
type SettingsStore interface {
	// Get returns the settings for a branch, or nil if none exist.
	Get(ctx context.Context, branchID string) (*types.BranchSettings, error)

	// Save upserts the settings row and replaces its device list.
	Save(ctx context.Context, s types.BranchSettings) error

	// ListActive returns every branch with an active integration,
	// devices included.
	ListActive(ctx context.Context) ([]types.BranchSettings, error)

	// SetSubscriptionID records the vendor subscription handle.
	SetSubscriptionID(ctx context.Context, branchID, subscriptionID string) error

	// AdvanceOffset moves the branch's resumption cursor forward.
	AdvanceOffset(ctx context.Context, branchID, offset string) error

	// UpdateSyncStatus records the outcome of a sync pass. syncErr is
	// empty on success.
	UpdateSyncStatus(ctx context.Context, branchID string, status types.SyncStatus, syncErr string, at time.Time) error

	// Delete removes the settings row (explicit settings removal only).
	Delete(ctx context.Context, branchID string) error
}
