package store

import (
	"context"
	"time"

	"github.com/tovigym/gymgate/internal/gymgate/types"
)

// RegistrationLogRecord tracks one device-registration attempt. Created
// pending, updated exactly once to its terminal state.
type RegistrationLogRecord struct {
	ID          string
	MemberID    string
	BranchID    string
	DeviceType  string
	Action      string // e.g. "register"
	Status      types.RegistrationStatus
	Details     string
	Error       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type RegistrationLogStore interface {
	Create(ctx context.Context, rec RegistrationLogRecord) error

	// Complete moves the entry to its terminal status. errMsg is empty
	// on success.
	Complete(ctx context.Context, id string, status types.RegistrationStatus, details, errMsg string, at time.Time) error
}
