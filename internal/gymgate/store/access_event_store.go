package store

import (
	"context"
	"time"

	"github.com/tovigym/gymgate/internal/gymgate/types"
)

// AccessEventRecord is one door entry/exit captured from the vendor feed.
// Optional fields use the empty string for "not reported".
type AccessEventRecord struct {
	BranchID      string
	DeviceSN      string
	EventType     types.EventType
	EventTime     time.Time
	DoorID        string
	DoorName      string
	PersonID      string
	PersonName    string
	CardNo        string
	VendorEventID string
	Processed     bool
	CreatedAt     time.Time
}

// AccessEventStore persists vendor door events as an append-only audit
// trail. Rows are never updated here; a downstream consumer owns the
// processed flag.
type AccessEventStore interface {
	// RecordEvent inserts an event. Returns false when the row was
	// skipped as a duplicate of an already-ingested vendor event id
	// (at-least-once redelivery).
	RecordEvent(ctx context.Context, rec AccessEventRecord) (bool, error)

	// ListRecent returns up to limit events for a branch, newest first.
	ListRecent(ctx context.Context, branchID string, limit int) ([]AccessEventRecord, error)
}
