package store

import (
	"context"
	"time"

	"github.com/tovigym/gymgate/internal/gymgate/types"
)

// CredentialRecord links an internal member to a vendor-assigned person
// or credential id.
type CredentialRecord struct {
	MemberID        string
	CredentialType  types.CredentialType
	CredentialValue string
	IsActive        bool
	IssuedAt        time.Time
}

// CredentialStore enforces "at most one active credential of a given type
// per member": registration checks Active before inserting.
type CredentialStore interface {
	// Active returns the member's active credential of the given type,
	// or nil if none exists.
	Active(ctx context.Context, memberID string, credType types.CredentialType) (*CredentialRecord, error)

	Insert(ctx context.Context, rec CredentialRecord) error
}
