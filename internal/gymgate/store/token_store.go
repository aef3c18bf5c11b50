package store

import (
	"context"
	"time"
)

// TokenRecord is the cached vendor access token for one branch. One live
// row per branch, overwritten on every successful acquisition.
type TokenRecord struct {
	BranchID    string
	AccessToken string
	ExpiresAt   time.Time
	AreaDomain  string // routing hint returned by the vendor
	CreatedAt   time.Time
}

type TokenStore interface {
	// Get returns the cached token for a branch, or nil if none exists.
	Get(ctx context.Context, branchID string) (*TokenRecord, error)

	// Upsert overwrites any prior token for the branch.
	Upsert(ctx context.Context, rec TokenRecord) error
}
