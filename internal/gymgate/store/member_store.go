package store

import "context"

// MemberRecord is the slice of the member directory the registration flow
// needs. The back-office CRUD owns the full record.
type MemberRecord struct {
	MemberID string
	FullName string
	Gender   string
	Phone    string
	Email    string
	PhotoURL string
	IsActive bool
}

type MemberStore interface {
	// Get returns the member, or nil if no such member exists.
	Get(ctx context.Context, memberID string) (*MemberRecord, error)
}
