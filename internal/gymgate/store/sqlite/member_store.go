package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tovigym/gymgate/internal/gymgate/store"
)

// MemberStore reads the member directory. The back-office CRUD writes it;
// this subsystem only looks members up during registration.
type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

var _ store.MemberStore = (*MemberStore)(nil)

func (s *MemberStore) Get(ctx context.Context, memberID string) (*store.MemberRecord, error) {
	var (
		rec      store.MemberRecord
		photoURL sql.NullString
		active   int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT member_id, full_name, gender, phone, email, photo_url, is_active
FROM members
WHERE member_id = ?;
`, memberID).Scan(&rec.MemberID, &rec.FullName, &rec.Gender, &rec.Phone, &rec.Email, &photoURL, &active)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get member: %w", err)
	}

	rec.PhotoURL = strOf(photoURL)
	rec.IsActive = active == 1
	return &rec, nil
}
