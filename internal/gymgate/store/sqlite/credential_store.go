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

type CredentialStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewCredentialStore(db *sql.DB, writer *dbpkg.Worker) *CredentialStore {
	return &CredentialStore{db: db, writer: writer}
}

var _ store.CredentialStore = (*CredentialStore)(nil)

func (s *CredentialStore) Active(ctx context.Context, memberID string, credType types.CredentialType) (*store.CredentialRecord, error) {
	var (
		rec      store.CredentialRecord
		ctStr    string
		issuedMs int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT member_id, credential_type, credential_value, issued_at_ms
FROM credential_mappings
WHERE member_id = ? AND credential_type = ? AND is_active = 1;
`, memberID, string(credType)).Scan(&rec.MemberID, &ctStr, &rec.CredentialValue, &issuedMs)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Active credential: %w", err)
	}

	rec.CredentialType = types.CredentialType(ctStr)
	rec.IsActive = true
	rec.IssuedAt = msToTime(issuedMs)
	return &rec, nil
}

func (s *CredentialStore) Insert(ctx context.Context, rec store.CredentialRecord) error {
	if rec.IssuedAt.IsZero() {
		rec.IssuedAt = time.Now().UTC()
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO credential_mappings(member_id, credential_type, credential_value, is_active, issued_at_ms)
VALUES (?, ?, ?, ?, ?);
`,
			rec.MemberID, string(rec.CredentialType), rec.CredentialValue,
			boolToInt(rec.IsActive), rec.IssuedAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("Insert credential: %w", err)
		}
		return nil
	})
}
