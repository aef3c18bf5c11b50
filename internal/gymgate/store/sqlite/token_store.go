package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/tovigym/gymgate/internal/db"
	"github.com/tovigym/gymgate/internal/gymgate/store"
)

type TokenStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewTokenStore(db *sql.DB, writer *dbpkg.Worker) *TokenStore {
	return &TokenStore{db: db, writer: writer}
}

var _ store.TokenStore = (*TokenStore)(nil)

func (s *TokenStore) Get(ctx context.Context, branchID string) (*store.TokenRecord, error) {
	var (
		rec       store.TokenRecord
		expiresMs int64
		createdMs int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT branch_id, access_token, expires_at_ms, area_domain, created_at_ms
FROM cached_tokens
WHERE branch_id = ?;
`, branchID).Scan(&rec.BranchID, &rec.AccessToken, &expiresMs, &rec.AreaDomain, &createdMs)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get token: %w", err)
	}

	rec.ExpiresAt = msToTime(expiresMs)
	rec.CreatedAt = msToTime(createdMs)
	return &rec, nil
}

func (s *TokenStore) Upsert(ctx context.Context, rec store.TokenRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO cached_tokens(branch_id, access_token, expires_at_ms, area_domain, created_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(branch_id) DO UPDATE SET
  access_token  = excluded.access_token,
  expires_at_ms = excluded.expires_at_ms,
  area_domain   = excluded.area_domain,
  created_at_ms = excluded.created_at_ms;
`,
			rec.BranchID, rec.AccessToken, rec.ExpiresAt.UTC().UnixMilli(),
			rec.AreaDomain, rec.CreatedAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("Upsert token: %w", err)
		}
		return nil
	})
}
