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

type AccessEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessEventStore(db *sql.DB, writer *dbpkg.Worker) *AccessEventStore {
	return &AccessEventStore{db: db, writer: writer}
}

var _ store.AccessEventStore = (*AccessEventStore)(nil)

// RecordEvent inserts one vendor event. Messages carrying a vendor event
// id hit the partial unique index; a redelivered duplicate is skipped
// (ON CONFLICT DO NOTHING) and reported via the bool.
func (s *AccessEventStore) RecordEvent(ctx context.Context, rec store.AccessEventRecord) (bool, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.EventTime.IsZero() {
		rec.EventTime = rec.CreatedAt
	}

	inserted := false
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO access_events(
  branch_id, device_sn, event_type, event_time_ms,
  door_id, door_name, person_id, person_name, card_no,
  vendor_event_id, processed, created_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(branch_id, device_sn, vendor_event_id) WHERE vendor_event_id IS NOT NULL DO NOTHING;
`,
			rec.BranchID, rec.DeviceSN, string(rec.EventType), rec.EventTime.UTC().UnixMilli(),
			nullStr(rec.DoorID), nullStr(rec.DoorName), nullStr(rec.PersonID),
			nullStr(rec.PersonName), nullStr(rec.CardNo),
			nullStr(rec.VendorEventID), boolToInt(rec.Processed), rec.CreatedAt.UTC().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}
		n, _ := res.RowsAffected()
		inserted = n > 0
		return nil
	})
	return inserted, err
}

func (s *AccessEventStore) ListRecent(ctx context.Context, branchID string, limit int) ([]store.AccessEventRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT branch_id, device_sn, event_type, event_time_ms,
       door_id, door_name, person_id, person_name, card_no,
       vendor_event_id, processed, created_at_ms
FROM access_events
WHERE branch_id = ?
ORDER BY event_time_ms DESC, id DESC
LIMIT ?;
`, branchID, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent query: %w", err)
	}
	defer rows.Close()

	var out []store.AccessEventRecord
	for rows.Next() {
		var (
			rec                          store.AccessEventRecord
			evType                       string
			evMs, createdMs              int64
			doorID, doorName             sql.NullString
			personID, personName, cardNo sql.NullString
			vendorEventID                sql.NullString
			processed                    int
		)
		if err := rows.Scan(
			&rec.BranchID, &rec.DeviceSN, &evType, &evMs,
			&doorID, &doorName, &personID, &personName, &cardNo,
			&vendorEventID, &processed, &createdMs,
		); err != nil {
			return nil, fmt.Errorf("ListRecent scan: %w", err)
		}
		rec.EventType = types.EventType(evType)
		rec.EventTime = msToTime(evMs)
		rec.CreatedAt = msToTime(createdMs)
		rec.DoorID = strOf(doorID)
		rec.DoorName = strOf(doorName)
		rec.PersonID = strOf(personID)
		rec.PersonName = strOf(personName)
		rec.CardNo = strOf(cardNo)
		rec.VendorEventID = strOf(vendorEventID)
		rec.Processed = processed == 1
		out = append(out, rec)
	}
	return out, rows.Err()
}
