package memory

import (
	"context"
	"sync"

	"github.com/tovigym/gymgate/internal/gymgate/store"
)

// AccessEventStore is an in-memory append-only event log with the same
// vendor-event-id dedup behavior as the sqlite store. Intended for tests
// and dev environments.
type AccessEventStore struct {
	mu     sync.Mutex
	events []store.AccessEventRecord
	seen   map[string]struct{} // branch|device|vendor_event_id
}

func NewAccessEventStore() *AccessEventStore {
	return &AccessEventStore{seen: make(map[string]struct{})}
}

var _ store.AccessEventStore = (*AccessEventStore)(nil)

func (s *AccessEventStore) RecordEvent(_ context.Context, rec store.AccessEventRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.VendorEventID != "" {
		key := rec.BranchID + "|" + rec.DeviceSN + "|" + rec.VendorEventID
		if _, dup := s.seen[key]; dup {
			return false, nil
		}
		s.seen[key] = struct{}{}
	}

	s.events = append(s.events, rec)
	return true, nil
}

func (s *AccessEventStore) ListRecent(_ context.Context, branchID string, limit int) ([]store.AccessEventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.AccessEventRecord
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		if s.events[i].BranchID == branchID {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

// Events returns a copy of all recorded events. Test-only helper.
func (s *AccessEventStore) Events() []store.AccessEventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AccessEventRecord, len(s.events))
	copy(out, s.events)
	return out
}
