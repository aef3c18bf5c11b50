package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tovigym/gymgate/internal/gymgate/store"
)

type SyncLogStore struct {
	mu      sync.Mutex
	entries []store.SyncLogRecord
}

func NewSyncLogStore() *SyncLogStore {
	return &SyncLogStore{}
}

var _ store.SyncLogStore = (*SyncLogStore)(nil)

func (s *SyncLogStore) Append(_ context.Context, rec store.SyncLogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, rec)
	return nil
}

func (s *SyncLogStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var deleted int64
	for _, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

// Entries returns a copy of all log entries. Test-only helper.
func (s *SyncLogStore) Entries() []store.SyncLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.SyncLogRecord, len(s.entries))
	copy(out, s.entries)
	return out
}
