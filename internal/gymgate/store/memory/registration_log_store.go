package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/types"
)

type RegistrationLogStore struct {
	mu   sync.Mutex
	recs map[string]store.RegistrationLogRecord
	ids  []string // creation order, for test inspection
}

func NewRegistrationLogStore() *RegistrationLogStore {
	return &RegistrationLogStore{recs: make(map[string]store.RegistrationLogRecord)}
}

var _ store.RegistrationLogStore = (*RegistrationLogStore)(nil)

func (s *RegistrationLogStore) Create(_ context.Context, rec store.RegistrationLogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ID] = rec
	s.ids = append(s.ids, rec.ID)
	return nil
}

func (s *RegistrationLogStore) Complete(_ context.Context, id string, status types.RegistrationStatus, details, errMsg string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return fmt.Errorf("registration log %s not found", id)
	}
	rec.Status = status
	rec.Details = details
	rec.Error = errMsg
	t := at
	rec.CompletedAt = &t
	s.recs[id] = rec
	return nil
}

// All returns every entry in creation order. Test-only helper.
func (s *RegistrationLogStore) All() []store.RegistrationLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.RegistrationLogRecord, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.recs[id])
	}
	return out
}
