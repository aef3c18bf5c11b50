package memory

import (
	"context"
	"sync"

	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/types"
)

type CredentialStore struct {
	mu   sync.Mutex
	recs []store.CredentialRecord
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

var _ store.CredentialStore = (*CredentialStore)(nil)

func (s *CredentialStore) Active(_ context.Context, memberID string, credType types.CredentialType) (*store.CredentialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recs {
		r := s.recs[i]
		if r.MemberID == memberID && r.CredentialType == credType && r.IsActive {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *CredentialStore) Insert(_ context.Context, rec store.CredentialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

// All returns a copy of every mapping. Test-only helper.
func (s *CredentialStore) All() []store.CredentialRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.CredentialRecord, len(s.recs))
	copy(out, s.recs)
	return out
}
