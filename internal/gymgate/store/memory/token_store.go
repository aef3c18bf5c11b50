package memory

import (
	"context"
	"sync"

	"github.com/tovigym/gymgate/internal/gymgate/store"
)

type TokenStore struct {
	mu   sync.RWMutex
	data map[string]store.TokenRecord
}

func NewTokenStore() *TokenStore {
	return &TokenStore{data: make(map[string]store.TokenRecord)}
}

var _ store.TokenStore = (*TokenStore)(nil)

func (s *TokenStore) Get(_ context.Context, branchID string) (*store.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[branchID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *TokenStore) Upsert(_ context.Context, rec store.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.BranchID] = rec
	return nil
}
