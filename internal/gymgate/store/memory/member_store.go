package memory

import (
	"context"
	"sync"

	"github.com/tovigym/gymgate/internal/gymgate/store"
)

type MemberStore struct {
	mu   sync.RWMutex
	data map[string]store.MemberRecord
}

func NewMemberStore(members ...store.MemberRecord) *MemberStore {
	m := &MemberStore{data: make(map[string]store.MemberRecord, len(members))}
	for _, rec := range members {
		m.data[rec.MemberID] = rec
	}
	return m
}

var _ store.MemberStore = (*MemberStore)(nil)

func (s *MemberStore) Get(_ context.Context, memberID string) (*store.MemberRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[memberID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}
