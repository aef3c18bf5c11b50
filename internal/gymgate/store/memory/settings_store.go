package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/types"
)

// SettingsStore keeps branch settings in a map. Intended for tests and
// dev environments.
type SettingsStore struct {
	mu   sync.RWMutex
	data map[string]types.BranchSettings
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{data: make(map[string]types.BranchSettings)}
}

var _ store.SettingsStore = (*SettingsStore)(nil)

func (s *SettingsStore) Get(_ context.Context, branchID string) (*types.BranchSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[branchID]
	if !ok {
		return nil, nil
	}
	cp := cloneSettings(st)
	return &cp, nil
}

func (s *SettingsStore) Save(_ context.Context, in types.BranchSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Preserve poller bookkeeping on upsert; the settings UI does not
	// own those fields.
	if prev, ok := s.data[in.BranchID]; ok {
		in.SubscriptionID = prev.SubscriptionID
		in.LastOffset = prev.LastOffset
		in.LastSyncAt = prev.LastSyncAt
		in.LastSyncStatus = prev.LastSyncStatus
		in.LastSyncError = prev.LastSyncError
	}
	if in.LastSyncStatus == "" {
		in.LastSyncStatus = types.SyncStatusUnknown
	}
	s.data[in.BranchID] = cloneSettings(in)
	return nil
}

func (s *SettingsStore) ListActive(_ context.Context) ([]types.BranchSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.BranchSettings
	for _, st := range s.data {
		if st.IsActive {
			out = append(out, cloneSettings(st))
		}
	}
	return out, nil
}

func (s *SettingsStore) SetSubscriptionID(_ context.Context, branchID, subscriptionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.data[branchID]; ok {
		st.SubscriptionID = subscriptionID
		s.data[branchID] = st
	}
	return nil
}

func (s *SettingsStore) AdvanceOffset(_ context.Context, branchID, offset string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.data[branchID]; ok {
		st.LastOffset = offset
		s.data[branchID] = st
	}
	return nil
}

func (s *SettingsStore) UpdateSyncStatus(_ context.Context, branchID string, status types.SyncStatus, syncErr string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.data[branchID]; ok {
		st.LastSyncStatus = status
		st.LastSyncError = syncErr
		t := at
		st.LastSyncAt = &t
		s.data[branchID] = st
	}
	return nil
}

func (s *SettingsStore) Delete(_ context.Context, branchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, branchID)
	return nil
}

func cloneSettings(st types.BranchSettings) types.BranchSettings {
	cp := st
	cp.Devices = append([]types.Device(nil), st.Devices...)
	if st.LastSyncAt != nil {
		t := *st.LastSyncAt
		cp.LastSyncAt = &t
	}
	return cp
}
