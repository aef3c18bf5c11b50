package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/types"
)

// probeTimeout bounds the post-save connectivity probe so a slow vendor
// cannot pin a goroutine indefinitely.
const probeTimeout = 30 * time.Second

// SettingsService owns branch integration settings and their device
// lists.
type SettingsService struct {
	settings store.SettingsStore
	tokens   *TokenManager
	logger   *zap.Logger
}

func NewSettingsService(settings store.SettingsStore, tokens *TokenManager, logger *zap.Logger) *SettingsService {
	return &SettingsService{settings: settings, tokens: tokens, logger: logger}
}

func (s *SettingsService) Get(ctx context.Context, branchID string) (*types.BranchSettings, error) {
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return nil, fmt.Errorf("branch id is required")
	}
	return s.settings.Get(ctx, branchID)
}

// Save upserts the branch settings, assigning ids to new devices, then
// re-reads so callers observe the persisted state. When the resulting
// settings are active a token acquisition is started in the background
// as a connectivity probe; its outcome lands on the returned channel
// (buffered, never blocks the probe goroutine). The channel is nil when
// no probe was started.
func (s *SettingsService) Save(ctx context.Context, branchID string, in types.BranchSettings) (*types.BranchSettings, <-chan error, error) {
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return nil, nil, fmt.Errorf("branch id is required")
	}
	in.BranchID = branchID

	// Device additions/removals are computed client-side; the list
	// arrives complete. New devices get ids here.
	for i := range in.Devices {
		if strings.TrimSpace(in.Devices[i].ID) == "" {
			in.Devices[i].ID = uuid.NewString()
		}
		if in.Devices[i].Type == "" {
			in.Devices[i].Type = types.DeviceTypeCloud
		}
	}

	if err := s.settings.Save(ctx, in); err != nil {
		return nil, nil, fmt.Errorf("save settings: %w", err)
	}

	saved, err := s.settings.Get(ctx, branchID)
	if err != nil {
		return nil, nil, fmt.Errorf("re-read settings: %w", err)
	}

	var probe <-chan error
	if saved != nil && saved.IsActive {
		probe = s.probeAsync(branchID)
	}
	return saved, probe, nil
}

// TestConnection performs a synchronous token acquisition for the
// settings UI's "test connection" action.
func (s *SettingsService) TestConnection(ctx context.Context, branchID string) error {
	_, err := s.tokens.GetToken(ctx, branchID)
	return err
}

func (s *SettingsService) Delete(ctx context.Context, branchID string) error {
	return s.settings.Delete(ctx, strings.TrimSpace(branchID))
}

// probeAsync acquires a token on a detached context and reports the
// outcome on its own error channel so the failure is observable rather
// than fire-and-forget.
func (s *SettingsService) probeAsync(branchID string) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		_, err := s.tokens.GetToken(ctx, branchID)
		if err != nil {
			s.logger.Warn("connectivity probe failed",
				zap.String("branch_id", branchID),
				zap.Error(err),
			)
		} else {
			s.logger.Info("connectivity probe ok", zap.String("branch_id", branchID))
		}
		ch <- err
	}()
	return ch
}
