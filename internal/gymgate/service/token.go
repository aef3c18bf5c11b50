package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/vendorapi"
)

// tokenExpiryBuffer is the safety margin before a cached token's expiry
// at which we refresh instead of reusing it, so a token never runs out
// mid-call.
const tokenExpiryBuffer = 5 * time.Minute

// TokenManager obtains, caches, and refreshes vendor access tokens per
// branch.
type TokenManager struct {
	settings store.SettingsStore
	tokens   store.TokenStore
	vendor   vendorapi.Client
	logger   *zap.Logger
	now      func() time.Time
}

func NewTokenManager(settings store.SettingsStore, tokens store.TokenStore, vendor vendorapi.Client, logger *zap.Logger) *TokenManager {
	return &TokenManager{
		settings: settings,
		tokens:   tokens,
		vendor:   vendor,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetToken returns a usable token for the branch, hitting the cache when
// the stored token is still comfortably inside its expiry window.
func (m *TokenManager) GetToken(ctx context.Context, branchID string) (store.TokenRecord, error) {
	now := m.now()

	cached, err := m.tokens.Get(ctx, branchID)
	if err != nil {
		return store.TokenRecord{}, fmt.Errorf("read token cache: %w", err)
	}
	if cached != nil && cached.ExpiresAt.Sub(now) > tokenExpiryBuffer {
		return *cached, nil
	}

	settings, err := m.settings.Get(ctx, branchID)
	if err != nil {
		return store.TokenRecord{}, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil || !settings.IsActive {
		return store.TokenRecord{}, fmt.Errorf("%w: %s", ErrNotConfigured, branchID)
	}

	tok, err := m.vendor.RequestToken(ctx, vendorapi.Credentials{
		APIURL:    settings.APIURL,
		AppKey:    settings.AppKey,
		AppSecret: settings.AppSecret,
	})
	if err != nil {
		return store.TokenRecord{}, fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}

	rec := store.TokenRecord{
		BranchID:    branchID,
		AccessToken: tok.AccessToken,
		ExpiresAt:   now.Add(time.Duration(tok.ExpiresIn) * time.Second),
		AreaDomain:  tok.AreaDomain,
		CreatedAt:   now,
	}
	if err := m.tokens.Upsert(ctx, rec); err != nil {
		return store.TokenRecord{}, fmt.Errorf("cache token: %w", err)
	}

	m.logger.Debug("vendor token refreshed",
		zap.String("branch_id", branchID),
		zap.Time("expires_at", rec.ExpiresAt),
	)

	return rec, nil
}
