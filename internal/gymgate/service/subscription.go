package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/types"
	"github.com/tovigym/gymgate/internal/gymgate/vendorapi"
)

// doorEventTypes is the fixed event set subscribed for every branch.
var doorEventTypes = []string{"doorOpen", "doorClose", "cardVerify", "faceVerify"}

// SubscriptionManager creates and persists the per-branch vendor event
// subscription. Subscriptions are durable until explicitly invalidated;
// this component never proactively expires them.
type SubscriptionManager struct {
	settings store.SettingsStore
	tokens   *TokenManager
	vendor   vendorapi.Client
	syncLog  store.SyncLogStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewSubscriptionManager(settings store.SettingsStore, tokens *TokenManager, vendor vendorapi.Client, syncLog store.SyncLogStore, logger *zap.Logger) *SubscriptionManager {
	return &SubscriptionManager{
		settings: settings,
		tokens:   tokens,
		vendor:   vendor,
		syncLog:  syncLog,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSubscription returns the branch's subscription id, creating one
// on the vendor side if none is stored yet.
func (m *SubscriptionManager) EnsureSubscription(ctx context.Context, branchID string) (string, error) {
	settings, err := m.settings.Get(ctx, branchID)
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}
	if settings == nil || !settings.IsActive {
		return "", fmt.Errorf("%w: %s", ErrNotConfigured, branchID)
	}
	if settings.SubscriptionID != "" {
		return settings.SubscriptionID, nil
	}

	subID, err := m.subscribe(ctx, settings)
	if err != nil {
		now := m.now()
		_ = m.syncLog.Append(ctx, store.SyncLogRecord{
			BranchID:   branchID,
			Category:   types.LogCategoryError,
			Message:    "event subscription failed",
			Details:    err.Error(),
			Status:     "error",
			EntityType: "subscription",
			CreatedAt:  now,
		})
		return "", fmt.Errorf("%w: %v", ErrSubscriptionFailure, err)
	}

	now := m.now()
	if err := m.settings.SetSubscriptionID(ctx, branchID, subID); err != nil {
		return "", fmt.Errorf("persist subscription id: %w", err)
	}
	if err := m.settings.UpdateSyncStatus(ctx, branchID, types.SyncStatusSuccess, "", now); err != nil {
		return "", fmt.Errorf("record sync status: %w", err)
	}

	_ = m.syncLog.Append(ctx, store.SyncLogRecord{
		BranchID:   branchID,
		Category:   types.LogCategoryInfo,
		Message:    "event subscription created",
		Details:    subID,
		Status:     "success",
		EntityType: "subscription",
		CreatedAt:  now,
	})

	m.logger.Info("subscription created",
		zap.String("branch_id", branchID),
		zap.String("subscription_id", subID),
	)

	return subID, nil
}

func (m *SubscriptionManager) subscribe(ctx context.Context, settings *types.BranchSettings) (string, error) {
	tok, err := m.tokens.GetToken(ctx, settings.BranchID)
	if err != nil {
		return "", err
	}
	creds := vendorapi.Credentials{
		APIURL:    settings.APIURL,
		AppKey:    settings.AppKey,
		AppSecret: settings.AppSecret,
	}
	return m.vendor.Subscribe(ctx, creds, tok.AccessToken, doorEventTypes)
}
