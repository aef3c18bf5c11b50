package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tovigym/gymgate/internal/gymgate/service"
	"github.com/tovigym/gymgate/internal/gymgate/store/memory"
	"github.com/tovigym/gymgate/internal/gymgate/types"
)

func newTestSubscriptionManager(t *testing.T) (*service.SubscriptionManager, *memory.SettingsStore, *memory.SyncLogStore, *fakeVendor) {
	t.Helper()
	settings := memory.NewSettingsStore()
	tokens := memory.NewTokenStore()
	syncLog := memory.NewSyncLogStore()
	vendor := &fakeVendor{}
	tokenMgr := service.NewTokenManager(settings, tokens, vendor, silentLogger())
	mgr := service.NewSubscriptionManager(settings, tokenMgr, vendor, syncLog, silentLogger())
	return mgr, settings, syncLog, vendor
}

func TestEnsureSubscription_ExistingReturnedWithoutVendorCall(t *testing.T) {
	mgr, settings, _, vendor := newTestSubscriptionManager(t)
	ctx := context.Background()

	_ = settings.Save(ctx, activeSettings("B1"))
	_ = settings.SetSubscriptionID(ctx, "B1", "sub-existing")

	got, err := mgr.EnsureSubscription(ctx, "B1")
	if err != nil {
		t.Fatalf("EnsureSubscription: %v", err)
	}
	if got != "sub-existing" {
		t.Errorf("expected sub-existing, got %q", got)
	}
	if s := vendor.stats(); s.subscribeCalls != 0 || s.tokenCalls != 0 {
		t.Errorf("expected no vendor calls, got %+v", s)
	}
}

func TestEnsureSubscription_CreatesAndPersists(t *testing.T) {
	mgr, settings, syncLog, _ := newTestSubscriptionManager(t)
	ctx := context.Background()
	_ = settings.Save(ctx, activeSettings("B1"))

	got, err := mgr.EnsureSubscription(ctx, "B1")
	if err != nil {
		t.Fatalf("EnsureSubscription: %v", err)
	}
	if got != "sub-1" {
		t.Errorf("expected sub-1, got %q", got)
	}

	st, _ := settings.Get(ctx, "B1")
	if st.SubscriptionID != "sub-1" {
		t.Errorf("expected subscription id persisted, got %q", st.SubscriptionID)
	}
	if st.LastSyncStatus != types.SyncStatusSuccess {
		t.Errorf("expected success status, got %q", st.LastSyncStatus)
	}

	entries := syncLog.Entries()
	if len(entries) != 1 || entries[0].Category != types.LogCategoryInfo {
		t.Errorf("expected one info log entry, got %+v", entries)
	}
}

func TestEnsureSubscription_FailureLeavesNoSubscription(t *testing.T) {
	mgr, settings, syncLog, vendor := newTestSubscriptionManager(t)
	ctx := context.Background()
	_ = settings.Save(ctx, activeSettings("B1"))
	vendor.subscribeErr = errors.New("subscription quota exceeded")

	_, err := mgr.EnsureSubscription(ctx, "B1")
	if !errors.Is(err, service.ErrSubscriptionFailure) {
		t.Fatalf("expected ErrSubscriptionFailure, got %v", err)
	}

	st, _ := settings.Get(ctx, "B1")
	if st.SubscriptionID != "" {
		t.Errorf("expected subscription id untouched, got %q", st.SubscriptionID)
	}

	entries := syncLog.Entries()
	if len(entries) != 1 || entries[0].Category != types.LogCategoryError {
		t.Errorf("expected one error log entry, got %+v", entries)
	}
}

func TestEnsureSubscription_NotConfigured(t *testing.T) {
	mgr, _, _, _ := newTestSubscriptionManager(t)

	_, err := mgr.EnsureSubscription(context.Background(), "missing")
	if !errors.Is(err, service.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
