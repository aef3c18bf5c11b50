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

// MapEventType translates the vendor's event taxonomy into ours.
// Unrecognized strings pass through as unknown; no event is dropped.
func MapEventType(vendorType string) types.EventType {
	switch vendorType {
	case "doorOpen", "cardVerify", "faceVerify":
		return types.EventTypeEntry
	case "doorClose":
		return types.EventTypeExit
	default:
		return types.EventTypeUnknown
	}
}

// Ingestor normalizes vendor messages and persists them as access events,
// with one sync-log entry per event.
type Ingestor struct {
	events  store.AccessEventStore
	syncLog store.SyncLogStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewIngestor(events store.AccessEventStore, syncLog store.SyncLogStore, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		events:  events,
		syncLog: syncLog,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Ingest persists one vendor message. A persistence failure is recorded
// in the sync log and swallowed so the rest of the batch proceeds.
func (g *Ingestor) Ingest(ctx context.Context, branchID string, msg vendorapi.Message) {
	now := g.now()

	rec := store.AccessEventRecord{
		BranchID:      branchID,
		DeviceSN:      msg.DeviceSN,
		EventType:     MapEventType(msg.EventType),
		EventTime:     msg.EventTime,
		DoorID:        msg.DoorID,
		DoorName:      msg.DoorName,
		PersonID:      msg.PersonID,
		PersonName:    msg.PersonName,
		CardNo:        msg.CardNo,
		VendorEventID: msg.EventID,
		CreatedAt:     now,
	}

	inserted, err := g.events.RecordEvent(ctx, rec)
	if err != nil {
		g.logger.Error("persist access event",
			zap.String("branch_id", branchID),
			zap.String("device_sn", msg.DeviceSN),
			zap.Error(err),
		)
		_ = g.syncLog.Append(ctx, store.SyncLogRecord{
			BranchID:   branchID,
			Category:   types.LogCategoryError,
			Message:    "failed to persist access event",
			Details:    err.Error(),
			Status:     "error",
			EntityType: "event",
			CreatedAt:  now,
		})
		return
	}

	if !inserted {
		// Redelivered message already ingested under its vendor event id.
		g.logger.Debug("duplicate vendor event skipped",
			zap.String("branch_id", branchID),
			zap.String("vendor_event_id", msg.EventID),
		)
		return
	}

	_ = g.syncLog.Append(ctx, store.SyncLogRecord{
		BranchID:   branchID,
		Category:   types.LogCategoryInfo,
		Message:    fmt.Sprintf("%s event received", rec.EventType),
		Details:    fmt.Sprintf("device=%s door=%s person=%s", msg.DeviceSN, msg.DoorName, msg.PersonName),
		Status:     "success",
		EntityType: "event",
		CreatedAt:  now,
	})
}
