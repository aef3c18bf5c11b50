package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/types"
	"github.com/tovigym/gymgate/internal/gymgate/vendorapi"
)

// PollerConfig holds the parameters for NewEventPoller.
type PollerConfig struct {
	// Interval between poll cycles. Defaults to 30 seconds.
	Interval time.Duration

	// PageSize bounds how many messages are fetched per branch per
	// cycle. Defaults to 100.
	PageSize int
}

// EventPoller is the supervisor for the recurring event-sync workload.
// It runs one immediate cycle on Start, then repeats on a fixed interval
// until Stop. Each cycle fans out over every active branch concurrently;
// one branch's failure never prevents another's pass from completing.
//
// The poller assumes it is the only instance working a given database.
// That is a deployment constraint, not an in-process lock.
type EventPoller struct {
	settings store.SettingsStore
	subs     *SubscriptionManager
	tokens   *TokenManager
	vendor   vendorapi.Client
	ingest   *Ingestor
	syncLog  store.SyncLogStore
	logger   *zap.Logger

	interval time.Duration
	pageSize int
	now      func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewEventPoller(
	settings store.SettingsStore,
	subs *SubscriptionManager,
	tokens *TokenManager,
	vendor vendorapi.Client,
	ingest *Ingestor,
	syncLog store.SyncLogStore,
	cfg PollerConfig,
	logger *zap.Logger,
) *EventPoller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	return &EventPoller{
		settings: settings,
		subs:     subs,
		tokens:   tokens,
		vendor:   vendor,
		ingest:   ingest,
		syncLog:  syncLog,
		logger:   logger,
		interval: interval,
		pageSize: pageSize,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the background poll loop. Calling Start while already
// running is a no-op. The provided ctx bounds in-flight work during
// process shutdown; Stop alone lets a running cycle finish.
func (p *EventPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true

	loopCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(ctx, loopCtx.Done())

	p.logger.Info("event poller started",
		zap.Duration("interval", p.interval),
		zap.Int("page_size", p.pageSize),
	)
}

// Stop cancels the recurring timer and waits for the loop to exit. An
// in-flight cycle is allowed to finish; only its scheduling stops.
func (p *EventPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
	p.logger.Info("event poller stopped")
}

// loop runs cycles against workCtx while stopped is open. Cycles are not
// interrupted by Stop; workCtx (the Start context) still bounds them so
// process shutdown can abort vendor calls.
func (p *EventPoller) loop(workCtx context.Context, stopped <-chan struct{}) {
	defer close(p.done)

	// Immediate first cycle so a fresh deployment syncs right away.
	p.RunCycle(workCtx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopped:
			return
		case <-workCtx.Done():
			return
		case <-ticker.C:
			p.RunCycle(workCtx)
		}
	}
}

// RunCycle executes one poll-and-ingest pass over every active branch.
// Branch passes run concurrently and settle independently.
func (p *EventPoller) RunCycle(ctx context.Context) {
	branches, err := p.settings.ListActive(ctx)
	if err != nil {
		p.logger.Error("list active branches", zap.Error(err))
		return
	}
	if len(branches) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, br := range branches {
		wg.Add(1)
		go func(st types.BranchSettings) {
			defer wg.Done()
			p.runBranch(ctx, st)
		}(br)
	}
	wg.Wait()
}

// runBranch wraps one branch pass, converting any failure into a sync-log
// entry plus an updated sync status. Errors never escape to the cycle.
func (p *EventPoller) runBranch(ctx context.Context, st types.BranchSettings) {
	err := p.pollBranch(ctx, st)
	now := p.now()

	if err != nil {
		p.logger.Warn("branch sync failed",
			zap.String("branch_id", st.BranchID),
			zap.Error(err),
		)
		_ = p.syncLog.Append(ctx, store.SyncLogRecord{
			BranchID:   st.BranchID,
			Category:   types.LogCategoryError,
			Message:    "event sync failed",
			Details:    err.Error(),
			Status:     "error",
			EntityType: "sync",
			CreatedAt:  now,
		})
		if uerr := p.settings.UpdateSyncStatus(ctx, st.BranchID, types.SyncStatusFailed, err.Error(), now); uerr != nil {
			p.logger.Error("record sync failure", zap.String("branch_id", st.BranchID), zap.Error(uerr))
		}
		return
	}

	if uerr := p.settings.UpdateSyncStatus(ctx, st.BranchID, types.SyncStatusSuccess, "", now); uerr != nil {
		p.logger.Error("record sync success", zap.String("branch_id", st.BranchID), zap.Error(uerr))
	}
}

// pollBranch is one subscribe, poll, ingest, acknowledge pass. The
// sequence is strictly ordered: acknowledge follows ingest so a crash
// before the ack causes redelivery rather than loss.
func (p *EventPoller) pollBranch(ctx context.Context, st types.BranchSettings) error {
	if _, err := p.subs.EnsureSubscription(ctx, st.BranchID); err != nil {
		return err
	}

	tok, err := p.tokens.GetToken(ctx, st.BranchID)
	if err != nil {
		return err
	}

	creds := vendorapi.Credentials{
		APIURL:    st.APIURL,
		AppKey:    st.AppKey,
		AppSecret: st.AppSecret,
	}

	msgs, err := p.vendor.PollMessages(ctx, creds, tok.AccessToken, st.LastOffset, p.pageSize)
	if err != nil {
		return wrapPollFailure(err)
	}
	if len(msgs) == 0 {
		return nil
	}

	for _, msg := range msgs {
		p.ingest.Ingest(ctx, st.BranchID, msg)
	}

	last := msgs[len(msgs)-1].Offset
	if err := p.settings.AdvanceOffset(ctx, st.BranchID, last); err != nil {
		return err
	}
	if err := p.vendor.AcknowledgeOffset(ctx, creds, tok.AccessToken, last); err != nil {
		return wrapPollFailure(err)
	}

	p.logger.Debug("branch sync pass complete",
		zap.String("branch_id", st.BranchID),
		zap.Int("messages", len(msgs)),
		zap.String("offset", last),
	)

	return nil
}
