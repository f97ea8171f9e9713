package widget

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/lazypower/lifehack/internal/core"
	"github.com/lazypower/lifehack/internal/delivery"
)

// Syncer recomputes today's item and mirrors it to a Sink.
type Syncer struct {
	sink   Sink
	now    func() time.Time
	logger *slog.Logger

	// Attempts and Delay tune the retry around each sink call.
	Attempts uint
	Delay    time.Duration

	mu sync.Mutex

	// pending holds the newest snapshot not yet synced. idle is non-nil
	// while a drain worker runs and is closed when it exits.
	pendMu  sync.Mutex
	pending *[]core.Item
	idle    chan struct{}
}

// NewSyncer returns a Syncer. now decides the day key, so it should carry
// the user's local time zone.
func NewSyncer(sink Sink, now func() time.Time, logger *slog.Logger) *Syncer {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		sink:     sink,
		now:      now,
		logger:   logger,
		Attempts: 3,
		Delay:    200 * time.Millisecond,
	}
}

// Sync mirrors today's pick from items, or clears the sink when there are
// no items. The returned payload is nil when the sink was cleared.
func (s *Syncer) Sync(ctx context.Context, items []core.Item) (*Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	day := delivery.DayKey(now)
	item, ok := delivery.SelectTodayItem(items, day)

	var payload *Payload
	op := func() error { return s.sink.Clear(ctx) }
	if ok {
		p := BuildPayload(item, now)
		payload = &p
		op = func() error { return s.sink.Write(ctx, p) }
	}

	err := retry.Do(op,
		retry.Attempts(s.Attempts),
		retry.Delay(s.Delay),
		retry.MaxDelay(2*time.Second),
		retry.MaxJitter(100*time.Millisecond),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Info("retrying widget sync", "attempt", n, "day", day, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("widget sync: %w", err)
	}

	if payload != nil {
		s.logger.Debug("widget synced", "day", day, "item_id", item.ID)
	} else {
		s.logger.Debug("widget cleared", "day", day)
	}
	return payload, nil
}

// Listener adapts the Syncer to engine.Manager.OnChange. Snapshots are
// synced by a single background worker that always takes the newest one,
// so a slow sync never lands after a later change. Intermediate snapshots
// may be skipped. Failures are logged and dropped.
func (s *Syncer) Listener(timeout time.Duration) func(core.Document) {
	return func(doc core.Document) {
		items := doc.ActiveItems
		s.pendMu.Lock()
		defer s.pendMu.Unlock()
		s.pending = &items
		if s.idle == nil {
			s.idle = make(chan struct{})
			go s.drain(timeout, s.idle)
		}
	}
}

func (s *Syncer) drain(timeout time.Duration, idle chan struct{}) {
	for {
		s.pendMu.Lock()
		items := s.pending
		s.pending = nil
		if items == nil {
			s.idle = nil
			s.pendMu.Unlock()
			close(idle)
			return
		}
		s.pendMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if _, err := s.Sync(ctx, *items); err != nil {
			s.logger.Warn("widget sync failed", "error", err)
		}
		cancel()
	}
}

// Wait blocks until queued listener syncs have finished.
func (s *Syncer) Wait() {
	s.pendMu.Lock()
	idle := s.idle
	s.pendMu.Unlock()
	if idle != nil {
		<-idle
	}
}
