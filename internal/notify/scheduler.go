package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lazypower/lifehack/internal/core"
)

// Notifier presents a reminder when it fires.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier presents reminders as log lines.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info(n.Title, "body", n.Body, "item_id", n.ItemID)
	return nil
}

// Scheduler keeps at most one pending reminder per ID, backed by in-process timers.
type Scheduler struct {
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
	hour     int
	minute   int

	mu      sync.Mutex
	pending map[string]*scheduled
}

type scheduled struct {
	n     Notification
	timer *time.Timer
}

// NewScheduler returns a Scheduler firing the daily reminder at hour:minute local time.
func NewScheduler(notifier Notifier, now func() time.Time, hour, minute int, logger *slog.Logger) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		notifier: notifier,
		now:      now,
		logger:   logger,
		hour:     hour,
		minute:   minute,
		pending:  make(map[string]*scheduled),
	}
}

// Schedule replaces any pending notification with the same ID.
func (s *Scheduler) Schedule(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(n.ID)

	delay := n.FireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	entry := &scheduled{n: n}
	entry.timer = time.AfterFunc(delay, func() { s.fire(entry) })
	s.pending[n.ID] = entry
	s.logger.Debug("notification scheduled", "id", n.ID, "fire_at", n.FireAt, "item_id", n.ItemID)
}

// Cancel drops a pending notification. Unknown IDs are ignored.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(id)
}

func (s *Scheduler) cancelLocked(id string) {
	if entry, ok := s.pending[id]; ok {
		entry.timer.Stop()
		delete(s.pending, id)
	}
}

// Pending returns the pending notification for id, if any.
func (s *Scheduler) Pending(id string) (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pending[id]
	if !ok {
		return Notification{}, false
	}
	return entry.n, true
}

func (s *Scheduler) fire(entry *scheduled) {
	s.mu.Lock()
	if s.pending[entry.n.ID] != entry {
		s.mu.Unlock()
		return
	}
	delete(s.pending, entry.n.ID)
	s.mu.Unlock()

	if err := s.notifier.Notify(context.Background(), entry.n); err != nil {
		s.logger.Warn("notification failed", "id", entry.n.ID, "error", err)
	}
}

// SyncToday reschedules today's reminder for items. When nothing can be
// planned the pending reminder is left alone.
func (s *Scheduler) SyncToday(items []core.Item) *Notification {
	n := TodayOneShot(items, s.now(), s.hour, s.minute)
	if n == nil {
		return nil
	}
	s.Schedule(*n)
	return n
}

// Listener adapts the Scheduler to engine.Manager.OnChange.
func (s *Scheduler) Listener() func(core.Document) {
	return func(doc core.Document) {
		s.SyncToday(doc.ActiveItems)
	}
}

// Stop cancels every pending notification.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.pending {
		s.cancelLocked(id)
	}
}
