// Package engine owns the application document. Manager is its only mutator:
// every mutation reads the current snapshot, computes the next one with the
// pure rules from package delivery, purges expired retired items, persists,
// and only then releases the lock.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/lazypower/lifehack/internal/core"
	"github.com/lazypower/lifehack/internal/delivery"
)

const (
	// MaxActiveItems is the rotation size. Callers check AtCapacity and
	// route to a replace flow; Add itself does not refuse.
	MaxActiveItems = 10

	// RetentionWindow is how long retired items are kept before purge.
	RetentionWindow = 30 * 24 * time.Hour
)

// Store is the durable home of the document.
type Store interface {
	// LoadState returns nil, nil when nothing has been saved yet.
	LoadState(ctx context.Context) (*core.Document, error)
	SaveState(ctx context.Context, doc core.Document) error
}

// Options injects the collaborators Manager would otherwise default.
type Options struct {
	Now    func() time.Time
	NewID  func() string
	Rand   delivery.Rand
	Logger *slog.Logger
}

// Manager is the lifecycle and state manager.
type Manager struct {
	mu    sync.Mutex
	doc   core.Document
	store Store

	now    func() time.Time
	newID  func() string
	rand   delivery.Rand
	logger *slog.Logger

	listenMu  sync.Mutex
	listeners []func(core.Document)

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Open loads the document from store and purges expired retired items.
// The document is written back only when the purge removed something, so
// opening for a read never touches storage. A missing document starts empty.
func Open(ctx context.Context, store Store, opts Options) (*Manager, error) {
	m := &Manager{
		store:  store,
		now:    opts.Now,
		newID:  opts.NewID,
		rand:   opts.Rand,
		logger: opts.Logger,
		stopCh: make(chan struct{}),
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = delivery.NewID
	}
	if m.rand == nil {
		m.rand = delivery.DefaultRand
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	loaded, err := store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	doc := core.NewDocument()
	if loaded != nil {
		doc = loaded.Clone()
	}
	m.doc = doc

	if n := purgeExpired(&m.doc, m.now()); n > 0 {
		m.logger.Info("purged expired retired items", "count", n)
		if err := store.SaveState(ctx, m.doc); err != nil {
			m.logger.Warn("save cleaned state", "error", err)
		}
	}
	return m, nil
}

// purgeExpired drops retired items whose retirement is at least
// RetentionWindow old and returns how many were dropped.
func purgeExpired(doc *core.Document, now time.Time) int {
	cutoff := now.UnixMilli() - RetentionWindow.Milliseconds()
	kept := make([]core.RetiredItem, 0, len(doc.DeleteBox))
	for _, r := range doc.DeleteBox {
		if r.DeletedAt > cutoff {
			kept = append(kept, r)
		}
	}
	purged := len(doc.DeleteBox) - len(kept)
	doc.DeleteBox = kept
	return purged
}

// mutate runs fn on a copy of the document under the lock. fn reports
// whether it changed anything; an unchanged document with nothing to purge
// is not rewritten. Listeners run after the lock is released.
func (m *Manager) mutate(ctx context.Context, op string, fn func(next *core.Document, now time.Time) bool) error {
	m.mu.Lock()
	now := m.now()
	next := m.doc.Clone()
	changed := fn(&next, now)
	purged := purgeExpired(&next, now)
	if !changed && purged == 0 {
		m.mu.Unlock()
		return nil
	}

	m.doc = next
	err := m.store.SaveState(ctx, next)
	snapshot := next.Clone()
	m.mu.Unlock()

	if purged > 0 {
		m.logger.Info("purged expired retired items", "op", op, "count", purged)
	}
	m.emit(snapshot)

	if err != nil {
		m.logger.Error("persist state", "op", op, "error", err)
		return &PersistError{Op: op, Err: err}
	}
	return nil
}

// OnChange registers fn to receive a snapshot after every applied mutation
// and on every midnight tick. fn must not block for long.
func (m *Manager) OnChange(fn func(core.Document)) {
	m.listenMu.Lock()
	defer m.listenMu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) emit(doc core.Document) {
	m.listenMu.Lock()
	listeners := slices.Clone(m.listeners)
	m.listenMu.Unlock()
	for _, fn := range listeners {
		fn(doc)
	}
}

// Refresh sends the current snapshot to listeners without changing it.
func (m *Manager) Refresh() {
	m.emit(m.Snapshot())
}

// StartMidnightTimer refreshes listeners now and at every local midnight
// (in the location of the Manager's clock) until Stop.
func (m *Manager) StartMidnightTimer() {
	m.Refresh()

	go func() {
		for {
			timer := time.NewTimer(untilMidnight(m.now()))
			select {
			case <-timer.C:
				m.logger.Info("day rollover", "day", delivery.DayKey(m.now()))
				m.Refresh()
			case <-m.stopCh:
				timer.Stop()
				return
			}
		}
	}()
}

// untilMidnight returns the wait until the next local midnight after t.
func untilMidnight(t time.Time) time.Duration {
	y, mo, d := t.Date()
	next := time.Date(y, mo, d+1, 0, 0, 0, 0, t.Location())
	return next.Sub(t)
}

// Stop shuts down the engine's background goroutines.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Now returns the Manager's clock reading.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Snapshot returns a deep copy of the current document.
func (m *Manager) Snapshot() core.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Clone()
}

// ActiveItems returns a copy of the active items in display order.
func (m *Manager) ActiveItems() []core.Item {
	return m.Snapshot().ActiveItems
}

// RetiredItems returns a copy of the retired items.
func (m *Manager) RetiredItems() []core.RetiredItem {
	return m.Snapshot().DeleteBox
}

// AtCapacity reports whether the rotation is full and new items must
// replace an existing one.
func (m *Manager) AtCapacity() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.doc.ActiveItems) >= MaxActiveItems
}
