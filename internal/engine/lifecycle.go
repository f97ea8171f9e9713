package engine

import (
	"context"
	"time"

	"github.com/lazypower/lifehack/internal/core"
	"github.com/lazypower/lifehack/internal/delivery"
)

func (m *Manager) newItem(content core.Content, tags []string, now time.Time) core.Item {
	ts := now.UnixMilli()
	return core.Item{
		ID:        m.newID(),
		CreatedAt: ts,
		UpdatedAt: ts,
		Content:   core.CloneContent(content),
		Tags:      core.NormalizeTags(tags),
	}
}

// retire moves the active item at index i to the delete box.
func retire(doc *core.Document, i int, now time.Time) core.RetiredItem {
	r := core.RetiredItem{Item: doc.ActiveItems[i], DeletedAt: now.UnixMilli()}
	doc.ActiveItems = append(doc.ActiveItems[:i], doc.ActiveItems[i+1:]...)
	doc.DeleteBox = append(doc.DeleteBox, r)
	return r
}

// unretire removes the retired item at index i and returns it as an active
// item with fresh statistics.
func unretire(doc *core.Document, i int, now time.Time) core.Item {
	it := doc.DeleteBox[i].Item
	doc.DeleteBox = append(doc.DeleteBox[:i], doc.DeleteBox[i+1:]...)
	it.Stats = core.Stats{}
	it.UpdatedAt = now.UnixMilli()
	return it
}

// Add creates an active item with zeroed stats. It does not enforce
// MaxActiveItems.
func (m *Manager) Add(ctx context.Context, content core.Content, tags []string) (*core.Item, error) {
	var added core.Item
	err := m.mutate(ctx, "add", func(doc *core.Document, now time.Time) bool {
		added = m.newItem(content, tags, now)
		doc.ActiveItems = append(doc.ActiveItems, added)
		return true
	})
	out := added.Clone()
	return &out, err
}

// AddWithinCapacity is Add with the capacity check taken under the same
// lock as the insert. It returns ErrAtCapacity and changes nothing when
// MaxActiveItems items are already active.
func (m *Manager) AddWithinCapacity(ctx context.Context, content core.Content, tags []string) (*core.Item, error) {
	var added *core.Item
	full := false
	err := m.mutate(ctx, "add", func(doc *core.Document, now time.Time) bool {
		if len(doc.ActiveItems) >= MaxActiveItems {
			full = true
			return false
		}
		it := m.newItem(content, tags, now)
		doc.ActiveItems = append(doc.ActiveItems, it)
		cp := it.Clone()
		added = &cp
		return true
	})
	if full {
		return nil, ErrAtCapacity
	}
	return added, err
}

// Update replaces the content and tags of an active item. The content kind
// may change. It returns nil when id is not active.
func (m *Manager) Update(ctx context.Context, id string, content core.Content, tags []string) (*core.Item, error) {
	var updated *core.Item
	err := m.mutate(ctx, "update", func(doc *core.Document, now time.Time) bool {
		i := doc.ActiveIndex(id)
		if i < 0 {
			return false
		}
		it := &doc.ActiveItems[i]
		it.Content = core.CloneContent(content)
		it.Tags = core.NormalizeTags(tags)
		it.UpdatedAt = now.UnixMilli()
		cp := it.Clone()
		updated = &cp
		return true
	})
	return updated, err
}

// Retire moves an active item to the delete box. It returns nil when id is
// not active.
func (m *Manager) Retire(ctx context.Context, id string) (*core.RetiredItem, error) {
	var retired *core.RetiredItem
	err := m.mutate(ctx, "retire", func(doc *core.Document, now time.Time) bool {
		i := doc.ActiveIndex(id)
		if i < 0 {
			return false
		}
		r := retire(doc, i, now).Clone()
		retired = &r
		return true
	})
	return retired, err
}

// PermanentDelete drops a retired item before its retention window ends.
// It reports whether the item existed.
func (m *Manager) PermanentDelete(ctx context.Context, id string) (bool, error) {
	found := false
	err := m.mutate(ctx, "permanent delete", func(doc *core.Document, now time.Time) bool {
		i := doc.RetiredIndex(id)
		if i < 0 {
			return false
		}
		doc.DeleteBox = append(doc.DeleteBox[:i], doc.DeleteBox[i+1:]...)
		found = true
		return true
	})
	return found, err
}

// Restore returns a retired item to rotation with its statistics reset.
// It returns nil when id is not in the delete box.
func (m *Manager) Restore(ctx context.Context, id string) (*core.Item, error) {
	var restored *core.Item
	err := m.mutate(ctx, "restore", func(doc *core.Document, now time.Time) bool {
		i := doc.RetiredIndex(id)
		if i < 0 {
			return false
		}
		it := unretire(doc, i, now)
		doc.ActiveItems = append(doc.ActiveItems, it)
		cp := it.Clone()
		restored = &cp
		return true
	})
	return restored, err
}

// RestoreWithinCapacity is Restore with the capacity check taken under the
// same lock. An unknown id returns nil before capacity is considered; a
// full rotation returns ErrAtCapacity and changes nothing.
func (m *Manager) RestoreWithinCapacity(ctx context.Context, id string) (*core.Item, error) {
	var restored *core.Item
	full := false
	err := m.mutate(ctx, "restore", func(doc *core.Document, now time.Time) bool {
		i := doc.RetiredIndex(id)
		if i < 0 {
			return false
		}
		if len(doc.ActiveItems) >= MaxActiveItems {
			full = true
			return false
		}
		it := unretire(doc, i, now)
		doc.ActiveItems = append(doc.ActiveItems, it)
		cp := it.Clone()
		restored = &cp
		return true
	})
	if full {
		return nil, ErrAtCapacity
	}
	return restored, err
}

// ReplaceAndAdd retires oldID and adds a new item in one state transition.
// It returns nil and changes nothing when oldID is not active.
func (m *Manager) ReplaceAndAdd(ctx context.Context, oldID string, content core.Content, tags []string) (*core.Item, error) {
	var added *core.Item
	err := m.mutate(ctx, "replace and add", func(doc *core.Document, now time.Time) bool {
		i := doc.ActiveIndex(oldID)
		if i < 0 {
			return false
		}
		retire(doc, i, now)
		it := m.newItem(content, tags, now)
		doc.ActiveItems = append(doc.ActiveItems, it)
		cp := it.Clone()
		added = &cp
		return true
	})
	return added, err
}

// ReplaceAndRestore retires oldID and restores restoreID in one state
// transition. It returns nil and changes nothing unless oldID is active and
// restoreID is retired.
func (m *Manager) ReplaceAndRestore(ctx context.Context, oldID, restoreID string) (*core.Item, error) {
	var restored *core.Item
	err := m.mutate(ctx, "replace and restore", func(doc *core.Document, now time.Time) bool {
		if oldID == restoreID || doc.ActiveIndex(oldID) < 0 || doc.RetiredIndex(restoreID) < 0 {
			return false
		}
		// Take the restore target out first so the freshly retired item
		// cannot be confused with it.
		it := unretire(doc, doc.RetiredIndex(restoreID), now)
		retire(doc, doc.ActiveIndex(oldID), now)
		doc.ActiveItems = append(doc.ActiveItems, it)
		cp := it.Clone()
		restored = &cp
		return true
	})
	return restored, err
}

// Delivery pairs a delivered item with its record.
type Delivery struct {
	Item   core.Item
	Record core.DeliveryRecord
}

// Deliver selects the next item, bumps its display count, records the
// delivery and moves the last-delivery pointer. It returns nil when no item
// is eligible, in which case nothing is written.
func (m *Manager) Deliver(ctx context.Context) (*Delivery, error) {
	var out *Delivery
	err := m.mutate(ctx, "deliver", func(doc *core.Document, now time.Time) bool {
		picked, ok := delivery.SelectNextItem(doc.ActiveItems, now, m.rand)
		if !ok {
			return false
		}
		i := doc.ActiveIndex(picked.ID)

		stats := &doc.ActiveItems[i].Stats
		stats.DisplayCount++
		rec := delivery.NewRecord(m.newID(), picked.ID, now.UnixMilli(), delivery.ShouldAskFeedback(stats.DisplayCount))
		at := rec.DeliveredAt
		stats.LastDeliveredAt = &at

		doc.Deliveries = append(doc.Deliveries, rec)
		doc.LastDeliveredItemID = picked.ID
		doc.LastDeliveryID = rec.ID

		out = &Delivery{Item: doc.ActiveItems[i].Clone(), Record: rec.Clone()}
		return true
	})
	return out, err
}

// RecordFeedback applies feedback to a delivery. promptDelete reports that
// the item reached the NO threshold and the user should be offered to
// retire it (or decline with ReduceNoCount). Unknown deliveries are ignored.
func (m *Manager) RecordFeedback(ctx context.Context, deliveryID string, fb core.Feedback) (promptDelete bool, err error) {
	err = m.mutate(ctx, "record feedback", func(doc *core.Document, now time.Time) bool {
		if doc.DeliveryIndex(deliveryID) < 0 {
			return false
		}
		*doc, promptDelete = delivery.ApplyFeedback(*doc, deliveryID, fb)
		return true
	})
	return promptDelete, err
}

// ReduceNoCount takes one NO off an active item, floored at zero. It
// reports whether the item exists.
func (m *Manager) ReduceNoCount(ctx context.Context, itemID string) (bool, error) {
	found := false
	err := m.mutate(ctx, "reduce no count", func(doc *core.Document, now time.Time) bool {
		if doc.ActiveIndex(itemID) < 0 {
			return false
		}
		found = true
		*doc = delivery.ReduceNoCount(*doc, itemID)
		return true
	})
	return found, err
}

// LastDelivery resolves the last-delivery pointer. It returns nil when the
// pointer is unset or either end no longer exists.
func (m *Manager) LastDelivery() *Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.doc.LastDeliveryID == "" || m.doc.LastDeliveredItemID == "" {
		return nil
	}
	rec, ok := m.doc.FindDelivery(m.doc.LastDeliveryID)
	if !ok {
		return nil
	}
	it, ok := m.doc.FindActive(m.doc.LastDeliveredItemID)
	if !ok {
		return nil
	}
	return &Delivery{Item: it.Clone(), Record: rec.Clone()}
}

// FindDelivery returns a delivery and its item. Item is zero when the item
// is no longer active.
func (m *Manager) FindDelivery(id string) (*Delivery, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.doc.FindDelivery(id)
	if !ok {
		return nil, false
	}
	it, _ := m.doc.FindActive(rec.ItemID)
	return &Delivery{Item: it.Clone(), Record: rec.Clone()}, true
}

// Today returns the item of the day for the calendar day of now.
func (m *Manager) Today() (core.Item, bool) {
	return m.TodayFor(delivery.DayKey(m.now()))
}

// TodayFor returns the item of the day for dayKey.
func (m *Manager) TodayFor(dayKey string) (core.Item, bool) {
	it, ok := delivery.SelectTodayItem(m.ActiveItems(), dayKey)
	return it, ok
}
