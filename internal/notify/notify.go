// Package notify plans and schedules the single daily reminder for
// today's item.
package notify

import (
	"time"
	"unicode/utf8"

	"github.com/lazypower/lifehack/internal/core"
	"github.com/lazypower/lifehack/internal/delivery"
)

// TodayOneShotID identifies the daily reminder. Scheduling again replaces
// the pending one with the same ID.
const TodayOneShotID = "today-one-shot"

const (
	DefaultHour   = 21
	DefaultMinute = 0

	titlePrefix = "Life Hack Reminder"
	maxBody     = 80
	cutBody     = 77
)

// Notification is a planned local reminder.
type Notification struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	FireAt time.Time `json:"fireAt"`
	ItemID string    `json:"itemId"`
}

// TodayOneShot plans today's reminder at hour:minute in now's location.
// It returns nil when there are no items or that time has already passed.
func TodayOneShot(items []core.Item, now time.Time, hour, minute int) *Notification {
	item, ok := delivery.SelectTodayItem(items, delivery.DayKey(now))
	if !ok {
		return nil
	}
	fireAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !now.Before(fireAt) {
		return nil
	}

	title := titlePrefix
	if t := item.Title(); t != "" {
		title = titlePrefix + ": " + t
	}
	return &Notification{
		ID:     TodayOneShotID,
		Title:  title,
		Body:   truncate(item.MainText()),
		FireAt: fireAt,
		ItemID: item.ID,
	}
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxBody {
		return s
	}
	r := []rune(s)
	return string(r[:cutBody]) + "…"
}
