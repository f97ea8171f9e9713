package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/lazypower/lifehack/internal/core"
)

func morning() time.Time {
	return time.Date(2026, 2, 18, 9, 0, 0, 0, time.UTC)
}

func TestTodayOneShot(t *testing.T) {
	items := []core.Item{{ID: "a", Content: core.LifeCard{Title: "Focus", Phrase: "One thing at a time"}}}
	n := TodayOneShot(items, morning(), DefaultHour, DefaultMinute)
	if n == nil {
		t.Fatal("expected a notification")
	}
	if n.ID != TodayOneShotID {
		t.Errorf("ID = %q", n.ID)
	}
	if n.Title != "Life Hack Reminder: Focus" {
		t.Errorf("Title = %q", n.Title)
	}
	if n.Body != "One thing at a time" {
		t.Errorf("Body = %q", n.Body)
	}
	if want := time.Date(2026, 2, 18, 21, 0, 0, 0, time.UTC); !n.FireAt.Equal(want) {
		t.Errorf("FireAt = %v, want %v", n.FireAt, want)
	}
	if n.ItemID != "a" {
		t.Errorf("ItemID = %q", n.ItemID)
	}
}

func TestTodayOneShotNoItems(t *testing.T) {
	if n := TodayOneShot(nil, morning(), DefaultHour, DefaultMinute); n != nil {
		t.Errorf("got %+v, want nil", n)
	}
}

func TestTodayOneShotPastFireTime(t *testing.T) {
	items := []core.Item{{ID: "a", Content: core.Nudge{Text: "x"}}}
	at := time.Date(2026, 2, 18, 21, 0, 0, 0, time.UTC)
	if n := TodayOneShot(items, at, DefaultHour, DefaultMinute); n != nil {
		t.Errorf("exactly at fire time: got %+v, want nil", n)
	}
	if n := TodayOneShot(items, at.Add(-time.Second), DefaultHour, DefaultMinute); n == nil {
		t.Error("one second before fire time: expected a notification")
	}
}

func TestTodayOneShotUntitledPlaybook(t *testing.T) {
	items := []core.Item{{ID: "a", Content: core.Playbook{Steps: []string{"Stretch"}}}}
	n := TodayOneShot(items, morning(), DefaultHour, DefaultMinute)
	if n == nil || n.Title != "Life Hack Reminder" {
		t.Errorf("got %+v", n)
	}
}

func TestTruncate(t *testing.T) {
	exact := strings.Repeat("a", 80)
	if got := truncate(exact); got != exact {
		t.Errorf("80 chars should not be cut")
	}
	long := strings.Repeat("あ", 81)
	got := truncate(long)
	if utf8.RuneCountInString(got) != 78 || !strings.HasSuffix(got, "…") {
		t.Errorf("truncate(81 runes) = %d runes %q", utf8.RuneCountInString(got), got)
	}
}

type recorder struct {
	mu  sync.Mutex
	got []Notification
	ch  chan struct{}
}

func (r *recorder) Notify(ctx context.Context, n Notification) error {
	r.mu.Lock()
	r.got = append(r.got, n)
	r.mu.Unlock()
	r.ch <- struct{}{}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerReplacesPending(t *testing.T) {
	rec := &recorder{ch: make(chan struct{}, 4)}
	now := time.Now()
	s := NewScheduler(rec, func() time.Time { return now }, 0, 0, quietLogger())
	defer s.Stop()

	s.Schedule(Notification{ID: "n", Body: "first", FireAt: now.Add(time.Hour)})
	s.Schedule(Notification{ID: "n", Body: "second", FireAt: now.Add(10 * time.Millisecond)})

	select {
	case <-rec.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("notification never fired")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.got) != 1 || rec.got[0].Body != "second" {
		t.Errorf("fired %+v", rec.got)
	}
	if _, ok := s.Pending("n"); ok {
		t.Error("fired notification still pending")
	}
}

func TestSchedulerCancel(t *testing.T) {
	rec := &recorder{ch: make(chan struct{}, 1)}
	now := time.Now()
	s := NewScheduler(rec, func() time.Time { return now }, 0, 0, quietLogger())

	s.Schedule(Notification{ID: "n", FireAt: now.Add(20 * time.Millisecond)})
	s.Cancel("n")
	s.Cancel("unknown")

	select {
	case <-rec.ch:
		t.Fatal("cancelled notification fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSyncToday(t *testing.T) {
	rec := &recorder{ch: make(chan struct{}, 1)}
	s := NewScheduler(rec, morning, DefaultHour, DefaultMinute, quietLogger())
	defer s.Stop()

	if n := s.SyncToday(nil); n != nil {
		t.Fatalf("no items: got %+v", n)
	}
	items := []core.Item{{ID: "a", Content: core.Nudge{Text: "Drink water"}}}
	s.Listener()(core.Document{ActiveItems: items})

	p, ok := s.Pending(TodayOneShotID)
	if !ok || p.ItemID != "a" {
		t.Errorf("pending = %+v, %v", p, ok)
	}
}
