package delivery

import (
	"testing"
	"time"

	"github.com/lazypower/lifehack/internal/core"
)

func ms(v int64) *int64 { return &v }

func item(id string, stats core.Stats) core.Item {
	return core.Item{ID: id, Content: core.Nudge{Text: id}, Stats: stats}
}

func TestCooldownDays(t *testing.T) {
	want := map[int]int{0: 0, 1: 5, 2: 7, 3: 9, 4: 11, 5: 11, 100: 11, -1: 0}
	for n, days := range want {
		if got := CooldownDays(n); got != days {
			t.Errorf("CooldownDays(%d) = %d, want %d", n, got, days)
		}
	}
}

func TestIsEligibleWithoutNos(t *testing.T) {
	now := int64(1_000_000)
	for _, last := range []*int64{nil, ms(now), ms(now + MsPerDay)} {
		if !IsEligible(item("a", core.Stats{LastDeliveredAt: last}), now) {
			t.Errorf("noCount=0 must always be eligible (last=%v)", last)
		}
	}
}

func TestIsEligibleCooldownBoundary(t *testing.T) {
	last := int64(5_000_000_000)
	for n := 1; n <= 6; n++ {
		end := last + int64(CooldownDays(n))*MsPerDay
		it := item("a", core.Stats{NoCount: n, LastDeliveredAt: ms(last)})
		if IsEligible(it, end-1) {
			t.Errorf("noCount=%d: eligible 1ms before cooldown end", n)
		}
		if !IsEligible(it, end) {
			t.Errorf("noCount=%d: not eligible at cooldown end", n)
		}
	}

	neverDelivered := item("b", core.Stats{NoCount: 3})
	if !IsEligible(neverDelivered, 0) {
		t.Error("never-delivered item should be eligible")
	}
}

func TestCooldownInfo(t *testing.T) {
	last := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	it := item("a", core.Stats{NoCount: 1, LastDeliveredAt: ms(last.UnixMilli())})

	info := Cooldown(it, last.Add(36*time.Hour))
	if !info.CoolingDown || info.RemainingDays != 4 {
		t.Errorf("info = %+v, want cooling with 4 days left", info)
	}
	if !info.EndsAt.Equal(last.Add(5 * 24 * time.Hour)) {
		t.Errorf("EndsAt = %v", info.EndsAt)
	}
	if info := Cooldown(it, last.Add(5*24*time.Hour)); info.CoolingDown {
		t.Errorf("cooldown should be over: %+v", info)
	}
}

func TestShouldAskFeedback(t *testing.T) {
	for _, n := range []int{1, 2, 4, 5, 7} {
		if ShouldAskFeedback(n) {
			t.Errorf("ShouldAskFeedback(%d) = true", n)
		}
	}
	for _, n := range []int{3, 6, 9} {
		if !ShouldAskFeedback(n) {
			t.Errorf("ShouldAskFeedback(%d) = false", n)
		}
	}
}

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func TestSelectNextItemPrefersTopScore(t *testing.T) {
	now := time.UnixMilli(10 * MsPerDay)
	items := []core.Item{
		item("low", core.Stats{YesCount: 1, SkipCount: 4}),
		item("high", core.Stats{YesCount: 2}),
		item("cooling", core.Stats{YesCount: 9, NoCount: 1, LastDeliveredAt: ms(now.UnixMilli() - MsPerDay)}),
	}
	got, ok := SelectNextItem(items, now, fixedRand(0))
	if !ok || got.ID != "high" {
		t.Errorf("SelectNextItem = %q, %v; want high", got.ID, ok)
	}
}

func TestSelectNextItemNoneEligible(t *testing.T) {
	now := time.UnixMilli(10 * MsPerDay)
	items := []core.Item{
		item("a", core.Stats{NoCount: 2, LastDeliveredAt: ms(now.UnixMilli())}),
	}
	if _, ok := SelectNextItem(items, now, nil); ok {
		t.Error("expected nothing eligible")
	}
	if _, ok := SelectNextItem(nil, now, nil); ok {
		t.Error("expected nothing for empty input")
	}
}

func TestSelectNextItemBreaksTiesUniformly(t *testing.T) {
	items := []core.Item{item("a", core.Stats{}), item("b", core.Stats{})}
	counts := map[string]int{}
	const trials = 4000
	for range trials {
		got, ok := SelectNextItem(items, time.Now(), nil)
		if !ok {
			t.Fatal("expected a pick")
		}
		counts[got.ID]++
	}
	for id, n := range counts {
		if n < trials*4/10 || n > trials*6/10 {
			t.Errorf("%s picked %d/%d times, want roughly half", id, n, trials)
		}
	}
	if len(counts) != 2 {
		t.Errorf("counts = %v, want both items picked", counts)
	}
}

func TestSelectNextItemSkipPenaltyTies(t *testing.T) {
	// 1 - 0.25*4 == 0 exactly, so it ties with a fresh item.
	items := []core.Item{
		item("fresh", core.Stats{}),
		item("mixed", core.Stats{YesCount: 1, SkipCount: 4}),
		item("negative", core.Stats{SkipCount: 1}),
	}
	seen := map[string]bool{}
	for i := range 2 {
		got, _ := SelectNextItem(items, time.Now(), fixedRand(i))
		seen[got.ID] = true
	}
	if !seen["fresh"] || !seen["mixed"] || seen["negative"] {
		t.Errorf("top group = %v, want fresh and mixed", seen)
	}
}

func docWith(items ...core.Item) core.Document {
	doc := core.NewDocument()
	doc.ActiveItems = append(doc.ActiveItems, items...)
	for _, it := range items {
		doc.Deliveries = append(doc.Deliveries, NewRecord("d-"+it.ID, it.ID, 1, true))
	}
	return doc
}

func TestApplyFeedbackYesForgivesNo(t *testing.T) {
	doc := docWith(item("a", core.Stats{NoCount: 2}))
	next, prompt := ApplyFeedback(doc, "d-a", core.FeedbackYes)
	if prompt {
		t.Error("YES must not prompt deletion")
	}
	stats := next.ActiveItems[0].Stats
	if stats.YesCount != 1 || stats.NoCount != 1 {
		t.Errorf("stats = %+v, want yes=1 no=1", stats)
	}
	if got := next.Deliveries[0].FeedbackGiven; got == nil || *got != core.FeedbackYes {
		t.Errorf("feedbackGiven = %v", got)
	}
	if doc.ActiveItems[0].Stats.NoCount != 2 || doc.Deliveries[0].FeedbackGiven != nil {
		t.Error("input document was mutated")
	}
}

func TestApplyFeedbackFifthNoPrompts(t *testing.T) {
	doc := docWith(item("a", core.Stats{}))
	for i := 1; i <= 5; i++ {
		var prompt bool
		doc, prompt = ApplyFeedback(doc, "d-a", core.FeedbackNo)
		if prompt != (i == 5) {
			t.Errorf("NO #%d: prompt = %v", i, prompt)
		}
	}
	if doc.ActiveItems[0].Stats.NoCount != 5 {
		t.Errorf("noCount = %d, want 5", doc.ActiveItems[0].Stats.NoCount)
	}
}

func TestApplyFeedbackSkipAndUnknownDelivery(t *testing.T) {
	doc := docWith(item("a", core.Stats{}))
	next, _ := ApplyFeedback(doc, "d-a", core.FeedbackSkip)
	if next.ActiveItems[0].Stats.SkipCount != 1 {
		t.Errorf("skipCount = %d, want 1", next.ActiveItems[0].Stats.SkipCount)
	}

	same, prompt := ApplyFeedback(doc, "missing", core.FeedbackNo)
	if prompt || same.ActiveItems[0].Stats.NoCount != 0 || same.Deliveries[0].FeedbackGiven != nil {
		t.Errorf("unknown delivery changed state: %+v", same)
	}
}

func TestReduceNoCountFloorsAtZero(t *testing.T) {
	doc := docWith(item("a", core.Stats{NoCount: 1}))
	doc = ReduceNoCount(doc, "a")
	doc = ReduceNoCount(doc, "a")
	if doc.ActiveItems[0].Stats.NoCount != 0 {
		t.Errorf("noCount = %d, want 0", doc.ActiveItems[0].Stats.NoCount)
	}
	if got := ReduceNoCount(doc, "missing"); len(got.ActiveItems) != 1 {
		t.Error("unknown id should leave document alone")
	}
}

func TestHashDayKey(t *testing.T) {
	if got := hashDayKey("a"); got != 97 {
		t.Errorf("hash(a) = %d, want 97", got)
	}
	if got := hashDayKey("ab"); got != 97*31+98 {
		t.Errorf("hash(ab) = %d", got)
	}
	if hashDayKey("2026-02-18") != hashDayKey("2026-02-18") {
		t.Error("hash is not stable")
	}
}

func TestMulberry32Range(t *testing.T) {
	a, b := newMulberry32(7), newMulberry32(7)
	for range 1000 {
		x, y := a.next(), b.next()
		if x != y {
			t.Fatal("same seed produced different streams")
		}
		if x < 0 || x >= 1 {
			t.Fatalf("next() = %v, out of [0,1)", x)
		}
	}
}

func TestSelectTodayItem(t *testing.T) {
	if _, ok := SelectTodayItem(nil, "2026-02-18"); ok {
		t.Error("empty input should select nothing")
	}
	single := []core.Item{item("only", core.Stats{})}
	if got, _ := SelectTodayItem(single, "2026-02-18"); got.ID != "only" {
		t.Errorf("single item = %q", got.ID)
	}

	items := []core.Item{item("a", core.Stats{}), item("b", core.Stats{}), item("c", core.Stats{}), item("d", core.Stats{})}
	reversed := []core.Item{items[3], items[2], items[1], items[0]}

	first, _ := SelectTodayItem(items, "2026-02-18")
	again, _ := SelectTodayItem(items, "2026-02-18")
	other, _ := SelectTodayItem(reversed, "2026-02-18")
	if first.ID != again.ID || first.ID != other.ID {
		t.Errorf("picks differ: %q %q %q", first.ID, again.ID, other.ID)
	}
	if items[0].ID != "a" || reversed[0].ID != "d" {
		t.Error("input slices were reordered")
	}
}

func TestSelectTodayItemVariesAcrossDays(t *testing.T) {
	items := []core.Item{item("a", core.Stats{}), item("b", core.Stats{}), item("c", core.Stats{})}
	seen := map[string]bool{}
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for range 60 {
		got, _ := SelectTodayItem(items, DayKey(day))
		seen[got.ID] = true
		day = day.AddDate(0, 0, 1)
	}
	if len(seen) < 2 {
		t.Errorf("60 days always picked %v", seen)
	}
}

func TestDayKey(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	at := time.Date(2026, 2, 17, 20, 0, 0, 0, time.UTC).In(loc)
	if got := DayKey(at); got != "2026-02-18" {
		t.Errorf("DayKey = %q, want local date 2026-02-18", got)
	}
}
