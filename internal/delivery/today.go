package delivery

import (
	"cmp"
	"slices"
	"time"
	"unicode/utf16"

	"github.com/lazypower/lifehack/internal/core"
)

// DayKeyLayout is the format of day keys: local calendar date, YYYY-MM-DD.
const DayKeyLayout = "2006-01-02"

// DayKey returns the day key for t in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// SelectTodayItem deterministically picks the item of the day. The pick is a
// function of dayKey and the set of item IDs only, so a separate process (the
// widget refresher) computes the same item without shared state. Items are
// put in ID order before the seeded shuffle; input order does not matter.
func SelectTodayItem(items []core.Item, dayKey string) (core.Item, bool) {
	switch len(items) {
	case 0:
		return core.Item{}, false
	case 1:
		return items[0], true
	}

	shuffled := slices.Clone(items)
	slices.SortStableFunc(shuffled, func(a, b core.Item) int { return cmp.Compare(a.ID, b.ID) })

	rng := newMulberry32(hashDayKey(dayKey))
	for i := len(shuffled) - 1; i > 0; i-- {
		j := int(rng.next() * float64(i+1))
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[0], true
}

// hashDayKey is the 31-multiplier string hash over UTF-16 code units with
// 32-bit wraparound, made non-negative.
func hashDayKey(s string) uint32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	if h < 0 {
		// -MinInt32 wraps back to itself; as uint32 that is 2^31, the true magnitude.
		return uint32(-int64(h))
	}
	return uint32(h)
}

// mulberry32 is a small seeded PRNG with a fixed, platform-independent stream.
type mulberry32 struct {
	state uint32
}

func newMulberry32(seed uint32) *mulberry32 {
	return &mulberry32{state: seed}
}

// next returns a float in [0, 1).
func (m *mulberry32) next() float64 {
	m.state += 0x6d2b79f5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296
}
