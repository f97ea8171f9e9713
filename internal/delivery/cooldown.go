// Package delivery holds the pure selection and feedback rules: which item
// goes out next, when feedback is asked, how feedback moves the counters,
// and which item is "today's" for the widget. Nothing here touches storage.
package delivery

import (
	"math"
	"time"

	"github.com/lazypower/lifehack/internal/core"
)

// MsPerDay is the cooldown day length. Calendar days are not used.
const MsPerDay int64 = 86400000

// CooldownDays maps a NO count to its cooldown in days.
// The table is fixed: 0→0, 1→5, 2→7, 3→9, 4+→11.
func CooldownDays(noCount int) int {
	switch {
	case noCount <= 0:
		return 0
	case noCount == 1:
		return 5
	case noCount == 2:
		return 7
	case noCount == 3:
		return 9
	default:
		return 11
	}
}

// IsEligible reports whether item may be delivered at now (unix ms).
func IsEligible(item core.Item, now int64) bool {
	days := CooldownDays(item.Stats.NoCount)
	if days == 0 || item.Stats.LastDeliveredAt == nil {
		return true
	}
	return now >= *item.Stats.LastDeliveredAt+int64(days)*MsPerDay
}

// CooldownInfo describes an item's cooldown for display.
type CooldownInfo struct {
	CoolingDown   bool
	RemainingDays int
	EndsAt        time.Time
}

// Cooldown reports whether item is cooling down at now and for how many
// (rounded up) days.
func Cooldown(item core.Item, now time.Time) CooldownInfo {
	days := CooldownDays(item.Stats.NoCount)
	if days == 0 || item.Stats.LastDeliveredAt == nil {
		return CooldownInfo{}
	}
	end := *item.Stats.LastDeliveredAt + int64(days)*MsPerDay
	nowMs := now.UnixMilli()
	if nowMs >= end {
		return CooldownInfo{}
	}
	return CooldownInfo{
		CoolingDown:   true,
		RemainingDays: int(math.Ceil(float64(end-nowMs) / float64(MsPerDay))),
		EndsAt:        time.UnixMilli(end),
	}
}
