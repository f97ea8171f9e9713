package delivery

import (
	"math/rand/v2"
	"time"

	"github.com/lazypower/lifehack/internal/core"
)

// Rand is the random source used to break score ties.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the process-wide math/rand/v2 source.
var DefaultRand Rand = globalRand{}

// EffectiveScore ranks eligible items. NO feedback is not part of the score;
// it only gates eligibility through the cooldown.
func EffectiveScore(item core.Item) float64 {
	return float64(item.Stats.YesCount) - 0.25*float64(item.Stats.SkipCount)
}

// SelectNextItem picks the next item to deliver: among eligible items it
// keeps those sharing the top score and picks one of them uniformly. It
// returns false when nothing is eligible. items is not modified.
func SelectNextItem(items []core.Item, now time.Time, rnd Rand) (core.Item, bool) {
	if rnd == nil {
		rnd = DefaultRand
	}
	nowMs := now.UnixMilli()

	var top []int
	var topScore float64
	for i := range items {
		if !IsEligible(items[i], nowMs) {
			continue
		}
		score := EffectiveScore(items[i])
		switch {
		case len(top) == 0 || score > topScore:
			top = append(top[:0], i)
			topScore = score
		case score == topScore:
			top = append(top, i)
		}
	}
	if len(top) == 0 {
		return core.Item{}, false
	}
	return items[top[rnd.IntN(len(top))]], true
}
