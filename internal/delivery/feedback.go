package delivery

import (
	"github.com/lazypower/lifehack/internal/core"
)

// FeedbackEvery is the per-item delivery interval at which feedback is asked.
const FeedbackEvery = 3

// DeletePromptThreshold is the NO count at which retiring the item is offered.
const DeletePromptThreshold = 5

// ShouldAskFeedback reports whether the delivery that brought the item's
// display count to displayCountAfterIncrement should ask for feedback.
func ShouldAskFeedback(displayCountAfterIncrement int) bool {
	return displayCountAfterIncrement%FeedbackEvery == 0
}

// NewRecord builds the record of one delivery. Feedback starts absent.
func NewRecord(id, itemID string, deliveredAt int64, feedbackAsked bool) core.DeliveryRecord {
	return core.DeliveryRecord{
		ID:            id,
		ItemID:        itemID,
		DeliveredAt:   deliveredAt,
		FeedbackAsked: feedbackAsked,
	}
}

// ApplyFeedback stamps feedback on the delivery and updates the delivered
// item's counters, returning the updated copy of doc. The bool reports that
// the item has collected enough NOs that retiring it should be offered; the
// item itself is never retired here.
//
// An unknown deliveryID is a stale callback: doc is returned unchanged.
// Repeated feedback on one delivery overwrites the stored value and counts again.
func ApplyFeedback(doc core.Document, deliveryID string, fb core.Feedback) (core.Document, bool) {
	di := doc.DeliveryIndex(deliveryID)
	if di < 0 {
		return doc, false
	}

	next := doc.Clone()
	given := fb
	next.Deliveries[di].FeedbackGiven = &given

	ii := next.ActiveIndex(next.Deliveries[di].ItemID)
	if ii < 0 {
		return next, false
	}

	stats := &next.ActiveItems[ii].Stats
	promptDelete := false
	switch fb {
	case core.FeedbackYes:
		stats.YesCount++
		if stats.NoCount > 0 {
			stats.NoCount--
		}
	case core.FeedbackNo:
		stats.NoCount++
		promptDelete = stats.NoCount >= DeletePromptThreshold
	case core.FeedbackSkip:
		stats.SkipCount++
	}
	return next, promptDelete
}

// ReduceNoCount takes one NO off the item, floored at zero. It is used when
// the retire prompt is declined and snoozes the threshold rather than
// resetting it. Unknown ids leave doc unchanged.
func ReduceNoCount(doc core.Document, itemID string) core.Document {
	i := doc.ActiveIndex(itemID)
	if i < 0 {
		return doc
	}
	next := doc.Clone()
	if next.ActiveItems[i].Stats.NoCount > 0 {
		next.ActiveItems[i].Stats.NoCount--
	}
	return next
}
