package core

import (
	"fmt"
	"strings"
)

// Stats tracks feedback and delivery counters for an item.
// Counts never go negative and DisplayCount only grows.
type Stats struct {
	YesCount        int    `json:"yesCount"`
	NoCount         int    `json:"noCount"`
	SkipCount       int    `json:"skipCount"`
	DisplayCount    int    `json:"displayCount"`
	LastDeliveredAt *int64 `json:"lastDeliveredAt,omitempty"`
}

// Item is something that can be delivered. Timestamps are unix milliseconds.
type Item struct {
	ID        string
	CreatedAt int64
	UpdatedAt int64
	Stats     Stats
	Content   Content
	Tags      []string
}

// Kind returns the content shape of the item.
func (it Item) Kind() Kind {
	if it.Content == nil {
		return ""
	}
	return it.Content.Kind()
}

// Title is the list heading: the card title (falling back to the phrase),
// the nudge text, or the playbook title.
func (it Item) Title() string {
	switch c := it.Content.(type) {
	case LifeCard:
		if c.Title != "" {
			return c.Title
		}
		return c.Phrase
	case Nudge:
		return c.Text
	case Playbook:
		return c.Title
	}
	return ""
}

// MainText is the primary text shown when the item is delivered.
func (it Item) MainText() string {
	switch c := it.Content.(type) {
	case LifeCard:
		return c.Phrase
	case Nudge:
		return c.Text
	case Playbook:
		return c.Title
	}
	return ""
}

// ImageURL returns the attached image, or "" when there is none.
func (it Item) ImageURL() string {
	switch c := it.Content.(type) {
	case LifeCard:
		return c.ImageURL
	case Nudge:
		return c.ImageURL
	case Playbook:
		return c.ImageURL
	}
	return ""
}

// TagList returns the item's tags; never nil.
func (it Item) TagList() []string {
	if it.Tags == nil {
		return []string{}
	}
	return it.Tags
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	out.Content = CloneContent(it.Content)
	if it.Tags != nil {
		out.Tags = append([]string(nil), it.Tags...)
	}
	if it.Stats.LastDeliveredAt != nil {
		at := *it.Stats.LastDeliveredAt
		out.Stats.LastDeliveredAt = &at
	}
	return out
}

// RetiredItem is an item moved out of rotation. It is purged once
// DeletedAt is older than the retention window.
type RetiredItem struct {
	Item
	DeletedAt int64
}

// Clone returns a deep copy of the retired item.
func (r RetiredItem) Clone() RetiredItem {
	return RetiredItem{Item: r.Item.Clone(), DeletedAt: r.DeletedAt}
}

// Feedback is the user's response to a delivery.
type Feedback string

const (
	FeedbackYes  Feedback = "YES"
	FeedbackNo   Feedback = "NO"
	FeedbackSkip Feedback = "SKIP"
)

// ParseFeedback accepts YES/NO/SKIP in any case.
func ParseFeedback(s string) (Feedback, error) {
	switch f := Feedback(strings.ToUpper(strings.TrimSpace(s))); f {
	case FeedbackYes, FeedbackNo, FeedbackSkip:
		return f, nil
	}
	return "", fmt.Errorf("invalid feedback %q (want YES, NO or SKIP)", s)
}

// DeliveryRecord is one delivery occurrence. Only FeedbackGiven ever changes.
type DeliveryRecord struct {
	ID            string    `json:"id"`
	ItemID        string    `json:"itemId"`
	DeliveredAt   int64     `json:"deliveredAt"`
	FeedbackAsked bool      `json:"feedbackAsked"`
	FeedbackGiven *Feedback `json:"feedbackGiven,omitempty"`
}

// AwaitingFeedback reports whether feedback was solicited and not yet given.
func (d DeliveryRecord) AwaitingFeedback() bool {
	return d.FeedbackAsked && d.FeedbackGiven == nil
}

// Clone returns a copy that does not share the feedback pointer.
func (d DeliveryRecord) Clone() DeliveryRecord {
	if d.FeedbackGiven != nil {
		f := *d.FeedbackGiven
		d.FeedbackGiven = &f
	}
	return d
}
