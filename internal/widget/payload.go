// Package widget projects "today's item" onto an external display surface.
// The projection is one-way and best effort: it never feeds back into the
// application document.
package widget

import (
	"time"

	"github.com/lazypower/lifehack/internal/core"
)

// Payload is what the widget surface renders.
type Payload struct {
	Phrase    string    `json:"phrase"`
	Title     string    `json:"title,omitempty"`
	Type      core.Kind `json:"type"`
	ImageURI  string    `json:"imageUri,omitempty"`
	UpdatedAt int64     `json:"updatedAt"`
}

// BuildPayload renders item for the widget. The secondary title is the
// card title when set, the playbook title only when it differs from the
// phrase, and never present for nudges.
func BuildPayload(item core.Item, now time.Time) Payload {
	p := Payload{
		Phrase:    item.MainText(),
		Type:      item.Kind(),
		ImageURI:  item.ImageURL(),
		UpdatedAt: now.UnixMilli(),
	}
	switch c := item.Content.(type) {
	case core.LifeCard:
		p.Title = c.Title
	case core.Playbook:
		if c.Title != p.Phrase {
			p.Title = c.Title
		}
	case core.Nudge:
	}
	return p
}
