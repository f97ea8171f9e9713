package core

import (
	"encoding/json"
	"fmt"
)

// itemWire is the persisted shape of an item: the content is tagged by "type".
type itemWire struct {
	ID        string          `json:"id"`
	Type      Kind            `json:"type"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
	Stats     Stats           `json:"stats"`
	Content   json.RawMessage `json:"content"`
	Tags      []string        `json:"tags,omitempty"`
}

type retiredWire struct {
	itemWire
	DeletedAt int64 `json:"deletedAt"`
}

func (it Item) toWire() (itemWire, error) {
	if it.Content == nil {
		return itemWire{}, fmt.Errorf("item %s: no content", it.ID)
	}
	raw, err := json.Marshal(it.Content)
	if err != nil {
		return itemWire{}, fmt.Errorf("item %s: marshal content: %w", it.ID, err)
	}
	return itemWire{
		ID:        it.ID,
		Type:      it.Content.Kind(),
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
		Stats:     it.Stats,
		Content:   raw,
		Tags:      it.Tags,
	}, nil
}

func (w itemWire) toItem() (Item, error) {
	content, err := DecodeContent(w.Type, w.Content)
	if err != nil {
		return Item{}, fmt.Errorf("item %s: %w", w.ID, err)
	}
	return Item{
		ID:        w.ID,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
		Stats:     w.Stats,
		Content:   content,
		Tags:      w.Tags,
	}, nil
}

// DecodeContent decodes raw as the content shape named by kind.
func DecodeContent(kind Kind, raw json.RawMessage) (Content, error) {
	switch kind {
	case KindLifeCard:
		var c LifeCard
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode life card: %w", err)
		}
		return c, nil
	case KindNudge:
		var c Nudge
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode nudge: %w", err)
		}
		return c, nil
	case KindPlaybook:
		var c Playbook
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode playbook: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown item type %q", kind)
}

// MarshalJSON always writes steps as a list, never null.
func (c Playbook) MarshalJSON() ([]byte, error) {
	type playbook Playbook
	if c.Steps == nil {
		c.Steps = []string{}
	}
	return json.Marshal(playbook(c))
}

// MarshalJSON implements json.Marshaler.
func (it Item) MarshalJSON() ([]byte, error) {
	w, err := it.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (it *Item) UnmarshalJSON(data []byte) error {
	var w itemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := w.toItem()
	if err != nil {
		return err
	}
	*it = decoded
	return nil
}

// MarshalJSON flattens the item fields next to deletedAt.
func (r RetiredItem) MarshalJSON() ([]byte, error) {
	w, err := r.Item.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(retiredWire{itemWire: w, DeletedAt: r.DeletedAt})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RetiredItem) UnmarshalJSON(data []byte) error {
	var w retiredWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	it, err := w.itemWire.toItem()
	if err != nil {
		return err
	}
	*r = RetiredItem{Item: it, DeletedAt: w.DeletedAt}
	return nil
}
