package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lazypower/lifehack/internal/core"
)

// StateKey is the well-known key the application document lives under.
const StateKey = "life_hack_reminder_state"

// StateStore persists the application document as one JSON value.
type StateStore struct {
	db  *DB
	key string
}

// NewStateStore returns a StateStore writing under StateKey.
func NewStateStore(db *DB) *StateStore {
	return &StateStore{db: db, key: StateKey}
}

// LoadState returns the stored document, or nil when nothing has been saved yet.
func (s *StateStore) LoadState(ctx context.Context) (*core.Document, error) {
	raw, ok, err := s.db.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		return nil, nil
	}

	doc := core.NewDocument()
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("load state: decode: %w", err)
	}
	// Older documents may carry null collections.
	doc = doc.Clone()
	return &doc, nil
}

// SaveState writes doc, replacing the previous document.
func (s *StateStore) SaveState(ctx context.Context, doc core.Document) error {
	data, err := json.Marshal(doc.Clone())
	if err != nil {
		return fmt.Errorf("save state: encode: %w", err)
	}
	if err := s.db.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
