package engine

import (
	"errors"
	"fmt"
)

// ErrAtCapacity is returned by the capacity-checked mutations when
// MaxActiveItems items are already active.
var ErrAtCapacity = errors.New("active items at capacity")

// PersistError reports that a mutation was applied in memory but could not
// be written to durable storage. The caller may retry or surface it; the
// in-memory state already reflects the mutation.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: persist state: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
