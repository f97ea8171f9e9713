package delivery

import "github.com/google/uuid"

// NewID returns a random UUID string for items and delivery records.
func NewID() string {
	return uuid.NewString()
}
