package model

import (
	"strings"

	"github.com/google/uuid"
)

// NewID generates a random UUID v4 string for a new link.
func NewID() string {
	return uuid.NewString()
}

// ValidateID reports whether id looks like a link ID.
// Canonical UUIDs are accepted as well as legacy IDs from hand-edited or
// imported collections, as long as they are non-empty and contain no
// whitespace or path separators.
func ValidateID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	if _, err := uuid.Parse(id); err == nil {
		return true
	}
	return !strings.ContainsAny(id, " \t\r\n/\\?#")
}
