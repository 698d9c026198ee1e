package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a time-sortable unique id, optionally scoped by prefix
// ("blk", "ses", ...).
func NewID(prefix string) string {
	id := strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
