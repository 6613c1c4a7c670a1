package utils // package utils provides small helpers shared across the service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid" // uuid supplies the random component of references
)

// NewTransactionRef builds a fresh transaction reference in the form
// <prefix>_<timestamp>_<random>.  The millisecond timestamp plus eight
// random hex characters makes a collision between two attempts
// negligible, which is what the store-layer uniqueness guard relies on.
func NewTransactionRef(prefix string) string {
	if prefix == "" {
		prefix = "TX"
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UTC().UnixMilli(), random)
}
