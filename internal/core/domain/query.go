package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// QueryRecord is the ledger entry for one upstream query.
// A succeeded record is immutable; a failed one may be overwritten by a retry.
type QueryRecord struct {
	// QueryText is the exact text submitted upstream.
	QueryText string

	// ContentHash is ContentHash(QueryText). Unique in the ledger.
	ContentHash string

	// RawResponse is the upstream answer. Empty for failed attempts.
	RawResponse string

	// Succeeded marks a completed query whose response may be served from cache.
	Succeeded bool

	// Timestamp is when the attempt was recorded.
	Timestamp time.Time
}

// ContentHash returns the hex SHA-256 of the query text.
// The hash addresses content, so identical texts always share an entry.
func ContentHash(queryText string) string {
	sum := sha256.Sum256([]byte(queryText))
	return hex.EncodeToString(sum[:])
}

// DayKey formats t as the calendar date used to key daily counters.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
