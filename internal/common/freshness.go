package common

import "time"

// FreshnessQuery is the default [query] stale_time
const FreshnessQuery = 5 * time.Minute

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() || ttl <= 0 {
		return false
	}
	return time.Since(updated) < ttl
}
