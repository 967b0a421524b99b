// Package common provides shared utilities for Foregone
package common

import "time"

// Freshness TTLs for cached data components
const (
	FreshnessHistory = 4 * time.Hour      // daily price history; a few refreshes per trading day is plenty
	FreshnessFx      = 4 * time.Hour      // FX pair history, same cadence as prices
	FreshnessResult  = 1 * time.Hour      // content-addressed simulation results
	FreshnessSearch  = 24 * time.Hour     // ticker search candidates change rarely
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
