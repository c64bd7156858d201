// Package remote defines the shared cache tier (L2): a networked key/value
// store with TTLs plus the atomic counter the version registry builds on.
//
// Implementations return explicit errors; they never decide failure policy.
// The facade applies "treat any failure as a miss / no-op" once, centrally,
// so the degrade-on-failure contract is structural rather than per call site.
//
// Values are strings because the canonical transport is a JSON command
// gateway (see resthttp); binary codecs need a transport-safe encoding or
// the direct Redis store.
package remote

import (
	"context"
	"time"
)

// Store is a best-effort shared byte store with TTLs and atomic counters.
// Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; ("", false, nil) on miss.
	// IO/remote errors come back as (_, false, err).
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value with the given TTL. TTLs are rounded up to whole
	// seconds by transports with second resolution.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Incr atomically increments an integer counter and returns the new
	// value. A missing counter increments from 0.
	Incr(ctx context.Context, key string) (int64, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
