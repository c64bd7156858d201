package tiercache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/tiercache/codec"
	"github.com/unkn0wn-root/tiercache/metrics"
	"github.com/unkn0wn-root/tiercache/remote"
)

// Options tune the cache. Only Strategies is required; others have sensible
// defaults. Remote == nil permanently disables the remote tier for the
// process: the cache degrades to L1-only with process-local generations,
// which is strictly weaker (no cross-process invalidation) but never broken.
type Options struct {
	// Required. The closed set of domains and their policies.
	Strategies map[Domain]Strategy

	// Remote is the shared L2 store (resthttp or redisstore). nil => L1-only.
	Remote remote.Store

	Logger Logger // if nil, NopLogger is used

	// Now is the clock used for L1 expiry; nil => time.Now. Injectable for
	// tests.
	Now func() time.Time

	// FlushInterval is the metrics summary period; 0 => 1m.
	FlushInterval time.Duration

	// Disabled builds a cache whose reads always miss and writes no-op.
	Disabled bool
}

// New constructs a Cache. The strategy table is fixed for the cache's
// lifetime; any later operation naming a domain outside it panics.
func New(opts Options) (*Cache, error) {
	return newCache(opts)
}

// Get reads a value through both tiers using the JSON wire codec: resolve
// generation, build the qualified key, L1, then L2 with an L1 backfill on
// hit. Remote failures and corrupt entries are misses, never errors.
func Get[T any](ctx context.Context, c *Cache, domain Domain, key string) (T, bool) {
	return getValue(ctx, c, domain, key, codec.JSON[T]{})
}

// Set encodes the value with the JSON wire codec and writes it to both
// tiers under the domain's current generation. The only possible error is
// an encode failure; a failed L2 write degrades performance, not
// correctness, and is swallowed.
func Set[T any](ctx context.Context, c *Cache, domain Domain, key string, value T) error {
	return setValue(ctx, c, domain, key, value, codec.JSON[T]{})
}

// Snapshot re-exports the metrics snapshot type for callers that only
// import the root package.
type Snapshot = metrics.Snapshot
