// Package tiercache implements a multi-domain, two-tier cache with
// generational invalidation. A fast in-process tier (L1, FIFO-evicted,
// TTL-expired) sits in front of an optional shared remote tier (L2) reached
// over a Redis-compatible REST gateway or a direct Redis connection. The
// remote tier is strictly best-effort: every failure degrades to "no L2",
// never to an error the caller must handle.
//
// Components:
//   - Strategy: per-domain TTLs and L1 capacity, fixed at construction.
//   - local.Store: bounded per-domain byte store (L1).
//   - remote.Store: shared byte store with atomic counters (L2).
//   - Version registry: one monotonically increasing generation per domain.
//   - metrics.Collector: per-domain hit/miss counters with a background flush.
//
// Keys:
//
//	v1:<domain>:__ver__              - generation counter
//	v1:<domain>:v<gen>:<caller-key>  - data entries
//
// Bumping a domain's generation re-qualifies every key ever written in that
// domain, so InvalidateDomain is O(1) no matter how many keys exist under
// the old generation; the orphaned entries simply become unreachable and
// TTL-expire.
//
// Invalidation pattern:
//
//	cache.Invalidate(ctx, "author", "u:42")   // one known item changed
//	cache.InvalidateDomain(ctx, "article-list") // "anything may have changed"
package tiercache
