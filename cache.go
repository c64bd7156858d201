package tiercache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/unkn0wn-root/tiercache/codec"
	"github.com/unkn0wn-root/tiercache/internal/keys"
	"github.com/unkn0wn-root/tiercache/local"
	"github.com/unkn0wn-root/tiercache/metrics"
	"github.com/unkn0wn-root/tiercache/remote"
)

// Cache is the facade composing the strategy table, both tiers, the version
// registry, and the metrics collector. Construct once at process start and
// pass by handle; all state is owned here, so independent instances are
// fully isolated (handy in tests).
type Cache struct {
	strategies map[Domain]Strategy
	l1         *local.Store
	l2         remote.Store // nil => L1-only mode
	gens       *versionRegistry
	stats      *metrics.Collector
	log        Logger
	enabled    bool

	closeOnce sync.Once
}

func newCache(opts Options) (*Cache, error) {
	if len(opts.Strategies) == 0 {
		return nil, fmt.Errorf("tiercache: strategy table is required")
	}

	c := &Cache{
		strategies: opts.Strategies,
		l2:         opts.Remote,
		enabled:    !opts.Disabled,
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	cfgs := make(map[string]local.Config, len(opts.Strategies))
	for d, s := range opts.Strategies {
		cfgs[string(d)] = local.Config{
			TTL:          s.L1TTL,
			MaxEntries:   s.L1MaxEntries,
			MaxValueSize: s.L1MaxValueSize,
		}
	}
	c.l1 = local.New(cfgs, now)

	c.gens = newVersionRegistry(opts.Remote, c.log)

	interval := coalesce[time.Duration](opts.FlushInterval, time.Minute)
	c.stats = metrics.New(interval, func(domain string, s metrics.Snapshot) {
		c.log.Info("cache metrics", Fields{
			"domain":        domain,
			"l1_hits":       s.L1Hits,
			"l1_misses":     s.L1Misses,
			"l2_hits":       s.L2Hits,
			"l2_misses":     s.L2Misses,
			"sets":          s.Sets,
			"invalidations": s.Invalidations,
		})
	})

	return c, nil
}

// Enabled reports whether the cache was built with Disabled=false.
func (c *Cache) Enabled() bool { return c.enabled }

// strategy panics on unknown domains: that is a programming error in a
// collaborator, and degrading silently would hide the bug instead of
// routing around an external fault.
func (c *Cache) strategy(d Domain) Strategy {
	s, ok := c.strategies[d]
	if !ok {
		panic(&UnknownDomainError{Domain: d})
	}
	return s
}

// getValue is the full read path shared by Get and View.Get.
func getValue[T any](ctx context.Context, c *Cache, d Domain, key string, cd codec.Codec[T]) (T, bool) {
	var zero T
	strat := c.strategy(d)
	if !c.enabled {
		return zero, false
	}
	c.stats.Touch()

	gen := c.gens.current(ctx, d)
	qk := keys.Data(string(d), gen, key)

	if raw, ok := c.l1.Get(string(d), qk); ok {
		c.stats.L1Hit(string(d))
		v, err := cd.Decode(raw)
		if err != nil {
			// self-heal corrupt L1 entry; report a miss, don't propagate
			c.l1.Delete(string(d), qk)
			c.log.Warn("dropped corrupt L1 entry", Fields{"domain": d, "key": key, "err": err})
			return zero, false
		}
		return v, true
	}
	c.stats.L1Miss(string(d))

	if strat.L2TTL <= 0 {
		// domain never participates in L2
		return zero, false
	}

	raw, ok := c.remoteGet(ctx, qk)
	if !ok {
		c.stats.L2Miss(string(d))
		return zero, false
	}
	c.stats.L2Hit(string(d))

	v, err := cd.Decode(raw)
	if err != nil {
		// corrupt remote entry: drop any local copy, let L2 TTL-expire it
		c.l1.Delete(string(d), qk)
		c.log.Warn("corrupt L2 entry, serving miss", Fields{"domain": d, "key": key, "err": err})
		return zero, false
	}

	c.l1.Set(string(d), qk, raw) // backfill; local tier enforces TTL/size policy
	return v, true
}

// setValue is the full write path shared by Set and View.Set.
func setValue[T any](ctx context.Context, c *Cache, d Domain, key string, value T, cd codec.Codec[T]) error {
	strat := c.strategy(d)
	if !c.enabled {
		return nil
	}
	c.stats.Touch()

	raw, err := cd.Encode(value)
	if err != nil {
		return fmt.Errorf("tiercache: encode %s/%s: %w", d, key, err)
	}

	gen := c.gens.current(ctx, d)
	qk := keys.Data(string(d), gen, key)

	c.l1.Set(string(d), qk, raw)

	if strat.L2TTL > 0 && c.l2 != nil {
		if err := c.l2.Set(ctx, qk, string(raw), strat.L2TTL); err != nil {
			// fire-and-forget: L1 still holds the value for its own window
			c.log.Debug("L2 write failed", Fields{"domain": d, "key": key, "err": err})
		}
	}

	c.stats.Set(string(d))
	return nil
}

// remoteGet applies the treat-failure-as-miss policy exactly once, here.
func (c *Cache) remoteGet(ctx context.Context, qk string) ([]byte, bool) {
	if c.l2 == nil {
		return nil, false
	}
	v, ok, err := c.l2.Get(ctx, qk)
	if err != nil {
		c.log.Debug("L2 read failed", Fields{"key": qk, "err": err})
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return []byte(v), true
}

// Invalidate removes a single known item from both tiers under the current
// generation. Use when one identifiable thing changed.
func (c *Cache) Invalidate(ctx context.Context, d Domain, key string) {
	c.strategy(d)
	if !c.enabled {
		return
	}
	c.stats.Touch()

	gen := c.gens.current(ctx, d)
	qk := keys.Data(string(d), gen, key)

	c.l1.Delete(string(d), qk)
	if c.l2 != nil {
		if err := c.l2.Del(ctx, qk); err != nil {
			c.log.Debug("L2 delete failed", Fields{"domain": d, "key": key, "err": err})
		}
	}
	c.stats.Invalidation(string(d))
}

// InvalidateDomain clears the domain's L1 store and bumps its generation,
// retiring every key ever written in the domain in O(1). Existing L2
// entries are left to TTL-expire: their qualified keys will never be built
// again. Use when an unbounded or unknown set of keys changed.
func (c *Cache) InvalidateDomain(ctx context.Context, d Domain) {
	c.strategy(d)
	if !c.enabled {
		return
	}
	c.stats.Touch()

	c.l1.Clear(string(d))
	newGen := c.gens.bump(ctx, d)
	c.stats.Invalidation(string(d))
	c.log.Debug("domain invalidated", Fields{"domain": d, "gen": newGen})
}

// Metrics returns a read-only snapshot of the domain's counters.
func (c *Cache) Metrics(d Domain) metrics.Snapshot {
	c.strategy(d)
	return c.stats.Snapshot(string(d))
}

// Close stops the metrics flusher and closes the remote store. Idempotent.
func (c *Cache) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		c.stats.Close()
		if c.l2 != nil {
			err = c.l2.Close(ctx)
		}
	})
	return err
}
