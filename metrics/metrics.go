// Package metrics keeps per-domain cache counters. Pure bookkeeping: it is
// never on the correctness path and nothing in the cache consults it.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is a read-only copy of one domain's counters, safe to hand to an
// operational dashboard. Counters are monotonic for the life of the process.
type Snapshot struct {
	L1Hits        uint64 `json:"l1_hits"`
	L1Misses      uint64 `json:"l1_misses"`
	L2Hits        uint64 `json:"l2_hits"`
	L2Misses      uint64 `json:"l2_misses"`
	Sets          uint64 `json:"sets"`
	Invalidations uint64 `json:"invalidations"`
}

func (s Snapshot) total() uint64 {
	return s.L1Hits + s.L1Misses + s.L2Hits + s.L2Misses + s.Sets + s.Invalidations
}

type counters struct {
	l1Hits, l1Misses uint64
	l2Hits, l2Misses uint64
	sets, invals     uint64
}

func (c *counters) snapshot() Snapshot {
	return Snapshot{
		L1Hits:        atomic.LoadUint64(&c.l1Hits),
		L1Misses:      atomic.LoadUint64(&c.l1Misses),
		L2Hits:        atomic.LoadUint64(&c.l2Hits),
		L2Misses:      atomic.LoadUint64(&c.l2Misses),
		Sets:          atomic.LoadUint64(&c.sets),
		Invalidations: atomic.LoadUint64(&c.invals),
	}
}

// FlushFunc receives one summary per domain with nonzero activity.
type FlushFunc func(domain string, s Snapshot)

// Collector maintains one counter record per domain, created lazily on
// first access, and a background flusher started lazily on first use.
type Collector struct {
	mu      sync.RWMutex
	domains map[string]*counters

	interval time.Duration
	onFlush  FlushFunc

	startOnce sync.Once
	closeOnce sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// New builds a Collector. onFlush may be nil, in which case the background
// flusher never starts and the collector only serves snapshots.
func New(interval time.Duration, onFlush FlushFunc) *Collector {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Collector{
		domains:  make(map[string]*counters),
		interval: interval,
		onFlush:  onFlush,
		stopCh:   make(chan struct{}),
	}
}

func (c *Collector) domain(d string) *counters {
	c.mu.RLock()
	ctr, ok := c.domains[d]
	c.mu.RUnlock()
	if ok {
		return ctr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctr, ok = c.domains[d]; ok {
		return ctr
	}
	ctr = &counters{}
	c.domains[d] = ctr
	return ctr
}

func (c *Collector) L1Hit(d string)        { atomic.AddUint64(&c.domain(d).l1Hits, 1) }
func (c *Collector) L1Miss(d string)       { atomic.AddUint64(&c.domain(d).l1Misses, 1) }
func (c *Collector) L2Hit(d string)        { atomic.AddUint64(&c.domain(d).l2Hits, 1) }
func (c *Collector) L2Miss(d string)       { atomic.AddUint64(&c.domain(d).l2Misses, 1) }
func (c *Collector) Set(d string)          { atomic.AddUint64(&c.domain(d).sets, 1) }
func (c *Collector) Invalidation(d string) { atomic.AddUint64(&c.domain(d).invals, 1) }

// Snapshot returns a copy of the domain's counters; an untouched domain
// reads as all zeros.
func (c *Collector) Snapshot(d string) Snapshot {
	c.mu.RLock()
	ctr, ok := c.domains[d]
	c.mu.RUnlock()
	if !ok {
		return Snapshot{}
	}
	return ctr.snapshot()
}

// Touch starts the background flusher on first call. Subsequent calls are
// free. The flusher goroutine never keeps a shutdown waiting: Close stops
// it, and an ignored Close just leaves a parked goroutine behind.
func (c *Collector) Touch() {
	if c.onFlush == nil {
		return
	}
	c.startOnce.Do(func() {
		c.wg.Add(1)
		go c.flushLoop()
	})
}

func (c *Collector) flushLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Collector) flush() {
	c.mu.RLock()
	names := make([]string, 0, len(c.domains))
	for d := range c.domains {
		names = append(names, d)
	}
	c.mu.RUnlock()
	sort.Strings(names)

	for _, d := range names {
		s := c.Snapshot(d)
		if s.total() == 0 {
			continue
		}
		c.onFlush(d, s)
	}
}

// Close stops the flusher. Idempotent.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCh)
	})
	c.wg.Wait()
}
