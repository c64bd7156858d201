// Package local implements the in-process cache tier: one bounded byte store
// per domain with FIFO eviction and lazy TTL expiry.
//
// FIFO rather than LRU keeps eviction O(1) without tracking access recency;
// with the short TTLs in play entries mostly expire before they would need
// evicting anyway.
package local

import (
	"container/list"
	"sync"
	"time"
)

// Config is the slice of a domain's strategy the local tier acts on.
type Config struct {
	// TTL is the entry lifetime. 0 disables the store for the domain:
	// every Set is a no-op and every Get a miss.
	TTL time.Duration
	// MaxEntries bounds the store; at capacity the oldest-inserted entry is
	// evicted before a new key is admitted. <= 0 means unbounded.
	MaxEntries int
	// MaxValueSize, when > 0, rejects values larger than this many bytes.
	MaxValueSize int
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

type domainStore struct {
	cfg     Config
	entries map[string]*list.Element
	order   *list.List // front = oldest inserted
}

// Store holds the per-domain L1 stores. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	cfgs    map[string]Config
	domains map[string]*domainStore
}

// New builds a Store from per-domain configs. The now func is the clock used
// for expiry; pass nil for time.Now.
func New(cfgs map[string]Config, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:     now,
		cfgs:    cfgs,
		domains: make(map[string]*domainStore, len(cfgs)),
	}
}

func (s *Store) domain(d string) *domainStore {
	ds, ok := s.domains[d]
	if !ok {
		ds = &domainStore{
			cfg:     s.cfgs[d],
			entries: make(map[string]*list.Element),
			order:   list.New(),
		}
		s.domains[d] = ds
	}
	return ds
}

// Get returns the stored value for key, or a miss. Expired entries are
// deleted on access; there is no background sweep.
func (s *Store) Get(domain, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := s.domain(domain)
	el, ok := ds.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if !e.expiresAt.After(s.now()) {
		ds.order.Remove(el)
		delete(ds.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set inserts or overwrites key. No-op when the domain's TTL is 0 or the
// value exceeds MaxValueSize. An overwrite refreshes the TTL but keeps the
// key's original position in the eviction order.
func (s *Store) Set(domain, key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := s.domain(domain)
	if ds.cfg.TTL <= 0 {
		return
	}
	if ds.cfg.MaxValueSize > 0 && len(value) > ds.cfg.MaxValueSize {
		return
	}

	expiresAt := s.now().Add(ds.cfg.TTL)
	if el, ok := ds.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		return
	}

	if ds.cfg.MaxEntries > 0 {
		for ds.order.Len() >= ds.cfg.MaxEntries {
			oldest := ds.order.Front()
			ds.order.Remove(oldest)
			delete(ds.entries, oldest.Value.(*entry).key)
		}
	}
	ds.entries[key] = ds.order.PushBack(&entry{key: key, value: value, expiresAt: expiresAt})
}

// Delete removes key unconditionally.
func (s *Store) Delete(domain, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := s.domain(domain)
	if el, ok := ds.entries[key]; ok {
		ds.order.Remove(el)
		delete(ds.entries, key)
	}
}

// Clear drops the whole per-domain store. Used by domain-wide invalidation.
func (s *Store) Clear(domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds, ok := s.domains[domain]; ok {
		ds.entries = make(map[string]*list.Element)
		ds.order.Init()
	}
}

// Len reports the number of live entries in a domain, expired ones included
// until their lazy removal.
func (s *Store) Len(domain string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds, ok := s.domains[domain]; ok {
		return ds.order.Len()
	}
	return 0
}
