package tiercache

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Domain is an opaque label partitioning the cache keyspace. Each domain has
// exactly one Strategy and one generation counter. The set of valid domains
// is fixed at construction; operations on an unregistered domain panic.
type Domain string

// Strategy is the immutable per-domain cache policy.
type Strategy struct {
	// L1TTL is the in-process entry lifetime. 0 disables L1 for the domain.
	L1TTL time.Duration
	// L2TTL is the remote entry lifetime. 0 disables L2 for the domain.
	L2TTL time.Duration
	// L1MaxEntries bounds the per-domain L1 store; when full, the
	// oldest-inserted entry is evicted (FIFO). <= 0 means unbounded.
	L1MaxEntries int
	// L1MaxValueSize, when > 0, keeps encoded values larger than this many
	// bytes out of L1. Oversized values still go to L2.
	L1MaxValueSize int
}

// DefaultStrategies returns the strategy table for the content-serving
// domains the surrounding application caches: author lookups, single
// articles, paginated listings, rendered markdown, and site settings.
func DefaultStrategies() map[Domain]Strategy {
	return map[Domain]Strategy{
		"author":       {L1TTL: 5 * time.Minute, L2TTL: 30 * time.Minute, L1MaxEntries: 500},
		"article":      {L1TTL: time.Minute, L2TTL: 10 * time.Minute, L1MaxEntries: 1000},
		"article-list": {L1TTL: 30 * time.Second, L2TTL: 5 * time.Minute, L1MaxEntries: 200},
		"markdown":     {L1TTL: 10 * time.Minute, L2TTL: time.Hour, L1MaxEntries: 300, L1MaxValueSize: 256 << 10},
		"settings":     {L1TTL: time.Minute, L2TTL: 15 * time.Minute, L1MaxEntries: 50},
	}
}

type strategyFile struct {
	Domains map[string]strategyEntry `yaml:"domains"`
}

type strategyEntry struct {
	L1TTL          string `yaml:"l1_ttl"`
	L2TTL          string `yaml:"l2_ttl"`
	L1MaxEntries   int    `yaml:"l1_max_entries"`
	L1MaxValueSize int    `yaml:"l1_max_value_size"`
}

// LoadStrategies reads a YAML strategy table so deployments can tune TTLs
// and capacities without recompiling. TTLs use Go duration syntax ("30s",
// "5m"); an omitted TTL is 0, i.e. that tier is disabled for the domain.
//
//	domains:
//	  author:
//	    l1_ttl: 5m
//	    l2_ttl: 30m
//	    l1_max_entries: 500
func LoadStrategies(path string) (map[Domain]Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading strategy file: %w", err)
	}

	var f strategyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing strategy YAML: %w", err)
	}
	if len(f.Domains) == 0 {
		return nil, fmt.Errorf("strategy file %s: no domains", path)
	}

	out := make(map[Domain]Strategy, len(f.Domains))
	for name, e := range f.Domains {
		s, err := e.toStrategy()
		if err != nil {
			return nil, fmt.Errorf("strategy for domain %q: %w", name, err)
		}
		out[Domain(name)] = s
	}
	return out, nil
}

func (e strategyEntry) toStrategy() (Strategy, error) {
	var s Strategy
	var err error
	if e.L1TTL != "" {
		if s.L1TTL, err = time.ParseDuration(e.L1TTL); err != nil {
			return s, fmt.Errorf("invalid l1_ttl: %w", err)
		}
	}
	if e.L2TTL != "" {
		if s.L2TTL, err = time.ParseDuration(e.L2TTL); err != nil {
			return s, fmt.Errorf("invalid l2_ttl: %w", err)
		}
	}
	if s.L1TTL < 0 || s.L2TTL < 0 {
		return s, fmt.Errorf("negative TTL")
	}
	s.L1MaxEntries = e.L1MaxEntries
	s.L1MaxValueSize = e.L1MaxValueSize
	return s, nil
}
