package tiercache

import (
	"context"
	"strconv"
	"sync"

	"github.com/unkn0wn-root/tiercache/internal/keys"
	"github.com/unkn0wn-root/tiercache/remote"
)

// versionRegistry gives every domain a cheap, globally visible epoch.
// The remote counter is read at most once per domain per process and cached;
// bumps go through the remote atomic increment and are mirrored locally
// immediately, so an invalidation is effective for this process at once and
// for other processes on their next counter read.
type versionRegistry struct {
	mu   sync.Mutex
	gens map[Domain]int64

	remote remote.Store // nil => process-local generations only
	log    Logger
}

func newVersionRegistry(r remote.Store, log Logger) *versionRegistry {
	return &versionRegistry{
		gens:   make(map[Domain]int64),
		remote: r,
		log:    log,
	}
}

// current returns the domain's generation, fetching it from the remote
// counter on first use. Missing, unreadable, or unreachable counters default
// to 0. Two concurrent first reads may both hit the remote; that is
// idempotent and not worth coordinating.
func (r *versionRegistry) current(ctx context.Context, d Domain) int64 {
	r.mu.Lock()
	g, ok := r.gens[d]
	r.mu.Unlock()
	if ok {
		return g
	}

	var fetched int64
	if r.remote != nil {
		v, ok, err := r.remote.Get(ctx, keys.Version(string(d)))
		switch {
		case err != nil:
			r.log.Warn("generation read failed, defaulting to 0", Fields{"domain": d, "err": err})
		case ok:
			n, perr := strconv.ParseInt(v, 10, 64)
			if perr != nil || n < 0 {
				r.log.Warn("generation counter not numeric, defaulting to 0", Fields{"domain": d, "value": v})
			} else {
				fetched = n
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// a concurrent bump may have advanced the local cache while we were on
	// the network; that value wins
	if g, ok := r.gens[d]; ok {
		return g
	}
	r.gens[d] = fetched
	return fetched
}

// bump advances the domain's generation. The remote counter is the source
// of truth when reachable; whatever it returns becomes the cached value.
// When it is not, the cached generation is incremented locally so
// invalidation still takes effect for this process.
func (r *versionRegistry) bump(ctx context.Context, d Domain) int64 {
	if r.remote != nil {
		n, err := r.remote.Incr(ctx, keys.Version(string(d)))
		if err == nil {
			r.mu.Lock()
			r.gens[d] = n
			r.mu.Unlock()
			return n
		}
		r.log.Warn("generation bump failed remotely, advancing locally", Fields{"domain": d, "err": err})
	}

	r.mu.Lock()
	g := r.gens[d] + 1
	r.gens[d] = g
	r.mu.Unlock()
	return g
}
