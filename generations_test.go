package tiercache

import (
	"context"
	"sync"
	"testing"
)

func TestCurrentDefaultsToZeroWithoutRemote(t *testing.T) {
	r := newVersionRegistry(nil, NopLogger{})
	if g := r.current(context.Background(), "author"); g != 0 {
		t.Fatalf("gen = %d, want 0", g)
	}
}

func TestBumpWithoutRemoteIncrementsLocally(t *testing.T) {
	ctx := context.Background()
	r := newVersionRegistry(nil, NopLogger{})

	if g := r.bump(ctx, "author"); g != 1 {
		t.Fatalf("first bump = %d, want 1", g)
	}
	if g := r.bump(ctx, "author"); g != 2 {
		t.Fatalf("second bump = %d, want 2", g)
	}
	if g := r.current(ctx, "author"); g != 2 {
		t.Fatalf("current after bumps = %d, want 2", g)
	}
}

func TestBumpMirrorsRemoteCounter(t *testing.T) {
	ctx := context.Background()
	mr := newMemRemote()
	mr.counters["v1:author:__ver__"] = 41 // other processes bumped before us
	r := newVersionRegistry(mr, NopLogger{})

	if g := r.bump(ctx, "author"); g != 42 {
		t.Fatalf("bump = %d, want 42", g)
	}
	if g := r.current(ctx, "author"); g != 42 {
		t.Fatalf("current = %d, want the mirrored remote value", g)
	}
}

func TestConcurrentFirstReadsConverge(t *testing.T) {
	ctx := context.Background()
	mr := newMemRemote()
	mr.data["v1:author:__ver__"] = "7"
	r := newVersionRegistry(mr, NopLogger{})

	var wg sync.WaitGroup
	out := make([]int64, 16)
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = r.current(ctx, "author")
		}(i)
	}
	wg.Wait()

	for i, g := range out {
		if g != 7 {
			t.Fatalf("reader %d saw gen %d, want 7", i, g)
		}
	}
}

func TestDomainsHaveIndependentGenerations(t *testing.T) {
	ctx := context.Background()
	r := newVersionRegistry(nil, NopLogger{})

	r.bump(ctx, "author")
	if g := r.current(ctx, "article-list"); g != 0 {
		t.Fatalf("bump of one domain leaked into another: %d", g)
	}
}
