package tiercache

import (
	"context"

	"github.com/unkn0wn-root/tiercache/codec"
)

// View is a typed handle onto one domain with an explicit codec, for callers
// that want CBOR/msgpack/protobuf instead of the JSON wire default. Every
// process sharing a remote tier must use the same codec per domain, and
// binary codecs belong on the direct Redis store (the REST gateway carries
// values inside JSON strings).
type View[V any] struct {
	c     *Cache
	d     Domain
	codec codec.Codec[V]
}

// NewView binds a codec to a domain. Panics if the domain is not in the
// cache's strategy table, same as any other operation would.
func NewView[V any](c *Cache, d Domain, cd codec.Codec[V]) View[V] {
	c.strategy(d)
	return View[V]{c: c, d: d, codec: cd}
}

func (v View[V]) Get(ctx context.Context, key string) (V, bool) {
	return getValue(ctx, v.c, v.d, key, v.codec)
}

func (v View[V]) Set(ctx context.Context, key string, value V) error {
	return setValue(ctx, v.c, v.d, key, value, v.codec)
}

func (v View[V]) Invalidate(ctx context.Context, key string) {
	v.c.Invalidate(ctx, v.d, key)
}
