// Package keys builds the storage keys shared by both cache tiers. The
// formats are part of the wire contract: any process sharing the same remote
// store must produce identical bytes for the same domain/generation/key.
package keys

import "strconv"

const prefix = "v1:"

// Version returns the key holding a domain's generation counter.
func Version(domain string) string {
	return prefix + domain + ":__ver__"
}

// Data returns the fully-qualified key for a cached entry. Two data keys are
// equal iff domain, generation, and caller key are all equal, so bumping the
// generation retires every previously issued key in the domain at once.
func Data(domain string, gen int64, key string) string {
	return prefix + domain + ":v" + strconv.FormatInt(gen, 10) + ":" + key
}
