// Package codec (de)serializes cached values to the bytes both tiers store.
//
// JSON is the default and the only codec whose output is safe on the REST
// gateway transport, which carries values inside JSON strings; pick CBOR,
// Msgpack, or Protobuf only for fleets on the direct Redis store, and use
// the same codec on every process sharing a remote tier.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
