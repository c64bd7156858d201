package codec

import "encoding/json"

// JSON is the default codec: textual output, round-trip fidelity for
// primitives, plain structs, maps, and slices. Values containing funcs,
// channels, or cycles do not encode, and Set surfaces that error.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
