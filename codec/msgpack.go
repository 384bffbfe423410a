package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack encodes structured keys (records, maps, primitives) into
// canonical msgpack: map keys sorted, compact ints and floats. Two
// logically equal keys encode byte-identically, which is what the
// containers need from a key's wire form.
type MsgPack struct{}

func (MsgPack) Encode(key any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)
	enc.UseCompactFloats(true)
	if err := enc.Encode(key); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgPack) Decode(data []byte) (any, error) {
	var v any
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
