// Package codec normalizes application-level keys and set elements
// into a canonical byte form. The replicated containers treat the
// bytes as opaque identity: equal logical keys must produce identical
// encodings, and that is the whole contract.
package codec

import "errors"

var ErrKeyType = errors.New("codec: unsupported key type")

type Codec interface {
	Encode(key any) ([]byte, error)
	Decode(data []byte) (any, error)
}

// Identity passes string and []byte keys through untouched and decodes
// to string. Enough for tests and for hosts with flat key spaces.
type Identity struct{}

func (Identity) Encode(key any) ([]byte, error) {
	switch k := key.(type) {
	case string:
		return []byte(k), nil
	case []byte:
		return k, nil
	default:
		return nil, ErrKeyType
	}
}

func (Identity) Decode(data []byte) (any, error) {
	return string(data), nil
}
