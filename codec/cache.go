package codec

import (
	"bytes"

	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached wraps a codec with a decode-side LRU. Hosts iterating map
// keys decode the same handful of canonical strings over and over;
// hashing the bytes is much cheaper than re-parsing them.
type Cached struct {
	inner Codec
	lru   *lru.Cache[uint64, cacheEntry]
}

type cacheEntry struct {
	raw []byte
	val any
}

func NewCached(inner Codec, size int) (*Cached, error) {
	l, err := lru.New[uint64, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, lru: l}, nil
}

func (c *Cached) Encode(key any) ([]byte, error) {
	return c.inner.Encode(key)
}

func (c *Cached) Decode(data []byte) (any, error) {
	h := xxhash.Sum64(data)
	if e, ok := c.lru.Get(h); ok && bytes.Equal(e.raw, data) {
		return e.val, nil
	}
	v, err := c.inner.Decode(data)
	if err != nil {
		return nil, err
	}
	c.lru.Add(h, cacheEntry{raw: bytes.Clone(data), val: v})
	return v, nil
}
