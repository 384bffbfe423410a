package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	c := Identity{}
	b, err := c.Encode("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("key"), b)

	b, err = c.Encode([]byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)

	_, err = c.Encode(42)
	assert.ErrorIs(t, err, ErrKeyType)

	v, err := c.Decode([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, "key", v)
}

func TestMsgPackCanonical(t *testing.T) {
	c := MsgPack{}

	// equal maps encode byte-identically regardless of Go's map order
	a, err := c.Encode(map[string]any{"x": 1, "y": 2, "z": 3})
	require.NoError(t, err)
	for i := 0; i < 16; i++ {
		b, err := c.Encode(map[string]any{"z": 3, "y": 2, "x": 1})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}

	b, err := c.Encode("hello")
	require.NoError(t, err)
	v, err := c.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestMsgPackCompactInts(t *testing.T) {
	c := MsgPack{}
	small, err := c.Encode(int64(7))
	require.NoError(t, err)
	assert.Len(t, small, 1)

	v, err := c.Decode(small)
	require.NoError(t, err)
	assert.EqualValues(t, 7, v)
}

func TestCached(t *testing.T) {
	c, err := NewCached(MsgPack{}, 8)
	require.NoError(t, err)

	raw, err := c.Encode("cached")
	require.NoError(t, err)

	v1, err := c.Decode(raw)
	require.NoError(t, err)
	v2, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "cached", v1)
	assert.Equal(t, v1, v2)

	// a mutation of the caller's buffer must not poison the cache
	buf := append([]byte(nil), raw...)
	v3, err := c.Decode(buf)
	require.NoError(t, err)
	buf[0] ^= 0xff
	v4, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, v3, v4)

	_, err = c.Decode([]byte{0xc1}) // reserved msgpack byte
	assert.Error(t, err)
}
