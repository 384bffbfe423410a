package repdata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZigZag(t *testing.T) {
	assert.Equal(t, uint64(0), ZigZag(int64(0)))
	assert.Equal(t, uint64(1), ZigZag(int64(-1)))
	assert.Equal(t, uint64(2), ZigZag(int64(1)))
	for _, i := range []int64{0, 1, -1, 127, -128, 1 << 40, math.MinInt64, math.MaxInt64} {
		assert.Equal(t, i, ZagZig(ZigZag(i)))
	}
}

func TestZipUint64(t *testing.T) {
	assert.Empty(t, ZipUint64(0))
	assert.Equal(t, []byte{5}, ZipUint64(5))
	assert.Equal(t, []byte{0, 1}, ZipUint64(256))
	for _, u := range []uint64{0, 1, 255, 256, 1 << 32, math.MaxUint64} {
		assert.Equal(t, u, UnzipUint64(ZipUint64(u)))
	}
}

func TestZipZagInt64(t *testing.T) {
	assert.Empty(t, ZipZagInt64(0))
	for _, i := range []int64{0, 3, -3, 1 << 50, math.MinInt64} {
		assert.Equal(t, i, UnzipZagInt64(ZipZagInt64(i)))
	}
}
