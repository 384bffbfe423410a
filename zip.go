package repdata

import "golang.org/x/exp/constraints"

// Integers travel zigzagged and little-endian with trailing zero bytes
// stripped, so small magnitudes of either sign stay short. A zero is an
// empty byte string.

func ZigZag[T constraints.Signed](i T) uint64 {
	return uint64(i)<<1 ^ uint64(int64(i)>>63)
}

func ZagZig(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

func ZipUint64(v uint64) (zip []byte) {
	for v != 0 {
		zip = append(zip, byte(v))
		v >>= 8
	}
	return
}

func UnzipUint64(zip []byte) (v uint64) {
	for i := len(zip) - 1; i >= 0; i-- {
		v = v<<8 | uint64(zip[i])
	}
	return
}

func ZipZagInt64(i int64) []byte {
	return ZipUint64(ZigZag(i))
}

func UnzipZagInt64(zip []byte) int64 {
	return ZagZig(UnzipUint64(zip))
}
