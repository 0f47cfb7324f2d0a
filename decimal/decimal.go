// Package decimal converts the big-endian two's-complement byte arrays
// parquet uses for fixed-length decimal storage into arrow 128-bit and
// 256-bit decimal representations.
package decimal

import (
	"encoding/binary"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/decimal256"
)

// MaxInt128Width is the widest byte array representable as a 128-bit decimal.
const MaxInt128Width = 16

// MaxInt256Width is the widest byte array representable as a 256-bit decimal.
const MaxInt256Width = 32

// Int128FromBigEndian decodes a big-endian two's-complement integer of up to
// 16 bytes, sign-extending from the width of b to the full 128 bits. It
// panics if b is wider than 16 bytes; callers are expected to have rejected
// such widths already.
func Int128FromBigEndian(b []byte) decimal128.Num {
	if len(b) > MaxInt128Width {
		panic(fmt.Sprintf("decimal: %d byte value exceeds 128 bits", len(b)))
	}
	var buf [MaxInt128Width]byte
	extend(buf[:], b)
	return decimal128.New(
		int64(binary.BigEndian.Uint64(buf[0:8])),
		binary.BigEndian.Uint64(buf[8:16]),
	)
}

// Int256FromBigEndian decodes a big-endian two's-complement integer of up to
// 32 bytes, sign-extending from the width of b to the full 256 bits. It
// panics if b is wider than 32 bytes.
func Int256FromBigEndian(b []byte) decimal256.Num {
	if len(b) > MaxInt256Width {
		panic(fmt.Sprintf("decimal: %d byte value exceeds 256 bits", len(b)))
	}
	var buf [MaxInt256Width]byte
	extend(buf[:], b)
	return decimal256.New(
		binary.BigEndian.Uint64(buf[0:8]),
		binary.BigEndian.Uint64(buf[8:16]),
		binary.BigEndian.Uint64(buf[16:24]),
		binary.BigEndian.Uint64(buf[24:32]),
	)
}

// extend writes b right-aligned into dst, filling the leading bytes with the
// sign extension of b's most significant bit. An empty b decodes as zero.
func extend(dst, b []byte) {
	fill := byte(0x00)
	if len(b) > 0 && b[0]&0x80 != 0 {
		fill = 0xFF
	}
	n := len(dst) - len(b)
	for i := 0; i < n; i++ {
		dst[i] = fill
	}
	copy(dst[n:], b)
}
