package decimal

import (
	"math"
	"math/big"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/decimal256"
	"github.com/stretchr/testify/require"
)

// bigEndianBytes encodes v as a minimal big-endian two's-complement byte
// array, the layout parquet uses for fixed-length decimal storage.
func bigEndianBytes(t *testing.T, v *big.Int, width int) []byte {
	t.Helper()
	b := make([]byte, width)
	if v.Sign() < 0 {
		// Two's complement within the given width.
		v = new(big.Int).Add(v, new(big.Int).Lsh(big.NewInt(1), uint(width*8)))
	}
	v.FillBytes(b)
	return b
}

func TestInt128FromBigEndian(t *testing.T) {
	for _, tc := range []struct {
		name  string
		value *big.Int
		width int
	}{
		{name: "zero", value: big.NewInt(0), width: 1},
		{name: "one", value: big.NewInt(1), width: 1},
		{name: "minus one", value: big.NewInt(-1), width: 1},
		{name: "minus one wide", value: big.NewInt(-1), width: 16},
		{name: "max int64", value: big.NewInt(math.MaxInt64), width: 8},
		{name: "min int64", value: big.NewInt(math.MinInt64), width: 8},
		{name: "needs sign extension", value: big.NewInt(-1234567), width: 3},
		{name: "max int128", value: maxForWidth(16), width: 16},
		{name: "min int128", value: minForWidth(16), width: 16},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Int128FromBigEndian(bigEndianBytes(t, tc.value, tc.width))
			requireBigEqual(t, tc.value, got.BigInt())
		})
	}
}

func TestInt128MinBoundary(t *testing.T) {
	// -2^127: sign bit set, everything else zero.
	b := make([]byte, 16)
	b[0] = 0x80
	require.Equal(t, decimal128.New(math.MinInt64, 0), Int128FromBigEndian(b))
}

func TestInt256MinBoundary(t *testing.T) {
	// -2^255: sign bit of the most significant word set.
	b := make([]byte, 32)
	b[0] = 0x80
	require.Equal(t, decimal256.New(1<<63, 0, 0, 0), Int256FromBigEndian(b))
}

func TestInt256FromBigEndian(t *testing.T) {
	for _, tc := range []struct {
		name  string
		value *big.Int
		width int
	}{
		{name: "zero", value: big.NewInt(0), width: 1},
		{name: "minus one wide", value: big.NewInt(-1), width: 32},
		{name: "beyond 128 bits", value: new(big.Int).Lsh(big.NewInt(1), 200), width: 26},
		{name: "negative beyond 128 bits", value: new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 200)), width: 26},
		{name: "max int256", value: maxForWidth(32), width: 32},
		{name: "min int256", value: minForWidth(32), width: 32},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Int256FromBigEndian(bigEndianBytes(t, tc.value, tc.width))
			requireBigEqual(t, tc.value, got.BigInt())
		})
	}
}

func TestEveryWidthRoundTrips(t *testing.T) {
	for width := 1; width <= MaxInt128Width; width++ {
		v := minForWidth(width)
		requireBigEqual(t, v, Int128FromBigEndian(bigEndianBytes(t, v, width)).BigInt())
		v = maxForWidth(width)
		requireBigEqual(t, v, Int128FromBigEndian(bigEndianBytes(t, v, width)).BigInt())
	}
	for width := 1; width <= MaxInt256Width; width++ {
		v := minForWidth(width)
		requireBigEqual(t, v, Int256FromBigEndian(bigEndianBytes(t, v, width)).BigInt())
		v = maxForWidth(width)
		requireBigEqual(t, v, Int256FromBigEndian(bigEndianBytes(t, v, width)).BigInt())
	}
}

// requireBigEqual compares through big.Int so the boundary values the
// decimal FromBigInt constructors reject (-2^127, -2^255) stay testable.
func requireBigEqual(t *testing.T, want, got *big.Int) {
	t.Helper()
	require.Zero(t, want.Cmp(got), "want %s, got %s", want, got)
}

func TestEmptyDecodesAsZero(t *testing.T) {
	require.Equal(t, decimal128.FromI64(0), Int128FromBigEndian(nil))
	require.Equal(t, decimal256.FromI64(0), Int256FromBigEndian(nil))
}

func TestOverWidthPanics(t *testing.T) {
	require.Panics(t, func() { Int128FromBigEndian(make([]byte, 17)) })
	require.Panics(t, func() { Int256FromBigEndian(make([]byte, 33)) })
}

// maxForWidth is the largest signed integer representable in width bytes.
func maxForWidth(width int) *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width*8-1)), big.NewInt(1))
}

// minForWidth is the smallest signed integer representable in width bytes.
func minForWidth(width int) *big.Int {
	return new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(width*8-1)))
}
