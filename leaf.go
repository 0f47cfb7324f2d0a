package nestedarrow

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/decimal256"
	"github.com/parquet-go/parquet-go"

	"github.com/polarsignals/nestedarrow/decimal"
	"github.com/polarsignals/nestedarrow/nested"
)

// decodeLeaf materializes one primitive leaf column as an arrow array of the
// declared logical type, consuming the leaf-level shape entry and leaving
// the ancestor entries for the caller.
func (r *Reconstructor) decodeLeaf(stream *nested.Stream, typ parquet.Type, dt arrow.DataType, init []nested.Init) (*nested.State, arrow.Array, error) {
	state, leaves, err := nested.Decode(stream, init, r.Filter)
	if err != nil {
		return nil, nil, err
	}
	entry, ok := state.Pop()
	if !ok {
		return nil, nil, fmt.Errorf("nestedarrow: missing leaf-level shape entry for %s", dt)
	}

	b := array.NewBuilder(r.mem(), dt)
	defer b.Release()
	b.Reserve(len(leaves))

	for i, v := range leaves {
		if !entry.Validity[i] {
			b.AppendNull()
			continue
		}
		if err := appendLeafValue(b, typ, dt, v); err != nil {
			return nil, nil, err
		}
	}
	return state, b.NewArray(), nil
}

// appendLeafValue casts one stored value into the declared logical type.
// Same-width unsigned logical types reinterpret the stored bit pattern;
// widened storage is narrowed by value and fails on overflow rather than
// saturating or wrapping.
func appendLeafValue(b array.Builder, typ parquet.Type, dt arrow.DataType, v parquet.Value) error {
	switch b := b.(type) {
	case *array.NullBuilder:
		b.AppendNull()
	case *array.BooleanBuilder:
		b.Append(v.Boolean())
	case *array.Int8Builder:
		x, err := narrowStored(v, typ, math.MinInt8, math.MaxInt8, dt)
		if err != nil {
			return err
		}
		b.Append(int8(x))
	case *array.Int16Builder:
		x, err := narrowStored(v, typ, math.MinInt16, math.MaxInt16, dt)
		if err != nil {
			return err
		}
		b.Append(int16(x))
	case *array.Int32Builder:
		b.Append(v.Int32())
	case *array.Int64Builder:
		b.Append(v.Int64())
	case *array.Uint8Builder:
		x, err := narrowStored(v, typ, 0, math.MaxUint8, dt)
		if err != nil {
			return err
		}
		b.Append(uint8(x))
	case *array.Uint16Builder:
		x, err := narrowStored(v, typ, 0, math.MaxUint16, dt)
		if err != nil {
			return err
		}
		b.Append(uint16(x))
	case *array.Uint32Builder:
		if typ.Kind() == parquet.Int32 {
			// Same width: the stored int32 is the unsigned bit pattern.
			b.Append(uint32(v.Int32()))
			return nil
		}
		// Some implementations write unsigned 32-bit values into int64.
		x, err := narrowStored(v, typ, 0, math.MaxUint32, dt)
		if err != nil {
			return err
		}
		b.Append(uint32(x))
	case *array.Uint64Builder:
		b.Append(uint64(v.Int64()))
	case *array.Float32Builder:
		b.Append(v.Float())
	case *array.Float64Builder:
		b.Append(v.Double())
	case *array.StringBuilder:
		b.Append(string(v.ByteArray()))
	case *array.LargeStringBuilder:
		b.Append(string(v.ByteArray()))
	case *array.StringViewBuilder:
		b.Append(string(v.ByteArray()))
	case *array.BinaryBuilder:
		b.Append(v.ByteArray())
	case *array.BinaryViewBuilder:
		b.Append(v.ByteArray())
	default:
		return &UnsupportedTypeError{Type: dt}
	}
	return nil
}

func narrowStored(v parquet.Value, typ parquet.Type, lo, hi int64, dt arrow.DataType) (int64, error) {
	var x int64
	if typ.Kind() == parquet.Int32 {
		x = int64(v.Int32())
	} else {
		x = v.Int64()
	}
	if x < lo || x > hi {
		return 0, &ValueRangeError{Value: x, Target: dt}
	}
	return x, nil
}

func (r *Reconstructor) decodeDecimal128(stream *nested.Stream, typ parquet.Type, dt *arrow.Decimal128Type, init []nested.Init) (*nested.State, arrow.Array, error) {
	var fromValue func(parquet.Value) decimal128.Num

	switch typ.Kind() {
	case parquet.Int32:
		fromValue = func(v parquet.Value) decimal128.Num { return decimal128.FromI64(int64(v.Int32())) }
	case parquet.Int64:
		fromValue = func(v parquet.Value) decimal128.Num { return decimal128.FromI64(v.Int64()) }
	case parquet.FixedLenByteArray:
		if size := typ.Length(); size > decimal.MaxInt128Width {
			return nil, nil, &DecimalWidthError{Width: size, Max: decimal.MaxInt128Width}
		}
		fromValue = func(v parquet.Value) decimal128.Num { return decimal.Int128FromBigEndian(v.ByteArray()) }
	default:
		return nil, nil, &PhysicalTypeError{Logical: dt, Physical: typ}
	}

	state, leaves, err := nested.Decode(stream, init, r.Filter)
	if err != nil {
		return nil, nil, err
	}
	entry, ok := state.Pop()
	if !ok {
		return nil, nil, fmt.Errorf("nestedarrow: missing leaf-level shape entry for %s", dt)
	}

	b := array.NewDecimal128Builder(r.mem(), dt)
	defer b.Release()
	b.Reserve(len(leaves))
	for i, v := range leaves {
		if !entry.Validity[i] {
			b.AppendNull()
			continue
		}
		b.Append(fromValue(v))
	}
	return state, b.NewArray(), nil
}

func (r *Reconstructor) decodeDecimal256(stream *nested.Stream, typ parquet.Type, dt *arrow.Decimal256Type, init []nested.Init) (*nested.State, arrow.Array, error) {
	var fromValue func(parquet.Value) decimal256.Num

	switch typ.Kind() {
	case parquet.Int32:
		fromValue = func(v parquet.Value) decimal256.Num { return decimal256.FromI64(int64(v.Int32())) }
	case parquet.Int64:
		fromValue = func(v parquet.Value) decimal256.Num { return decimal256.FromI64(v.Int64()) }
	case parquet.FixedLenByteArray:
		switch size := typ.Length(); {
		case size <= decimal.MaxInt128Width:
			fromValue = func(v parquet.Value) decimal256.Num {
				return decimal256.FromDecimal128(decimal.Int128FromBigEndian(v.ByteArray()))
			}
		case size <= decimal.MaxInt256Width:
			fromValue = func(v parquet.Value) decimal256.Num { return decimal.Int256FromBigEndian(v.ByteArray()) }
		default:
			return nil, nil, &DecimalWidthError{Width: size, Max: decimal.MaxInt256Width}
		}
	default:
		return nil, nil, &PhysicalTypeError{Logical: dt, Physical: typ}
	}

	state, leaves, err := nested.Decode(stream, init, r.Filter)
	if err != nil {
		return nil, nil, err
	}
	entry, ok := state.Pop()
	if !ok {
		return nil, nil, fmt.Errorf("nestedarrow: missing leaf-level shape entry for %s", dt)
	}

	b := array.NewDecimal256Builder(r.mem(), dt)
	defer b.Release()
	b.Reserve(len(leaves))
	for i, v := range leaves {
		if !entry.Validity[i] {
			b.AppendNull()
			continue
		}
		b.Append(fromValue(v))
	}
	return state, b.NewArray(), nil
}

// decodeCategorical decodes a dictionary column that is a true categorical
// type. Categorical keys are always 32-bit unsigned; any other key width is
// an inconsistency in whoever built the schema, not a property of the input
// data, hence the panic.
func (r *Reconstructor) decodeCategorical(stream *nested.Stream, dt *arrow.DictionaryType, init []nested.Init) (*nested.State, arrow.Array, error) {
	if dt.IndexType.ID() != arrow.UINT32 {
		panic(fmt.Sprintf("nestedarrow: categorical dictionary must use uint32 keys, got %s", dt.IndexType))
	}
	return r.decodeDictionary(stream, dt, init)
}

// decodeDictionaryString decodes dictionary encoding that is only a storage
// optimization for text: the values are decoded as plain strings and
// re-encoded with whatever key width the schema declares.
func (r *Reconstructor) decodeDictionaryString(stream *nested.Stream, dt *arrow.DictionaryType, init []nested.Init) (*nested.State, arrow.Array, error) {
	return r.decodeDictionary(stream, dt, init)
}

func (r *Reconstructor) decodeDictionary(stream *nested.Stream, dt *arrow.DictionaryType, init []nested.Init) (*nested.State, arrow.Array, error) {
	state, leaves, err := nested.Decode(stream, init, r.Filter)
	if err != nil {
		return nil, nil, err
	}
	entry, ok := state.Pop()
	if !ok {
		return nil, nil, fmt.Errorf("nestedarrow: missing leaf-level shape entry for %s", dt)
	}

	b, ok := array.NewBuilder(r.mem(), dt).(*array.BinaryDictionaryBuilder)
	if !ok {
		return nil, nil, &UnsupportedTypeError{Type: dt}
	}
	defer b.Release()
	for i, v := range leaves {
		if !entry.Validity[i] {
			b.AppendNull()
			continue
		}
		if err := b.Append(v.ByteArray()); err != nil {
			return nil, nil, fmt.Errorf("append dictionary value: %w", err)
		}
	}
	return state, b.NewArray(), nil
}
