// Package convert maps parquet schema nodes to arrow fields and carries the
// physical-for-logical compatibility rules used during reconstruction.
package convert

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/parquet-go/parquet-go"
)

// Metadata keys marking a dictionary field as a true categorical/enum type
// rather than dictionary encoding used as a plain string storage
// optimization.
const (
	CategoricalMetadataKey = "categorical"
	EnumValuesMetadataKey  = "enum_values"
)

// IsCategorical reports whether the field metadata carries one of the
// categorical markers.
func IsCategorical(md arrow.Metadata) bool {
	return md.FindKey(CategoricalMetadataKey) >= 0 || md.FindKey(EnumValuesMetadataKey) >= 0
}

// ParquetFieldToArrowField converts a parquet field, nested types included,
// to the arrow field reconstruction will target.
func ParquetFieldToArrowField(pf parquet.Field) (arrow.Field, error) {
	typ, err := NodeToType(pf)
	if err != nil {
		return arrow.Field{}, fmt.Errorf("field %q: %w", pf.Name(), err)
	}

	f := arrow.Field{
		Name:     pf.Name(),
		Type:     typ,
		Nullable: pf.Optional(),
	}
	if pf.Leaf() {
		if lt := pf.Type().LogicalType(); lt != nil && lt.Enum != nil {
			f.Metadata = arrow.NewMetadata([]string{CategoricalMetadataKey}, []string{"true"})
		}
	}

	// A repeated field without a LIST annotation is an implicit list of
	// required elements.
	if pf.Repeated() {
		f.Type = arrow.ListOfField(arrow.Field{Name: pf.Name(), Type: typ})
		f.Nullable = false
	}
	return f, nil
}

// NodeToType converts a parquet schema node to an arrow type.
func NodeToType(n parquet.Node) (arrow.DataType, error) {
	if n.Leaf() {
		return leafType(n)
	}

	lt := n.Type().LogicalType()
	switch {
	case lt != nil && lt.List != nil:
		return listType(n)
	case lt != nil && lt.Map != nil:
		return mapType(n)
	default:
		return structType(n)
	}
}

// listType converts a LIST group: an outer group holding one repeated group,
// which in turn holds the element node (or is itself the element in the
// legacy two-level layout).
func listType(n parquet.Node) (arrow.DataType, error) {
	fields := n.Fields()
	if len(fields) != 1 {
		return nil, fmt.Errorf("list group has %d children, expected 1", len(fields))
	}
	repeated := fields[0]

	var elem parquet.Field = repeated
	if !repeated.Leaf() && len(repeated.Fields()) == 1 {
		elem = repeated.Fields()[0]
	}

	et, err := NodeToType(elem)
	if err != nil {
		return nil, err
	}
	return arrow.ListOfField(arrow.Field{
		Name:     elem.Name(),
		Type:     et,
		Nullable: elem.Optional(),
	}), nil
}

// mapType converts a MAP group: an outer group holding a repeated key_value
// group with a required key and a value.
func mapType(n parquet.Node) (arrow.DataType, error) {
	fields := n.Fields()
	if len(fields) != 1 {
		return nil, fmt.Errorf("map group has %d children, expected 1", len(fields))
	}
	var key, value parquet.Field
	for _, f := range fields[0].Fields() {
		switch f.Name() {
		case "key":
			key = f
		case "value":
			value = f
		}
	}
	if key == nil || value == nil {
		return nil, errors.New("map group is missing its key or value node")
	}

	kt, err := NodeToType(key)
	if err != nil {
		return nil, err
	}
	vt, err := NodeToType(value)
	if err != nil {
		return nil, err
	}

	m := arrow.MapOf(kt, vt)
	m.SetItemNullable(value.Optional())
	return m, nil
}

func structType(n parquet.Node) (arrow.DataType, error) {
	fields := n.Fields()
	out := make([]arrow.Field, len(fields))
	for i, f := range fields {
		af, err := ParquetFieldToArrowField(f)
		if err != nil {
			return nil, err
		}
		out[i] = af
	}
	return arrow.StructOf(out...), nil
}

func leafType(n parquet.Node) (arrow.DataType, error) {
	t := n.Type()
	lt := t.LogicalType()

	switch {
	case lt != nil:
		switch {
		case lt.UTF8 != nil:
			return arrow.BinaryTypes.String, nil
		case lt.Enum != nil:
			return &arrow.DictionaryType{
				IndexType: arrow.PrimitiveTypes.Uint32,
				ValueType: arrow.BinaryTypes.String,
			}, nil
		case lt.Integer != nil:
			return integerType(lt.Integer.BitWidth, lt.Integer.IsSigned)
		case lt.Decimal != nil:
			precision := lt.Decimal.Precision
			scale := lt.Decimal.Scale
			if t.Kind() == parquet.FixedLenByteArray && t.Length() > 16 {
				return &arrow.Decimal256Type{Precision: precision, Scale: scale}, nil
			}
			return &arrow.Decimal128Type{Precision: precision, Scale: scale}, nil
		default:
			return nil, fmt.Errorf("unsupported logical type: %s", t.String())
		}
	case t.Kind() == parquet.Boolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case t.Kind() == parquet.Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case t.Kind() == parquet.Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case t.Kind() == parquet.Float:
		return arrow.PrimitiveTypes.Float32, nil
	case t.Kind() == parquet.Double:
		return arrow.PrimitiveTypes.Float64, nil
	case t.Kind() == parquet.ByteArray:
		return arrow.BinaryTypes.Binary, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", t.String())
	}
}

func integerType(bitWidth int8, signed bool) (arrow.DataType, error) {
	switch bitWidth {
	case 8:
		if signed {
			return arrow.PrimitiveTypes.Int8, nil
		}
		return arrow.PrimitiveTypes.Uint8, nil
	case 16:
		if signed {
			return arrow.PrimitiveTypes.Int16, nil
		}
		return arrow.PrimitiveTypes.Uint16, nil
	case 32:
		if signed {
			return arrow.PrimitiveTypes.Int32, nil
		}
		return arrow.PrimitiveTypes.Uint32, nil
	case 64:
		if signed {
			return arrow.PrimitiveTypes.Int64, nil
		}
		return arrow.PrimitiveTypes.Uint64, nil
	default:
		return nil, fmt.Errorf("unsupported int bit width: %d", bitWidth)
	}
}

// NumLeafColumns returns the number of leaf columns a value of the given
// type occupies in a parquet row group: one per primitive or dictionary
// leaf, summed across struct members, unchanged through list nesting.
func NumLeafColumns(dt arrow.DataType) int {
	switch t := dt.(type) {
	case *arrow.StructType:
		n := 0
		for _, f := range t.Fields() {
			n += NumLeafColumns(f.Type)
		}
		return n
	case *arrow.ListType:
		return NumLeafColumns(t.Elem())
	case *arrow.LargeListType:
		return NumLeafColumns(t.Elem())
	case *arrow.FixedSizeListType:
		return NumLeafColumns(t.Elem())
	case *arrow.MapType:
		return NumLeafColumns(t.ValueType())
	default:
		return 1
	}
}

// kindIs builds a predicate accepting the listed physical kinds.
func kindIs(kinds ...parquet.Kind) func(parquet.Type) bool {
	return func(t parquet.Type) bool {
		for _, k := range kinds {
			if t.Kind() == k {
				return true
			}
		}
		return false
	}
}

// leafCompat holds, per logical leaf category, the predicate deciding
// whether a physical storage kind can back it. Widened storage that needs a
// decode-strategy switch (uint32, decimals) is resolved by the
// reconstruction dispatcher; the table only answers yes or no.
var leafCompat = map[arrow.Type]func(parquet.Type) bool{
	arrow.NULL:         func(parquet.Type) bool { return true },
	arrow.BOOL:         kindIs(parquet.Boolean),
	arrow.INT8:         kindIs(parquet.Int32),
	arrow.INT16:        kindIs(parquet.Int32),
	arrow.INT32:        kindIs(parquet.Int32),
	arrow.INT64:        kindIs(parquet.Int64),
	arrow.UINT8:        kindIs(parquet.Int32),
	arrow.UINT16:       kindIs(parquet.Int32),
	arrow.UINT32:       kindIs(parquet.Int32, parquet.Int64),
	arrow.UINT64:       kindIs(parquet.Int64),
	arrow.FLOAT32:      kindIs(parquet.Float),
	arrow.FLOAT64:      kindIs(parquet.Double),
	arrow.STRING:       kindIs(parquet.ByteArray),
	arrow.LARGE_STRING: kindIs(parquet.ByteArray),
	arrow.STRING_VIEW:  kindIs(parquet.ByteArray),
	arrow.BINARY:       kindIs(parquet.ByteArray),
	arrow.LARGE_BINARY: kindIs(parquet.ByteArray),
	arrow.BINARY_VIEW:  kindIs(parquet.ByteArray),
	arrow.DICTIONARY:   kindIs(parquet.ByteArray),
	arrow.DECIMAL128:   kindIs(parquet.Int32, parquet.Int64, parquet.FixedLenByteArray),
	arrow.DECIMAL256:   kindIs(parquet.Int32, parquet.Int64, parquet.FixedLenByteArray),
}

// Compatible reports whether the physical storage kind of a leaf column can
// back the given logical type.
func Compatible(logical arrow.DataType, physical parquet.Type) bool {
	p, ok := leafCompat[logical.ID()]
	return ok && p(physical)
}
