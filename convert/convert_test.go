package convert

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

func TestParquetFieldToArrowField(t *testing.T) {
	type inner struct {
		X int64   `parquet:"x"`
		Y *string `parquet:"y,optional"`
	}
	type row struct {
		ID     int64             `parquet:"id"`
		Name   *string           `parquet:"name,optional"`
		Level  string            `parquet:"level,enum"`
		Vals   []int64           `parquet:"vals,list"`
		S      inner             `parquet:"s"`
		Labels map[string]string `parquet:"labels"`
		V      uint32            `parquet:"v"`
	}
	schema := parquet.SchemaOf(row{})

	byName := map[string]arrow.Field{}
	for _, pf := range schema.Fields() {
		af, err := ParquetFieldToArrowField(pf)
		require.NoError(t, err)
		byName[af.Name] = af
	}

	require.Equal(t, arrow.PrimitiveTypes.Int64, byName["id"].Type)
	require.False(t, byName["id"].Nullable)

	require.Equal(t, arrow.BinaryTypes.String, byName["name"].Type)
	require.True(t, byName["name"].Nullable)

	level := byName["level"]
	require.Equal(t, arrow.DICTIONARY, level.Type.ID())
	require.Equal(t, arrow.PrimitiveTypes.Uint32, level.Type.(*arrow.DictionaryType).IndexType)
	require.True(t, IsCategorical(level.Metadata))

	vals := byName["vals"]
	require.Equal(t, arrow.LIST, vals.Type.ID())
	require.Equal(t, arrow.PrimitiveTypes.Int64, vals.Type.(*arrow.ListType).Elem())

	s := byName["s"]
	require.Equal(t, arrow.STRUCT, s.Type.ID())
	st := s.Type.(*arrow.StructType)
	require.Equal(t, 2, st.NumFields())
	require.Equal(t, arrow.PrimitiveTypes.Int64, st.Field(0).Type)
	require.True(t, st.Field(1).Nullable)

	labels := byName["labels"]
	require.Equal(t, arrow.MAP, labels.Type.ID())
	m := labels.Type.(*arrow.MapType)
	require.Equal(t, arrow.BinaryTypes.String, m.KeyType())
	require.Equal(t, arrow.BinaryTypes.String, m.ItemType())

	require.Equal(t, arrow.PrimitiveTypes.Uint32, byName["v"].Type)
}

func TestNumLeafColumns(t *testing.T) {
	require.Equal(t, 1, NumLeafColumns(arrow.PrimitiveTypes.Int64))
	require.Equal(t, 1, NumLeafColumns(arrow.ListOf(arrow.PrimitiveTypes.Int64)))
	require.Equal(t, 2, NumLeafColumns(arrow.MapOf(arrow.BinaryTypes.String, arrow.BinaryTypes.String)))

	st := arrow.StructOf(
		arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int64},
		arrow.Field{Name: "b", Type: arrow.ListOf(arrow.StructOf(
			arrow.Field{Name: "c", Type: arrow.BinaryTypes.String},
			arrow.Field{Name: "d", Type: arrow.PrimitiveTypes.Float64},
		))},
	)
	require.Equal(t, 3, NumLeafColumns(st))
	require.Equal(t, 3, NumLeafColumns(arrow.ListOf(st)))
	require.Equal(t, 3, NumLeafColumns(arrow.FixedSizeListOf(2, st)))
}

func TestCompatible(t *testing.T) {
	require.True(t, Compatible(arrow.PrimitiveTypes.Int64, parquet.Int64Type))
	require.False(t, Compatible(arrow.PrimitiveTypes.Int64, parquet.Int32Type))

	// Unsigned 32-bit values are stored as either physical width.
	require.True(t, Compatible(arrow.PrimitiveTypes.Uint32, parquet.Int32Type))
	require.True(t, Compatible(arrow.PrimitiveTypes.Uint32, parquet.Int64Type))
	require.False(t, Compatible(arrow.PrimitiveTypes.Uint32, parquet.ByteArrayType))

	require.True(t, Compatible(arrow.BinaryTypes.String, parquet.ByteArrayType))
	require.False(t, Compatible(arrow.FixedWidthTypes.Boolean, parquet.Int32Type))
	require.True(t, Compatible(arrow.Null, parquet.BooleanType))

	dict := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Uint32, ValueType: arrow.BinaryTypes.String}
	require.True(t, Compatible(dict, parquet.ByteArrayType))
	require.False(t, Compatible(dict, parquet.Int32Type))
}
