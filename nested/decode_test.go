package nested

import (
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

func TestDecodeFlat(t *testing.T) {
	s := NewStream([]parquet.Value{
		parquet.ValueOf(int64(1)).Level(0, 1, 0),
		parquet.ValueOf(nil).Level(0, 0, 0),
		parquet.ValueOf(int64(3)).Level(0, 1, 0),
	})

	state, leaves, err := Decode(s, []Init{Primitive(true)}, nil)
	require.NoError(t, err)
	require.Len(t, leaves, 3)

	entry, ok := state.Pop()
	require.True(t, ok)
	require.Equal(t, KindPrimitive, entry.Kind)
	require.EqualValues(t, 3, entry.Length)
	require.Equal(t, []bool{true, false, true}, entry.Validity)
	require.Equal(t, 1, entry.NullCount())
	require.True(t, leaves[1].IsNull())
}

func TestDecodeOptionalList(t *testing.T) {
	// Three rows: [1, 2], null, []. An optional list has definition level 1
	// when present and 2 per element; elements after the first repeat at
	// repetition level 1.
	s := NewStream([]parquet.Value{
		parquet.ValueOf(int64(1)).Level(0, 2, 0),
		parquet.ValueOf(int64(2)).Level(1, 2, 0),
		parquet.ValueOf(nil).Level(0, 0, 0),
		parquet.ValueOf(nil).Level(0, 1, 0),
	})

	state, leaves, err := Decode(s, []Init{List(true), Primitive(false)}, nil)
	require.NoError(t, err)
	require.Len(t, leaves, 2)

	leaf, ok := state.Pop()
	require.True(t, ok)
	require.EqualValues(t, 2, leaf.Length)
	require.Equal(t, []bool{true, true}, leaf.Validity)

	list, ok := state.Pop()
	require.True(t, ok)
	require.Equal(t, KindList, list.Kind)
	require.EqualValues(t, 3, list.Length)
	require.Equal(t, []int64{0, 2, 2, 2}, list.Offsets)
	require.Equal(t, []bool{true, false, true}, list.Validity)
}

func TestDecodeNullStructDescent(t *testing.T) {
	// A null struct still claims one slot in its member columns.
	s := NewStream([]parquet.Value{
		parquet.ValueOf(int64(1)).Level(0, 1, 0),
		parquet.ValueOf(nil).Level(0, 0, 0),
	})

	state, leaves, err := Decode(s, []Init{Struct(true), Primitive(false)}, nil)
	require.NoError(t, err)
	require.Len(t, leaves, 2)

	leaf, ok := state.Pop()
	require.True(t, ok)
	require.Equal(t, []bool{true, false}, leaf.Validity)

	st, ok := state.Pop()
	require.True(t, ok)
	require.Equal(t, KindStruct, st.Kind)
	require.Equal(t, []bool{true, false}, st.Validity)
	require.Equal(t, st.Validity, st.CollapsedValidity())
}

func TestDecodeFilter(t *testing.T) {
	s := NewStream([]parquet.Value{
		parquet.ValueOf(int64(0)).Level(0, 0, 0),
		parquet.ValueOf(int64(1)).Level(0, 0, 0),
		parquet.ValueOf(int64(2)).Level(0, 0, 0),
		parquet.ValueOf(int64(3)).Level(0, 0, 0),
	})

	state, leaves, err := Decode(s, []Init{Primitive(false)}, &Filter{Start: 1, End: 3})
	require.NoError(t, err)
	require.Len(t, leaves, 2)
	require.EqualValues(t, 1, leaves[0].Int64())
	require.EqualValues(t, 2, leaves[1].Int64())

	entry, _ := state.Pop()
	require.EqualValues(t, 2, entry.Length)
}

func TestDecodeRejectsNonPrimitiveLeaf(t *testing.T) {
	_, _, err := Decode(NewStream(nil), []Init{List(true)}, nil)
	require.Error(t, err)

	_, _, err = Decode(NewStream(nil), nil, nil)
	require.Error(t, err)
}

func TestCollapsedValidityAllValid(t *testing.T) {
	e := Entry{Validity: []bool{true, true}}
	require.Nil(t, e.CollapsedValidity())
}
