package nestedarrow

import (
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals/nestedarrow/nested"
)

func TestColumnsSplitTail(t *testing.T) {
	streams := []*nested.Stream{
		nested.NewStream(nil),
		nested.NewStream(nil),
		nested.NewStream(nil),
	}
	types := []parquet.Type{parquet.Int64Type, parquet.ByteArrayType, parquet.BooleanType}

	cols, err := NewColumns(streams, types)
	require.NoError(t, err)
	require.Equal(t, 3, cols.Len())

	tail, err := cols.SplitTail(2)
	require.NoError(t, err)
	require.Equal(t, 2, tail.Len())
	require.Equal(t, 1, cols.Len())

	s, typ, err := tail.PopLeaf()
	require.NoError(t, err)
	require.Same(t, streams[2], s)
	require.Equal(t, parquet.BooleanType, typ)

	s, typ, err = tail.PopLeaf()
	require.NoError(t, err)
	require.Same(t, streams[1], s)
	require.Equal(t, parquet.ByteArrayType, typ)

	_, _, err = tail.PopLeaf()
	require.Error(t, err)

	_, err = cols.SplitTail(2)
	require.Error(t, err)
}

func TestNewColumnsLockstep(t *testing.T) {
	_, err := NewColumns([]*nested.Stream{nested.NewStream(nil)}, nil)
	require.Error(t, err)
}
