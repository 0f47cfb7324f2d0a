package nestedarrow

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/polarsignals/nestedarrow/nested"
)

// Columns is the remaining stack of leaf columns: one decompressed stream
// and one physical type descriptor per leaf, in depth-first schema order.
// Reconstruction consumes it from the tail, because struct members are
// serialized in forward order but processed last-field-first. Splits are
// index-range based so the lockstep invariant between the two sequences is
// checked at every split point.
type Columns struct {
	streams []*nested.Stream
	types   []parquet.Type
}

// NewColumns pairs leaf streams with their physical type descriptors.
func NewColumns(streams []*nested.Stream, types []parquet.Type) (*Columns, error) {
	if len(streams) != len(types) {
		return nil, fmt.Errorf("nestedarrow: %d leaf streams paired with %d physical types", len(streams), len(types))
	}
	return &Columns{streams: streams, types: types}, nil
}

// ColumnsFromRowGroup reads every leaf column chunk of the row group into a
// stack.
func ColumnsFromRowGroup(rg parquet.RowGroup) (*Columns, error) {
	chunks := rg.ColumnChunks()
	streams := make([]*nested.Stream, len(chunks))
	types := make([]parquet.Type, len(chunks))
	for i, chunk := range chunks {
		s, err := nested.StreamFromColumnChunk(chunk)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		streams[i] = s
		types[i] = chunk.Type()
	}
	return NewColumns(streams, types)
}

// Len returns the number of unconsumed leaf columns.
func (c *Columns) Len() int { return len(c.streams) }

// SplitTail removes the last n columns from the stack and returns them as a
// stack of their own, preserving their relative order.
func (c *Columns) SplitTail(n int) (*Columns, error) {
	if len(c.streams) != len(c.types) {
		return nil, fmt.Errorf("nestedarrow: leaf stream and type stacks diverged: %d streams, %d types", len(c.streams), len(c.types))
	}
	if n > len(c.streams) {
		return nil, fmt.Errorf("nestedarrow: need %d leaf columns, %d remain", n, len(c.streams))
	}
	at := len(c.streams) - n
	tail := &Columns{streams: c.streams[at:], types: c.types[at:]}
	c.streams = c.streams[:at]
	c.types = c.types[:at]
	return tail, nil
}

// PopLeaf removes and returns the last column of the stack.
func (c *Columns) PopLeaf() (*nested.Stream, parquet.Type, error) {
	tail, err := c.SplitTail(1)
	if err != nil {
		return nil, nil, err
	}
	return tail.streams[0], tail.types[0], nil
}
