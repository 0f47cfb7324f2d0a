package nestedarrow

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/polarsignals/nestedarrow/nested"
)

// validityBuffer packs a per-slot validity slice into an arrow bitmap
// buffer. It returns a nil buffer when every slot is valid.
func validityBuffer(mem memory.Allocator, validity []bool) (*memory.Buffer, int) {
	nulls := 0
	for _, ok := range validity {
		if !ok {
			nulls++
		}
	}
	if nulls == 0 {
		return nil, 0
	}
	buf := memory.NewResizableBuffer(mem)
	buf.Resize(bitutil.CeilByte(len(validity)) / 8)
	for i, ok := range validity {
		if ok {
			bitutil.SetBit(buf.Bytes(), i)
		}
	}
	return buf, nulls
}

// releaseBuffer drops the local reference once an ArrayData holds its own.
func releaseBuffer(b *memory.Buffer) {
	if b != nil {
		b.Release()
	}
}

// newListArray wraps a child array into a list or large list, consuming the
// owning shape entry from the state. Offsets and validity come straight
// from the decoded levels.
func newListArray(mem memory.Allocator, dt arrow.DataType, state *nested.State, child arrow.Array) (arrow.Array, error) {
	defer child.Release()
	entry, ok := state.Pop()
	if !ok || entry.Kind != nested.KindList {
		return nil, fmt.Errorf("nestedarrow: missing list-level shape entry for %s", dt)
	}

	validity, nulls := validityBuffer(mem, entry.Validity)
	defer releaseBuffer(validity)

	var offsets *memory.Buffer
	switch dt.ID() {
	case arrow.LARGE_LIST:
		offsets = memory.NewBufferBytes(arrow.Int64Traits.CastToBytes(entry.Offsets))
	default:
		o32 := make([]int32, len(entry.Offsets))
		for i, o := range entry.Offsets {
			if o > math.MaxInt32 {
				return nil, fmt.Errorf("nestedarrow: list offset %d overflows 32 bits, %s requires a large list", o, dt)
			}
			o32[i] = int32(o)
		}
		offsets = memory.NewBufferBytes(arrow.Int32Traits.CastToBytes(o32))
	}

	data := array.NewData(dt, int(entry.Length), []*memory.Buffer{validity, offsets}, []arrow.ArrayData{child.Data()}, nulls, 0)
	defer data.Release()
	return array.MakeFromData(data), nil
}

// newFixedSizeListArray wraps a child array into a fixed size list. Offsets
// are implied by the width: slot i spans [i*width, (i+1)*width) of the
// child, so the child must be exactly length*width long.
func newFixedSizeListArray(mem memory.Allocator, dt *arrow.FixedSizeListType, state *nested.State, child arrow.Array) (arrow.Array, error) {
	defer child.Release()
	entry, ok := state.Pop()
	if !ok || entry.Kind != nested.KindFixedSizeList {
		return nil, fmt.Errorf("nestedarrow: missing list-level shape entry for %s", dt)
	}

	if want := entry.Length * int64(dt.Len()); int64(child.Len()) != want {
		return nil, fmt.Errorf("nestedarrow: fixed size list of width %d with %d slots requires %d child values, got %d",
			dt.Len(), entry.Length, want, child.Len())
	}

	validity, nulls := validityBuffer(mem, entry.Validity)
	defer releaseBuffer(validity)
	data := array.NewData(dt, int(entry.Length), []*memory.Buffer{validity}, []arrow.ArrayData{child.Data()}, nulls, 0)
	defer data.Release()
	return array.NewFixedSizeListData(data), nil
}

// newMapArray wraps a reconstructed key/value struct array into a map. The
// layout is identical to a list of structs; only the type tag differs.
func newMapArray(mem memory.Allocator, dt *arrow.MapType, state *nested.State, entries arrow.Array) (arrow.Array, error) {
	defer entries.Release()
	entry, ok := state.Pop()
	if !ok || entry.Kind != nested.KindList {
		return nil, fmt.Errorf("nestedarrow: missing list-level shape entry for %s", dt)
	}

	validity, nulls := validityBuffer(mem, entry.Validity)
	defer releaseBuffer(validity)
	o32 := make([]int32, len(entry.Offsets))
	for i, o := range entry.Offsets {
		if o > math.MaxInt32 {
			return nil, fmt.Errorf("nestedarrow: map offset %d overflows 32 bits", o)
		}
		o32[i] = int32(o)
	}
	offsets := memory.NewBufferBytes(arrow.Int32Traits.CastToBytes(o32))

	data := array.NewData(dt, int(entry.Length), []*memory.Buffer{validity, offsets}, []arrow.ArrayData{entries.Data()}, nulls, 0)
	defer data.Release()
	return array.NewMapData(data), nil
}

// newStructArray assembles a struct from its member arrays and the
// authoritative collapsed validity. A null slot means the whole struct
// instance is absent, regardless of what the members carry one level down.
func newStructArray(mem memory.Allocator, dt *arrow.StructType, length int64, validity []bool, children []arrow.Array) (arrow.Array, error) {
	defer func() {
		for _, c := range children {
			c.Release()
		}
	}()
	if len(children) != dt.NumFields() {
		return nil, fmt.Errorf("nestedarrow: struct %s assembled from %d member arrays", dt, len(children))
	}

	buf, nulls := validityBuffer(mem, validity)
	defer releaseBuffer(buf)
	childData := make([]arrow.ArrayData, len(children))
	for i, c := range children {
		childData[i] = c.Data()
	}

	data := array.NewData(dt, int(length), []*memory.Buffer{buf}, childData, nulls, 0)
	defer data.Release()
	return array.NewStructData(data), nil
}
