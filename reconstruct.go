package nestedarrow

import (
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/polarsignals/nestedarrow/convert"
	"github.com/polarsignals/nestedarrow/nested"
)

// Reconstructor holds the knobs of a reconstruction run. The zero value is
// usable: default allocator, no row filter, struct validation on.
type Reconstructor struct {
	// Mem allocates array buffers. Defaults to memory.DefaultAllocator.
	Mem memory.Allocator
	// Filter selects top-level rows before any value is materialized. Nil
	// selects everything.
	Filter *nested.Filter
	// SkipStructValidation disables the cross-field comparison of struct
	// member validity. Skipping trades corruption detection for speed;
	// mismatching members are then silently trusted.
	SkipStructValidation bool
}

// Reconstruct assembles one nested arrow value for the field from the leaf
// column stack, which must hold exactly the field's leaf columns. The stack
// is fully drained on success.
func Reconstruct(mem memory.Allocator, cols *Columns, field arrow.Field, filter *nested.Filter) (arrow.Array, error) {
	r := &Reconstructor{Mem: mem, Filter: filter}
	return r.Reconstruct(cols, field)
}

// Reconstruct assembles one nested arrow value for the field from the leaf
// column stack. See the package-level Reconstruct.
func (r *Reconstructor) Reconstruct(cols *Columns, field arrow.Field) (arrow.Array, error) {
	_, arr, err := r.reconstruct(cols, field, nil)
	if err != nil {
		return nil, err
	}
	if n := cols.Len(); n != 0 {
		arr.Release()
		return nil, fmt.Errorf("nestedarrow: %d leaf columns left over after reconstructing %q", n, field.Name)
	}
	return arr, nil
}

func (r *Reconstructor) mem() memory.Allocator {
	if r.Mem != nil {
		return r.Mem
	}
	return memory.DefaultAllocator
}

// reconstruct is the recursive type dispatcher. Each call consumes exactly
// the leaf columns of the subtree rooted at field from the tail of cols and
// returns the assembled array together with the shape entries of the
// ancestor levels.
func (r *Reconstructor) reconstruct(cols *Columns, field arrow.Field, init []nested.Init) (*nested.State, arrow.Array, error) {
	switch field.Type.ID() {
	case arrow.NULL, arrow.BOOL,
		arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT32, arrow.FLOAT64,
		arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW,
		arrow.BINARY, arrow.LARGE_BINARY, arrow.BINARY_VIEW:
		init = append(init, nested.Primitive(field.Nullable))
		stream, typ, err := cols.PopLeaf()
		if err != nil {
			return nil, nil, err
		}
		if !convert.Compatible(field.Type, typ) {
			return nil, nil, &PhysicalTypeError{Logical: field.Type, Physical: typ}
		}
		return r.decodeLeaf(stream, typ, field.Type, init)

	case arrow.DECIMAL128:
		init = append(init, nested.Primitive(field.Nullable))
		stream, typ, err := cols.PopLeaf()
		if err != nil {
			return nil, nil, err
		}
		return r.decodeDecimal128(stream, typ, field.Type.(*arrow.Decimal128Type), init)

	case arrow.DECIMAL256:
		init = append(init, nested.Primitive(field.Nullable))
		stream, typ, err := cols.PopLeaf()
		if err != nil {
			return nil, nil, err
		}
		return r.decodeDecimal256(stream, typ, field.Type.(*arrow.Decimal256Type), init)

	case arrow.DICTIONARY:
		init = append(init, nested.Primitive(field.Nullable))
		stream, typ, err := cols.PopLeaf()
		if err != nil {
			return nil, nil, err
		}
		if !convert.Compatible(field.Type, typ) {
			return nil, nil, &PhysicalTypeError{Logical: field.Type, Physical: typ}
		}
		dt := field.Type.(*arrow.DictionaryType)
		if convert.IsCategorical(field.Metadata) {
			return r.decodeCategorical(stream, dt, init)
		}
		// Dictionary encoding without categorical metadata is a plain
		// string column in disguise: decode the text and re-encode it with
		// whatever key width the schema declares.
		return r.decodeDictionaryString(stream, dt, init)

	case arrow.LIST:
		init = append(init, nested.List(field.Nullable))
		t := field.Type.(*arrow.ListType)
		state, child, err := r.reconstruct(cols, t.ElemField(), init)
		if err != nil {
			return nil, nil, err
		}
		arr, err := newListArray(r.mem(), field.Type, state, child)
		return state, arr, err

	case arrow.LARGE_LIST:
		init = append(init, nested.List(field.Nullable))
		t := field.Type.(*arrow.LargeListType)
		state, child, err := r.reconstruct(cols, t.ElemField(), init)
		if err != nil {
			return nil, nil, err
		}
		arr, err := newListArray(r.mem(), field.Type, state, child)
		return state, arr, err

	case arrow.FIXED_SIZE_LIST:
		t := field.Type.(*arrow.FixedSizeListType)
		init = append(init, nested.FixedSizeList(field.Nullable, t.Len()))
		state, child, err := r.reconstruct(cols, t.ElemField(), init)
		if err != nil {
			return nil, nil, err
		}
		arr, err := newFixedSizeListArray(r.mem(), t, state, child)
		return state, arr, err

	case arrow.MAP:
		// A map is a list of key/value struct entries.
		init = append(init, nested.List(field.Nullable))
		t := field.Type.(*arrow.MapType)
		entries := arrow.Field{Name: "entries", Type: t.ValueType()}
		state, child, err := r.reconstruct(cols, entries, init)
		if err != nil {
			return nil, nil, err
		}
		arr, err := newMapArray(r.mem(), t, state, child)
		return state, arr, err

	case arrow.STRUCT:
		return r.reconstructStruct(cols, field, init)

	default:
		return nil, nil, &UnsupportedTypeError{Type: field.Type}
	}
}

// reconstructStruct assembles a struct value. Member columns were serialized
// in declared order but sit at the tail of the stack, so fields are
// processed in reverse: each one splits its own leaf columns off the tail
// and recurses. The structurally last field provides the authoritative
// struct shape; every other field must agree with it.
func (r *Reconstructor) reconstructStruct(cols *Columns, field arrow.Field, init []nested.Init) (*nested.State, arrow.Array, error) {
	t := field.Type.(*arrow.StructType)
	fields := t.Fields()
	if len(fields) == 0 {
		return nil, nil, ErrEmptyStruct
	}

	recurse := func(f arrow.Field) (*nested.State, arrow.Array, error) {
		tail, err := cols.SplitTail(convert.NumLeafColumns(f.Type))
		if err != nil {
			return nil, nil, err
		}
		childInit := append(slices.Clone(init), nested.Struct(field.Nullable))
		state, arr, err := r.reconstruct(tail, f, childInit)
		if err != nil {
			return nil, nil, err
		}
		if n := tail.Len(); n != 0 {
			arr.Release()
			return nil, nil, fmt.Errorf("nestedarrow: struct %q: field %q left %d leaf columns unconsumed", field.Name, f.Name, n)
		}
		return state, arr, nil
	}

	last := fields[len(fields)-1]
	state, lastArr, err := recurse(last)
	if err != nil {
		return nil, nil, err
	}
	shape, ok := state.Pop()
	if !ok || shape.Kind != nested.KindStruct {
		lastArr.Release()
		return nil, nil, fmt.Errorf("nestedarrow: struct %q: missing struct-level shape entry", field.Name)
	}
	validity := shape.CollapsedValidity()

	children := make([]arrow.Array, 0, len(fields))
	children = append(children, lastArr)
	releaseChildren := func() {
		for _, c := range children {
			c.Release()
		}
	}

	for i := len(fields) - 2; i >= 0; i-- {
		st, arr, err := recurse(fields[i])
		if err != nil {
			releaseChildren()
			return nil, nil, err
		}
		entry, ok := st.Pop()
		if !ok || entry.Kind != nested.KindStruct {
			arr.Release()
			releaseChildren()
			return nil, nil, fmt.Errorf("nestedarrow: struct %q: missing struct-level shape entry for field %q", field.Name, fields[i].Name)
		}
		if !r.SkipStructValidation {
			if !slices.Equal(entry.CollapsedValidity(), validity) {
				arr.Release()
				releaseChildren()
				return nil, nil, &StructValidityError{Struct: field.Name, Field: fields[i].Name}
			}
		}
		children = append(children, arr)
	}

	slices.Reverse(children)
	arr, err := newStructArray(r.mem(), t, shape.Length, validity, children)
	return state, arr, err
}
