package nested

import (
	"errors"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// level is one Init marker annotated with the definition/repetition levels
// the parquet encoding assigns to it.
type level struct {
	init Init
	// defined is the definition level at which this level's slot is
	// non-null. For list kinds a definition level of defined+1 or more
	// additionally means the list holds at least one element.
	defined int
	// rep is the repetition level of this list level. Zero for non-repeated
	// kinds.
	rep int
}

func buildLevels(init []Init) []level {
	def, rep := 0, 0
	out := make([]level, len(init))
	for i, in := range init {
		if in.Nullable {
			def++
		}
		l := level{init: in, defined: def}
		switch in.Kind {
		case KindList, KindFixedSizeList:
			rep++
			l.rep = rep
			// The repeated element raises the definition level once more.
			def++
		}
		out[i] = l
	}
	return out
}

// Decode is the page-level nested decoder: it walks the leaf values'
// repetition and definition levels against the nesting marker chain and
// produces one shape entry per marker plus the densely packed leaf values.
// The returned value slice is aligned with the innermost entry; null slots
// hold the zero (null) parquet value. The filter is applied per top-level
// row before anything is materialized.
func Decode(s *Stream, init []Init, filter *Filter) (*State, []parquet.Value, error) {
	if len(init) == 0 {
		return nil, nil, errors.New("nested: decode called without nesting levels")
	}
	if init[len(init)-1].Kind != KindPrimitive {
		return nil, nil, fmt.Errorf("nested: innermost level must be primitive, got %s", init[len(init)-1].Kind)
	}

	levels := buildLevels(init)

	// repStart[r] is the index of the first level that restarts when a value
	// carries repetition level r. Repetition level zero restarts everything.
	repStart := make([]int, 1, len(levels)+1)
	repStart[0] = 0
	for i, l := range levels {
		if l.rep > 0 {
			repStart = append(repStart, i+1)
		}
	}

	state := &State{entries: make([]Entry, len(levels))}
	for i, l := range levels {
		state.entries[i] = Entry{Kind: l.init.Kind, Nullable: l.init.Nullable, Width: l.init.Width}
	}

	var leaves []parquet.Value
	row := int64(-1)

	for _, v := range s.values {
		r := int(v.RepetitionLevel())
		d := int(v.DefinitionLevel())
		if r >= len(repStart) {
			return nil, nil, fmt.Errorf("nested: repetition level %d exceeds nesting depth %d", r, len(repStart)-1)
		}
		if r == 0 {
			row++
			if filter.exhausted(row) {
				break
			}
		}
		if !filter.selects(row) {
			continue
		}

	walk:
		for i := repStart[r]; i < len(levels); i++ {
			l := &levels[i]
			e := &state.entries[i]
			switch l.init.Kind {
			case KindList, KindFixedSizeList:
				// Children of this slot start at the child level's current
				// length.
				e.Offsets = append(e.Offsets, state.entries[i+1].Length)
				e.appendSlot(d >= l.defined)
				if d <= l.defined {
					// Null or empty: nothing to decode deeper down.
					break walk
				}
			case KindStruct:
				// A null struct still occupies a slot in every child, so the
				// walk continues either way; descendants see a definition
				// level below their own threshold and come out null.
				e.appendSlot(d >= l.defined)
			case KindPrimitive:
				if d >= l.defined {
					e.appendSlot(true)
					leaves = append(leaves, v)
				} else {
					e.appendSlot(false)
					leaves = append(leaves, parquet.Value{})
				}
			}
		}
	}

	// Seal the list offsets with the final child lengths.
	for i := range state.entries {
		e := &state.entries[i]
		if e.Kind == KindList || e.Kind == KindFixedSizeList {
			e.Offsets = append(e.Offsets, state.entries[i+1].Length)
		}
	}

	return state, leaves, nil
}
