// Package nested decodes the repetition/definition level encoding of parquet
// leaf columns into per-level shape state (lengths, offsets, validity) that
// container builders consume bottom-up.
package nested

// Kind enumerates the structural levels the level decoder understands.
type Kind int

const (
	KindPrimitive Kind = iota
	KindList
	KindFixedSizeList
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindList:
		return "list"
	case KindFixedSizeList:
		return "fixed size list"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Init describes one level of nesting on the path from the schema root down
// to the leaf column being decoded. The decoder derives the definition and
// repetition level layout of the column from the ordered Init chain.
type Init struct {
	Kind     Kind
	Nullable bool
	// Width is the element count of a fixed size list level. Zero otherwise.
	Width int32
}

func Primitive(nullable bool) Init { return Init{Kind: KindPrimitive, Nullable: nullable} }

func List(nullable bool) Init { return Init{Kind: KindList, Nullable: nullable} }

func FixedSizeList(nullable bool, width int32) Init {
	return Init{Kind: KindFixedSizeList, Nullable: nullable, Width: width}
}

func Struct(nullable bool) Init { return Init{Kind: KindStruct, Nullable: nullable} }

// Entry is the decoded shape of one nesting level: how many slots the level
// holds, where each slot's children start (list kinds only), and which slots
// are null.
type Entry struct {
	Kind     Kind
	Nullable bool
	Width    int32

	// Length is the number of slots decoded at this level.
	Length int64
	// Offsets holds, for list kinds, the child index at which each slot
	// starts, followed by one trailing end offset. len(Offsets) == Length+1
	// after decoding completes.
	Offsets []int64
	// Validity marks present slots. One entry per slot.
	Validity []bool
}

func (e *Entry) appendSlot(valid bool) {
	e.Length++
	e.Validity = append(e.Validity, valid)
}

// NullCount returns the number of absent slots at this level.
func (e *Entry) NullCount() int {
	n := 0
	for _, ok := range e.Validity {
		if !ok {
			n++
		}
	}
	return n
}

// CollapsedValidity reduces the level's validity to a plain present/absent
// form: nil when every slot is present, the bitmap itself otherwise.
func (e *Entry) CollapsedValidity() []bool {
	for _, ok := range e.Validity {
		if !ok {
			return e.Validity
		}
	}
	return nil
}

// State is the stack of per-level shape entries produced by Decode, ordered
// root first. Callers consume it from the tail: each reconstruction level
// pops the entry it owns and leaves the rest for its parent.
type State struct {
	entries []Entry
}

func (s *State) Len() int { return len(s.entries) }

// Last returns the innermost remaining entry, or nil when the state is
// drained.
func (s *State) Last() *Entry {
	if len(s.entries) == 0 {
		return nil
	}
	return &s.entries[len(s.entries)-1]
}

// Pop removes and returns the innermost remaining entry.
func (s *State) Pop() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	e := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return e, true
}

// Filter selects the half-open range [Start, End) of top-level rows. A nil
// *Filter selects every row. The decoder applies it while walking levels,
// before any value is materialized.
type Filter struct {
	Start int64
	End   int64
}

func (f *Filter) selects(row int64) bool {
	return f == nil || (row >= f.Start && row < f.End)
}

func (f *Filter) exhausted(row int64) bool {
	return f != nil && row >= f.End
}
