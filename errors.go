package nestedarrow

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/parquet-go/parquet-go"
)

// ErrEmptyStruct is returned for a struct schema node with zero members:
// there is no column to source its length or validity from.
var ErrEmptyStruct = errors.New("nestedarrow: cannot reconstruct a struct with no fields")

// PhysicalTypeError reports a leaf column whose on-disk physical type cannot
// back its declared logical type.
type PhysicalTypeError struct {
	Logical  arrow.DataType
	Physical parquet.Type
}

func (e *PhysicalTypeError) Error() string {
	return fmt.Sprintf("nestedarrow: reconstructing %s from %s parquet values is not supported", e.Logical, e.Physical)
}

// DecimalWidthError reports a fixed-length byte array wider than the target
// decimal type can represent.
type DecimalWidthError struct {
	Width int
	Max   int
}

func (e *DecimalWidthError) Error() string {
	return fmt.Sprintf("nestedarrow: cannot decode a decimal from a fixed-length byte array of %d bytes, maximum is %d", e.Width, e.Max)
}

// UnsupportedTypeError reports a logical type the dispatcher has no
// reconstruction strategy for.
type UnsupportedTypeError struct {
	Type arrow.DataType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("nestedarrow: reconstructing %s from parquet is not supported", e.Type)
}

// ValueRangeError reports a stored value outside the representable range of
// its declared logical type. Narrowing from widened storage never saturates
// or wraps; it fails.
type ValueRangeError struct {
	Value  int64
	Target arrow.DataType
}

func (e *ValueRangeError) Error() string {
	return fmt.Sprintf("nestedarrow: value %d does not fit in %s", e.Value, e.Target)
}

// StructValidityError reports struct members that disagree on which
// instances are null. All fields of one struct instance must be
// simultaneously null or simultaneously present; a mismatch signals
// corruption in the producer and is never silently reconciled.
type StructValidityError struct {
	Struct string
	Field  string
}

func (e *StructValidityError) Error() string {
	return fmt.Sprintf("nestedarrow: struct %q: field %q disagrees with its siblings on which instances are null", e.Struct, e.Field)
}
