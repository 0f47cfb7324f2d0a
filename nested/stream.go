package nested

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// Stream is one decompressed leaf column in depth-first schema order. The
// values retain the repetition and definition levels recorded in the file;
// Decode turns them back into nested shape.
type Stream struct {
	values []parquet.Value
}

// NewStream wraps an already materialized value sequence.
func NewStream(values []parquet.Value) *Stream {
	return &Stream{values: values}
}

// StreamFromColumnChunk reads every page of the column chunk into a single
// stream. Decompression and page decoding are parquet-go's concern; the
// stream only carries the resulting values.
func StreamFromColumnChunk(chunk parquet.ColumnChunk) (*Stream, error) {
	pages := chunk.Pages()
	defer pages.Close()

	values := make([]parquet.Value, 0, chunk.NumValues())
	for {
		p, err := pages.ReadPage()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read page: %w", err)
		}

		buf := make([]parquet.Value, p.NumValues())
		reader := p.Values()
		_, err = reader.ReadValues(buf)
		// We read all values in the page so we always expect an io.EOF.
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read values: %w", err)
		}
		values = append(values, buf...)
	}

	return &Stream{values: values}, nil
}

// Values returns the raw leaf values, levels included.
func (s *Stream) Values() []parquet.Value { return s.values }
