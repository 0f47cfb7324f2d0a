// Package nestedarrow reassembles typed, possibly deeply nested arrow array
// values from the flat depth-first sequence of leaf columns stored in a
// parquet row group.
//
// The core is Reconstruct: a recursive, type-driven dispatcher that walks
// the logical schema tree and, in lockstep, a stack of decoded leaf column
// streams, building nested arrays whose offsets, validity and lengths
// mirror the schema. Reader wraps it with schema derivation and per-column
// parallelism for whole row groups.
package nestedarrow

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/parquet-go/parquet-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/polarsignals/nestedarrow/convert"
	"github.com/polarsignals/nestedarrow/nested"
)

// SchemaFromParquet derives the arrow schema reconstruction will target
// from a parquet schema, nested groups included.
func SchemaFromParquet(s *parquet.Schema) (*arrow.Schema, error) {
	pf := s.Fields()
	fields := make([]arrow.Field, len(pf))
	for i, f := range pf {
		af, err := convert.ParquetFieldToArrowField(f)
		if err != nil {
			return nil, err
		}
		fields[i] = af
	}
	return arrow.NewSchema(fields, nil), nil
}

// Reader converts parquet row groups into arrow records by reconstructing
// every top-level column. A Reader is safe for concurrent use; each call
// owns its leaf streams exclusively.
type Reader struct {
	mem            memory.Allocator
	logger         log.Logger
	tracer         trace.Tracer
	metrics        *metrics
	filter         *nested.Filter
	skipValidation bool
	concurrency    int
}

type Option func(*Reader)

// WithAllocator sets the allocator backing the reconstructed arrays.
func WithAllocator(mem memory.Allocator) Option {
	return func(r *Reader) { r.mem = mem }
}

func WithLogger(logger log.Logger) Option {
	return func(r *Reader) { r.logger = logger }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Reader) { r.tracer = tracer }
}

// WithRegistry registers the reader's metrics with reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(r *Reader) { r.metrics = newMetrics(reg) }
}

// WithRowRange restricts reconstruction to the half-open top-level row
// range [start, end) of each row group.
func WithRowRange(start, end int64) Option {
	return func(r *Reader) { r.filter = &nested.Filter{Start: start, End: end} }
}

// WithoutStructValidation disables the cross-field struct validity check.
func WithoutStructValidation() Option {
	return func(r *Reader) { r.skipValidation = true }
}

// WithConcurrency caps how many top-level columns are reconstructed in
// parallel per row group. Defaults to the number of columns.
func WithConcurrency(n int) Option {
	return func(r *Reader) { r.concurrency = n }
}

func NewReader(options ...Option) *Reader {
	r := &Reader{
		mem:    memory.DefaultAllocator,
		logger: log.NewNopLogger(),
		tracer: noop.NewTracerProvider().Tracer(""),
	}
	for _, option := range options {
		option(r)
	}
	if r.metrics == nil {
		r.metrics = newMetrics(nil)
	}
	return r
}

// RowGroupToRecord reconstructs every column of the row group and assembles
// them into a record. Columns are reconstructed in parallel, one goroutine
// per top-level field, each owning a disjoint slice of leaf columns.
func (r *Reader) RowGroupToRecord(ctx context.Context, rg parquet.RowGroup) (arrow.Record, error) {
	ctx, span := r.tracer.Start(ctx, "nestedarrow/RowGroupToRecord")
	defer span.End()

	schema, err := SchemaFromParquet(rg.Schema())
	if err != nil {
		return nil, err
	}

	cols, err := ColumnsFromRowGroup(rg)
	if err != nil {
		return nil, err
	}

	// Leaf columns sit in depth-first order, so splitting per top-level
	// field walks the fields backwards, taking each field's leaves off the
	// tail.
	fields := schema.Fields()
	parts := make([]*Columns, len(fields))
	for i := len(fields) - 1; i >= 0; i-- {
		parts[i], err = cols.SplitTail(convert.NumLeafColumns(fields[i].Type))
		if err != nil {
			return nil, err
		}
	}
	if n := cols.Len(); n != 0 {
		return nil, fmt.Errorf("nestedarrow: %d leaf columns not claimed by any field", n)
	}

	g, ctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	arrays := make([]arrow.Array, len(fields))
	for i, f := range fields {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec := &Reconstructor{Mem: r.mem, Filter: r.filter, SkipStructValidation: r.skipValidation}
			arr, err := rec.Reconstruct(parts[i], f)
			if err != nil {
				r.metrics.failures.Inc()
				return fmt.Errorf("reconstruct column %q: %w", f.Name, err)
			}
			arrays[i] = arr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, a := range arrays {
			if a != nil {
				a.Release()
			}
		}
		return nil, err
	}

	rows := int64(0)
	if len(arrays) > 0 {
		rows = int64(arrays[0].Len())
	}
	r.metrics.rowGroups.Inc()
	r.metrics.columns.Add(float64(len(arrays)))
	r.metrics.rows.Add(float64(rows))
	span.SetAttributes(attribute.Int64("rows", rows), attribute.Int("columns", len(fields)))
	level.Debug(r.logger).Log("msg", "reconstructed row group", "rows", rows, "columns", len(fields))

	rec := array.NewRecord(schema, arrays, rows)
	for _, a := range arrays {
		a.Release()
	}
	return rec, nil
}

// FileToRecords reconstructs every row group of the file, one record per
// row group.
func (r *Reader) FileToRecords(ctx context.Context, f *parquet.File) ([]arrow.Record, error) {
	groups := f.RowGroups()
	records := make([]arrow.Record, 0, len(groups))
	for _, rg := range groups {
		rec, err := r.RowGroupToRecord(ctx, rg)
		if err != nil {
			for _, r := range records {
				r.Release()
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
