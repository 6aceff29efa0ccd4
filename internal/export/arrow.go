// Package export writes run series to Arrow IPC files and CSV, and reads
// Arrow files back.
package export

import (
	"fmt"
	"os"
	"sort"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/series"
)

// Options carries the allocator and the schema metadata of an export.
type Options struct {
	// Allocator defaults to memory.NewGoAllocator().
	Allocator memory.Allocator

	// Metadata is attached to the Arrow schema (run id, kind, seed, ...).
	Metadata map[string]string
}

func (o Options) allocator() memory.Allocator {
	if o.Allocator == nil {
		return memory.NewGoAllocator()
	}
	return o.Allocator
}

// Schema returns the Arrow schema of tab: one non-nullable float64 field per
// column, in order.
func Schema(tab series.Table, meta map[string]string) *arrow.Schema {
	fields := make([]arrow.Field, len(tab))
	for i, col := range tab {
		fields[i] = arrow.Field{Name: col.Name, Type: arrow.PrimitiveTypes.Float64}
	}
	var md *arrow.Metadata
	if len(meta) > 0 {
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]string, len(keys))
		for i, k := range keys {
			values[i] = meta[k]
		}
		m := arrow.NewMetadata(keys, values)
		md = &m
	}
	return arrow.NewSchema(fields, md)
}

// NewRecord builds a single Arrow record from tab. The caller must Release it.
func NewRecord(mem memory.Allocator, tab series.Table, meta map[string]string) (arrow.Record, error) {
	if err := tab.Validate(); err != nil {
		return nil, err
	}
	b := array.NewRecordBuilder(mem, Schema(tab, meta))
	defer b.Release()

	for i, col := range tab {
		b.Field(i).(*array.Float64Builder).AppendValues(col.Values, nil)
	}
	return b.NewRecord(), nil
}

// WriteArrow writes tab as a one-record Arrow IPC file at path.
func WriteArrow(path string, tab series.Table, opts Options) error {
	mem := opts.allocator()
	rec, err := NewRecord(mem, tab, opts.Metadata)
	if err != nil {
		return err
	}
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create arrow file: %w", err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("failed to create arrow writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish arrow file: %w", err)
	}
	return f.Close()
}

// ReadArrow reads every record of an Arrow IPC file written by WriteArrow and
// concatenates them into one table. It also returns the schema metadata.
func ReadArrow(path string, opts Options) (series.Table, map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open arrow file: %w", err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(opts.allocator()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read arrow file: %w", err)
	}
	defer r.Close()

	schema := r.Schema()
	tab := make(series.Table, len(schema.Fields()))
	for i, field := range schema.Fields() {
		if field.Type.ID() != arrow.FLOAT64 {
			return nil, nil, fmt.Errorf("column %s has type %s, want float64", field.Name, field.Type)
		}
		tab[i].Name = field.Name
	}

	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.RecordAt(i)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}
		for c := range tab {
			col := rec.Column(c).(*array.Float64)
			tab[c].Values = append(tab[c].Values, col.Float64Values()...)
		}
		rec.Release()
	}

	meta := make(map[string]string)
	md := schema.Metadata()
	for i, k := range md.Keys() {
		meta[k] = md.Values()[i]
	}
	return tab, meta, nil
}
