// Package dataset reads and writes the flat files that connect the
// generation, load and query phases.
//
// A table is held in memory as a Frame: a schema plus rows of typed values.
// Two on-disk formats are supported, pipe-delimited CSV and a
// snappy-compressed columnar format; both are validated against the table's
// schema when parsed.
package dataset

import (
	"fmt"
	"time"

	"github.com/graphbench/graphbench/pkg/types"
)

// Frame is an in-memory table. Row values use int64, float64, string, bool
// and time.Time according to the schema column types.
type Frame struct {
	Schema types.Schema
	Rows   [][]any
}

// NewFrame creates an empty frame with room for n rows.
func NewFrame(schema types.Schema, n int) *Frame {
	return &Frame{Schema: schema, Rows: make([][]any, 0, n)}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Append adds a row after checking its arity and value types.
func (f *Frame) Append(row ...any) error {
	if len(row) != len(f.Schema.Columns) {
		return fmt.Errorf("dataset: %s row has %d values, schema has %d columns",
			f.Schema.Name, len(row), len(f.Schema.Columns))
	}
	for i, col := range f.Schema.Columns {
		if !valueMatches(col.Type, row[i]) {
			return fmt.Errorf("dataset: %s.%s expects %s, got %T",
				f.Schema.Name, col.Name, col.Type, row[i])
		}
	}
	f.Rows = append(f.Rows, row)
	return nil
}

// Slice returns a frame sharing rows [lo, hi).
func (f *Frame) Slice(lo, hi int) *Frame {
	if hi > len(f.Rows) {
		hi = len(f.Rows)
	}
	if lo > hi {
		lo = hi
	}
	return &Frame{Schema: f.Schema, Rows: f.Rows[lo:hi]}
}

// Chunks splits the frame into consecutive slices of at most size rows.
// A non-positive size yields the whole frame as one chunk.
func (f *Frame) Chunks(size int) []*Frame {
	if size <= 0 || len(f.Rows) <= size {
		return []*Frame{f}
	}
	chunks := make([]*Frame, 0, (len(f.Rows)+size-1)/size)
	for lo := 0; lo < len(f.Rows); lo += size {
		chunks = append(chunks, f.Slice(lo, lo+size))
	}
	return chunks
}

// Records returns the rows as column-name keyed maps.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, len(f.Rows))
	for i, row := range f.Rows {
		rec := make(map[string]any, len(row))
		for j, col := range f.Schema.Columns {
			rec[col.Name] = row[j]
		}
		out[i] = rec
	}
	return out
}

func valueMatches(t types.ColumnType, v any) bool {
	switch t {
	case types.TypeInt64:
		_, ok := v.(int64)
		return ok
	case types.TypeFloat64:
		_, ok := v.(float64)
		return ok
	case types.TypeString:
		_, ok := v.(string)
		return ok
	case types.TypeBool:
		_, ok := v.(bool)
		return ok
	case types.TypeDate:
		_, ok := v.(time.Time)
		return ok
	}
	return false
}
