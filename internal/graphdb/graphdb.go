// Package graphdb defines the contract shared by the graph database
// backends and the tabular result type their queries return.
package graphdb

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/graphbench/graphbench/internal/dataset"
	"github.com/graphbench/graphbench/pkg/types"
)

// Dialect is the query language a backend speaks.
type Dialect string

const (
	DialectCypher Dialect = "cypher"
	DialectSQL    Dialect = "sql"
)

// Backend is a graph database the harness can load and query.
//
// WriteNodes and WriteEdges each run one write transaction. Node writes are
// upserts keyed by id; edge writes match both endpoints by id and merge, so
// replaying a batch creates nothing new and edges to missing endpoints are
// skipped.
type Backend interface {
	// Name identifies the backend in logs, metrics and reports.
	Name() string

	// Dialect selects which statement of a query the backend runs.
	Dialect() Dialect

	// Setup creates tables, indexes or uniqueness constraints. It is
	// idempotent.
	Setup(ctx context.Context) error

	WriteNodes(ctx context.Context, label types.NodeLabel, batch *dataset.Frame) error
	WriteEdges(ctx context.Context, rel types.Relation, batch *dataset.Frame) error

	// Query runs a read statement with named parameters.
	Query(ctx context.Context, stmt string, params map[string]any) (*ResultSet, error)

	Close(ctx context.Context) error
}

// ResultSet is a query result: column names and rows of values. Values are
// normalized to int64, float64, string, bool or nil.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len returns the number of rows.
func (r *ResultSet) Len() int {
	return len(r.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (r *ResultSet) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Get returns the value of column name in row i, or nil.
func (r *ResultSet) Get(i int, name string) any {
	c := r.ColumnIndex(name)
	if c < 0 || i < 0 || i >= len(r.Rows) || c >= len(r.Rows[i]) {
		return nil
	}
	return r.Rows[i][c]
}

// Render writes the result as a text table.
func (r *ResultSet) Render(w io.Writer) error {
	table := tablewriter.NewTable(w, tablewriter.WithHeaderAutoFormat(tw.Off))
	header := make([]any, len(r.Columns))
	for i, c := range r.Columns {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range r.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = FormatValue(v)
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}

// FormatValue renders a normalized value for display and golden files.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(types.DateLayout)
	default:
		return fmt.Sprint(x)
	}
}

// Normalize converts driver values to the ResultSet value domain.
func Normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	default:
		return v
	}
}
