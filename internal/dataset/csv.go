package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/pkg/types"
)

// Separator is the field delimiter of generated CSV files.
const Separator = '|'

// WriteCSV writes the frame with a header row.
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator

	if err := cw.Write(f.Schema.ColumnNames()); err != nil {
		return err
	}
	record := make([]string, len(f.Schema.Columns))
	for _, row := range f.Rows {
		for i, col := range f.Schema.Columns {
			record[i] = formatValue(col.Type, row[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a generated CSV file against schema. The header must name
// every schema column; extra columns are ignored.
func ReadCSV(r io.Reader, schema types.Schema) (*Frame, error) {
	raw, err := ReadRaw(r, Separator, schema.ColumnNames())
	if err != nil {
		return nil, err
	}

	f := NewFrame(schema, len(raw.Rows))
	for n, rec := range raw.Rows {
		row := make([]any, len(schema.Columns))
		for i, col := range schema.Columns {
			v, err := parseValue(col.Type, raw.Get(rec, col.Name))
			if err != nil {
				return nil, gberrors.NewInputError(gberrors.CodeMalformedValue,
					fmt.Sprintf("%s line %d column %s", schema.Name, n+2, col.Name), err)
			}
			row[i] = v
		}
		f.Rows = append(f.Rows, row)
	}
	return f, nil
}

// RawTable is an untyped CSV table used for reference inputs.
type RawTable struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// Get returns the named field of rec, or "" when the column is absent.
func (t *RawTable) Get(rec []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// Has reports whether the header contains column.
func (t *RawTable) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// ReadRaw reads a delimited file with a header row and checks that every
// required column is present.
func ReadRaw(r io.Reader, comma rune, required []string) (*RawTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, gberrors.NewInputError(gberrors.CodeMissingColumn, "empty file, no header", err)
	}
	if err != nil {
		return nil, gberrors.NewInputError(gberrors.CodeMalformedValue, "read header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &RawTable{Header: header, index: make(map[string]int, len(header))}
	for i, name := range header {
		t.index[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if !t.Has(name) {
			return nil, gberrors.NewInputError(gberrors.CodeMissingColumn,
				fmt.Sprintf("missing column %q", name), nil)
		}
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, gberrors.NewInputError(gberrors.CodeMalformedValue, "read record", err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func formatValue(t types.ColumnType, v any) string {
	switch t {
	case types.TypeInt64:
		return strconv.FormatInt(v.(int64), 10)
	case types.TypeFloat64:
		return strconv.FormatFloat(v.(float64), 'f', -1, 64)
	case types.TypeBool:
		return strconv.FormatBool(v.(bool))
	case types.TypeDate:
		return v.(time.Time).Format(types.DateLayout)
	default:
		return v.(string)
	}
}

func parseValue(t types.ColumnType, s string) (any, error) {
	switch t {
	case types.TypeInt64:
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case types.TypeFloat64:
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	case types.TypeBool:
		return strconv.ParseBool(strings.TrimSpace(s))
	case types.TypeDate:
		return time.Parse(types.DateLayout, strings.TrimSpace(s))
	case types.TypeString:
		return s, nil
	}
	return nil, fmt.Errorf("unsupported column type %s", t)
}
