package bench

import (
	"fmt"
	"math"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/graphdb"
	"github.com/graphbench/graphbench/internal/query"
)

// recordDelta is the tolerance written for float cells by Record.
const recordDelta = 1e-6

// Golden holds the expected results of a benchmark run, keyed by query
// name ("q1".."q9").
type Golden struct {
	Backend string                 `yaml:"backend,omitempty"`
	Queries map[string]Expectation `yaml:"queries"`
}

// Expectation constrains one query's result.
type Expectation struct {
	// Rows is the exact row count, when set
	Rows  *int        `yaml:"rows,omitempty"`
	Cells []CellCheck `yaml:"cells,omitempty"`
}

// CellCheck constrains the value in one row and column. Exactly one of
// Equals and OneOf is set; Delta turns Equals into a numeric comparison.
type CellCheck struct {
	Row    int      `yaml:"row"`
	Column string   `yaml:"column"`
	Equals *string  `yaml:"equals,omitempty"`
	OneOf  []string `yaml:"one_of,omitempty"`
	Delta  float64  `yaml:"delta,omitempty"`
}

// LoadGolden reads and validates a golden file.
func LoadGolden(path string) (*Golden, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gberrors.NewInputError(gberrors.CodeMissingFile, "read golden file", err)
	}
	var g Golden
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, gberrors.Wrap(gberrors.ErrCategoryBench, gberrors.CodeGoldenInvalid,
			"parse golden file "+path, err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Save writes g as YAML.
func (g *Golden) Save(path string) error {
	data, err := yaml.Marshal(g)
	if err != nil {
		return gberrors.NewInternalError("marshal golden file", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return gberrors.Wrap(gberrors.ErrCategoryBench, gberrors.CodeWriteFailed, "write golden file", err)
	}
	return nil
}

// Validate checks query names and the shape of every check.
func (g *Golden) Validate() error {
	var problems []string
	for name, exp := range g.Queries {
		if _, err := query.LookupName(name); err != nil {
			problems = append(problems, fmt.Sprintf("unknown query %q", name))
			continue
		}
		if exp.Rows != nil && *exp.Rows < 0 {
			problems = append(problems, fmt.Sprintf("%s: negative row count", name))
		}
		for i, c := range exp.Cells {
			switch {
			case c.Column == "":
				problems = append(problems, fmt.Sprintf("%s check %d: column is required", name, i))
			case c.Row < 0:
				problems = append(problems, fmt.Sprintf("%s check %d: negative row", name, i))
			case (c.Equals == nil) == (len(c.OneOf) == 0):
				problems = append(problems, fmt.Sprintf("%s check %d: set exactly one of equals and one_of", name, i))
			case c.Delta < 0:
				problems = append(problems, fmt.Sprintf("%s check %d: negative delta", name, i))
			}
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return gberrors.NewBenchError(gberrors.CodeGoldenInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Check returns one message per failed constraint on rs.
func (e Expectation) Check(rs *graphdb.ResultSet) []string {
	var failures []string
	if e.Rows != nil && rs.Len() != *e.Rows {
		failures = append(failures, fmt.Sprintf("expected %d rows, got %d", *e.Rows, rs.Len()))
	}
	for _, c := range e.Cells {
		if rs.ColumnIndex(c.Column) < 0 {
			failures = append(failures, fmt.Sprintf("no column %q", c.Column))
			continue
		}
		if c.Row >= rs.Len() {
			failures = append(failures, fmt.Sprintf("row %d %s: missing, result has %d rows", c.Row, c.Column, rs.Len()))
			continue
		}
		got := graphdb.FormatValue(rs.Get(c.Row, c.Column))
		if !c.matches(got) {
			failures = append(failures, fmt.Sprintf("row %d %s: %s", c.Row, c.Column, c.describe(got)))
		}
	}
	return failures
}

func (c CellCheck) matches(got string) bool {
	if c.Equals == nil {
		return slices.Contains(c.OneOf, got)
	}
	if c.Delta > 0 {
		want, err1 := strconv.ParseFloat(*c.Equals, 64)
		have, err2 := strconv.ParseFloat(got, 64)
		if err1 == nil && err2 == nil {
			return math.Abs(want-have) <= c.Delta
		}
	}
	return got == *c.Equals
}

func (c CellCheck) describe(got string) string {
	if c.Equals == nil {
		return fmt.Sprintf("got %q, want one of %q", got, c.OneOf)
	}
	if c.Delta > 0 {
		return fmt.Sprintf("got %s, want %s ± %g", got, *c.Equals, c.Delta)
	}
	return fmt.Sprintf("got %q, want %q", got, *c.Equals)
}

// Record builds a golden file pinning every cell of every result.
func Record(r *Report) *Golden {
	g := &Golden{Backend: r.Backend, Queries: make(map[string]Expectation, len(r.Queries))}
	for _, q := range r.Queries {
		rs := q.Result
		if rs == nil {
			continue
		}
		rows := rs.Len()
		exp := Expectation{Rows: &rows}
		for i, row := range rs.Rows {
			for j, col := range rs.Columns {
				v := graphdb.FormatValue(row[j])
				c := CellCheck{Row: i, Column: col, Equals: &v}
				if _, isFloat := row[j].(float64); isFloat {
					c.Delta = recordDelta
				}
				exp.Cells = append(exp.Cells, c)
			}
		}
		g.Queries[q.Name] = exp
	}
	return g
}

// Assert checks every expectation in g against r and returns a BENCH error
// listing each failure, or nil.
func Assert(g *Golden, r *Report) error {
	byName := make(map[string]*QueryReport, len(r.Queries))
	for _, q := range r.Queries {
		byName[q.Name] = q
	}

	names := make([]string, 0, len(g.Queries))
	for name := range g.Queries {
		names = append(names, name)
	}
	sort.Strings(names)

	var failures []string
	for _, name := range names {
		q, err := query.LookupName(name)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: unknown query", name))
			continue
		}
		qr, ok := byName[q.Name()]
		if !ok || qr.Result == nil {
			failures = append(failures, fmt.Sprintf("%s: not run", q.Name()))
			continue
		}
		for _, f := range g.Queries[name].Check(qr.Result) {
			failures = append(failures, q.Name()+": "+f)
		}
	}
	if len(failures) > 0 {
		return gberrors.NewBenchError(gberrors.CodeExpectationFailed,
			fmt.Sprintf("%d expectation(s) failed:\n  %s", len(failures), strings.Join(failures, "\n  ")))
	}
	return nil
}
