package query

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/graphdb"
	"github.com/graphbench/graphbench/internal/logging"
)

// Result is one executed query.
type Result struct {
	Query   *Query
	Params  map[string]any
	Rows    *graphdb.ResultSet
	Elapsed time.Duration
}

// Runner executes queries against a backend.
type Runner struct {
	backend graphdb.Backend
	log     *zap.Logger
}

// NewRunner returns a runner over backend.
func NewRunner(backend graphdb.Backend, log *zap.Logger) *Runner {
	return &Runner{backend: backend, log: logging.OrNop(log)}
}

// Backend returns the backend queries run against.
func (r *Runner) Backend() graphdb.Backend {
	return r.backend
}

// Run executes query id with params overlaid on its defaults and returns
// the rows and the wall-clock time of the call.
func (r *Runner) Run(ctx context.Context, id int, params map[string]any) (*graphdb.ResultSet, time.Duration, error) {
	q, err := Lookup(id)
	if err != nil {
		return nil, 0, err
	}
	res, err := r.Exec(ctx, q, params)
	if err != nil {
		return nil, 0, err
	}
	return res.Rows, res.Elapsed, nil
}

// Exec executes q with params overlaid on its defaults.
func (r *Runner) Exec(ctx context.Context, q *Query, params map[string]any) (*Result, error) {
	bound, err := q.Bind(params)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := r.backend.Query(ctx, q.Statement(r.backend.Dialect()), bound)
	elapsed := time.Since(start)
	if err != nil {
		return nil, gberrors.NewQueryError(gberrors.CodeExecutionFailed,
			fmt.Sprintf("%s on %s", q.Name(), r.backend.Name()), err)
	}
	r.log.Debug("query executed",
		zap.String("query", q.Name()),
		zap.String("backend", r.backend.Name()),
		zap.Int("rows", rows.Len()),
		zap.Duration("elapsed", elapsed))
	return &Result{Query: q, Params: bound, Rows: rows, Elapsed: elapsed}, nil
}

// RunAll executes every query with its default parameters, in order.
func (r *Runner) RunAll(ctx context.Context) ([]*Result, error) {
	start := time.Now()
	out := make([]*Result, 0, len(battery))
	for _, q := range battery {
		res, err := r.Exec(ctx, q, nil)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	r.log.Info("queries completed",
		zap.String("backend", r.backend.Name()),
		zap.Int("queries", len(out)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// Print writes a result as a heading and a table.
func Print(w io.Writer, res *Result) error {
	if _, err := fmt.Fprintf(w, "\nQuery %d: %s\n", res.Query.ID, res.Query.Description); err != nil {
		return err
	}
	for _, name := range res.Query.ParamNames() {
		if _, err := fmt.Fprintf(w, "  %s = %v\n", name, res.Params[name]); err != nil {
			return err
		}
	}
	if err := res.Rows.Render(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Query %d completed in %.6fs\n", res.Query.ID, res.Elapsed.Seconds())
	return err
}
