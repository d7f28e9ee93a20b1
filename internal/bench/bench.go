// Package bench runs the query battery as a benchmark: warm-up runs, timed
// rounds, summary statistics, golden-output checks, Prometheus latency
// histograms and JSON reports.
package bench

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/graphdb"
	"github.com/graphbench/graphbench/internal/logging"
	"github.com/graphbench/graphbench/internal/observability"
	"github.com/graphbench/graphbench/internal/query"
)

// Options controls a benchmark run.
type Options struct {
	Warmup int
	Rounds int
	// Queries restricts the run; empty runs all nine
	Queries []*query.Query
}

// DefaultOptions returns one warm-up and five timed rounds per query.
func DefaultOptions() Options {
	return Options{Warmup: 1, Rounds: 5}
}

// Harness benchmarks queries through a runner.
type Harness struct {
	runner  *query.Runner
	opts    Options
	stats   *observability.QueryStats
	metrics *observability.Metrics
	log     *zap.Logger
}

// New returns a harness. A nil metrics gets a fresh private registry.
func New(runner *query.Runner, opts Options, metrics *observability.Metrics, log *zap.Logger) *Harness {
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	if len(opts.Queries) == 0 {
		opts.Queries = query.All()
	}
	return &Harness{
		runner:  runner,
		opts:    opts,
		stats:   observability.NewQueryStats(),
		metrics: metrics,
		log:     logging.OrNop(log),
	}
}

// Metrics returns the harness collectors.
func (h *Harness) Metrics() *observability.Metrics {
	return h.metrics
}

// Run benchmarks every selected query in order and stops at the first
// failing run.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	if h.opts.Rounds < 1 {
		return nil, gberrors.NewValidationError(gberrors.CodeInvalidConfig, "bench rounds must be at least 1")
	}
	if h.opts.Warmup < 0 {
		return nil, gberrors.NewValidationError(gberrors.CodeInvalidConfig, "bench warmup must be non-negative")
	}

	backend := h.runner.Backend().Name()
	report := &Report{
		RunID:     uuid.NewString(),
		Backend:   backend,
		StartedAt: time.Now().UTC(),
		Warmup:    h.opts.Warmup,
		Rounds:    h.opts.Rounds,
	}
	start := time.Now()

	for _, q := range h.opts.Queries {
		qr, err := h.benchmark(ctx, backend, q)
		if err != nil {
			return nil, err
		}
		report.Queries = append(report.Queries, qr)
		h.log.Info("benchmarked query",
			zap.String("query", q.Name()),
			zap.Float64("mean_seconds", qr.Stats.Mean),
			zap.Float64("min_seconds", qr.Stats.Min),
			zap.Int("rows", qr.Rows))
	}
	report.Elapsed = time.Since(start).Seconds()
	return report, nil
}

func (h *Harness) benchmark(ctx context.Context, backend string, q *query.Query) (*QueryReport, error) {
	for i := 0; i < h.opts.Warmup; i++ {
		if _, err := h.runner.Exec(ctx, q, nil); err != nil {
			h.stats.RecordFailure(q.Name())
			h.metrics.QueryFailed(backend, q.Name())
			return nil, err
		}
	}

	var last *query.Result
	for i := 0; i < h.opts.Rounds; i++ {
		res, err := h.runner.Exec(ctx, q, nil)
		if err != nil {
			h.stats.RecordFailure(q.Name())
			h.metrics.QueryFailed(backend, q.Name())
			return nil, err
		}
		h.stats.RecordRun(q.Name(), res.Elapsed, res.Rows.Len())
		h.metrics.ObserveQuery(backend, q.Name(), res.Elapsed, res.Rows.Len())
		last = res
	}

	timing, _ := h.stats.Get(q.Name())
	return &QueryReport{
		Name:        q.Name(),
		Description: q.Description,
		Params:      last.Params,
		Stats:       ComputeStats(timing.Samples),
		Rows:        last.Rows.Len(),
		Result:      last.Rows,
	}, nil
}

// Slowest returns the n queries with the largest total timed duration.
func (h *Harness) Slowest(n int) []observability.QueryTiming {
	return h.stats.Slowest(n)
}

// QueryReport is the outcome of benchmarking one query.
type QueryReport struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Params      map[string]any     `json:"params,omitempty"`
	Stats       Stats              `json:"stats"`
	Rows        int                `json:"rows"`
	Result      *graphdb.ResultSet `json:"result,omitempty"`
}
