package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/graphbench/graphbench/internal/app"
	"github.com/graphbench/graphbench/internal/bench"
	"github.com/graphbench/graphbench/internal/config"
	gberrors "github.com/graphbench/graphbench/internal/errors"
)

type benchFlags struct {
	backend    string
	names      []string
	warmup     int
	rounds     int
	golden     string
	report     string
	metricsOut string
}

func (f *benchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.backend, "backend", string(config.BackendEmbedded), "backend: neo4j or embedded")
	fl.StringSliceVarP(&f.names, "query", "q", nil, "queries to benchmark (default all)")
	fl.IntVar(&f.warmup, "warmup", -1, "untimed runs per query (default from config)")
	fl.IntVar(&f.rounds, "rounds", 0, "timed runs per query (default from config)")
	fl.StringVar(&f.golden, "golden", "", "golden expectations file")
	fl.StringVar(&f.report, "report", "", "write the JSON report to this path")
	fl.StringVar(&f.metricsOut, "metrics-out", "", "write Prometheus metrics in text format to this path")
}

func (f *benchFlags) apply(cfg *config.Config) error {
	if f.warmup >= 0 {
		cfg.Bench.Warmup = f.warmup
	}
	if f.rounds > 0 {
		cfg.Bench.Rounds = f.rounds
	}
	if f.golden != "" {
		cfg.Bench.Golden = f.golden
	}
	if f.report != "" {
		cfg.Bench.Report = f.report
	}
	if f.metricsOut != "" {
		cfg.Bench.MetricsOut = f.metricsOut
	}
	return nil
}

func newBenchCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the query battery",
	}
	cmd.AddCommand(newBenchRunCmd(opts), newBenchRecordCmd(opts))
	return cmd
}

// runBench opens the backend and benchmarks the selected queries. Outputs
// configured in cfg.Bench are written even when a query fails.
func runBench(ctx context.Context, opts *globalOptions, f *benchFlags) (*app.App, *bench.Report, error) {
	name, err := config.ParseBackend(f.backend)
	if err != nil {
		return nil, nil, err
	}
	selected, err := selectQueries(f.names)
	if err != nil {
		return nil, nil, err
	}
	a, err := opts.open(f.apply)
	if err != nil {
		return nil, nil, err
	}

	b, err := a.OpenBackend(ctx, name, false)
	if err != nil {
		return a, nil, err
	}
	h := a.Harness(b, selected)
	report, runErr := h.Run(ctx)

	cfg := a.Config().Bench
	if cfg.MetricsOut != "" {
		if err := h.Metrics().WriteTextfile(cfg.MetricsOut); err != nil {
			return a, nil, gberrors.Wrap(gberrors.ErrCategoryBench, gberrors.CodeWriteFailed, "write metrics", err)
		}
	}
	if runErr != nil {
		return a, nil, runErr
	}
	if cfg.Report != "" {
		if err := bench.WriteReport(cfg.Report, report); err != nil {
			return a, nil, err
		}
	}
	for _, t := range h.Slowest(3) {
		a.Logger().Debug("slow query", zap.String("query", t.Query), zap.Duration("total", t.Total()))
	}
	return a, report, nil
}

func newBenchRunCmd(opts *globalOptions) *cobra.Command {
	f := &benchFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark queries and check them against golden expectations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, report, err := runBench(cmd.Context(), opts, f)
			if a != nil {
				defer a.Close(cmd.Context())
			}
			if err != nil {
				return err
			}
			if err := bench.Summary(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			path := a.Config().Bench.Golden
			if path == "" {
				return nil
			}
			golden, err := bench.LoadGolden(path)
			if err != nil {
				return err
			}
			if err := bench.Assert(golden, report); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "All %d golden expectations passed\n", len(golden.Queries))
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func newBenchRecordCmd(opts *globalOptions) *cobra.Command {
	f := &benchFlags{}
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Benchmark queries and pin their results as golden expectations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.golden == "" {
				return gberrors.NewValidationError(gberrors.CodeInvalidConfig, "--golden is required")
			}
			a, report, err := runBench(cmd.Context(), opts, f)
			if a != nil {
				defer a.Close(cmd.Context())
			}
			if err != nil {
				return err
			}
			golden := bench.Record(report)
			if err := golden.Save(f.golden); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d queries to %s\n", len(golden.Queries), f.golden)
			return err
		},
	}
	f.register(cmd)
	return cmd
}
