package benchmark

import (
	"context"
	"testing"

	"github.com/graphbench/graphbench/internal/query"
)

// BenchmarkQueries runs each query of the battery with its default
// parameters as a sub-benchmark.
func BenchmarkQueries(b *testing.B) {
	db := getBenchmarkBackend(b)
	runner := query.NewRunner(db, nil)
	ctx := context.Background()

	for _, q := range query.All() {
		b.Run(q.Name(), func(b *testing.B) {
			// Warm caches once outside the timer
			res, err := runner.Exec(ctx, q, nil)
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := runner.Exec(ctx, q, nil); err != nil {
					b.Fatal(err)
				}
			}
			b.ReportMetric(float64(res.Rows.Len()), "rows")
		})
	}
}

// BenchmarkQueryParams measures the parameterized queries across a sweep of
// values.
func BenchmarkQueryParams(b *testing.B) {
	db := getBenchmarkBackend(b)
	runner := query.NewRunner(db, nil)
	ctx := context.Background()

	sweeps := []struct {
		name   string
		id     int
		params []map[string]any
	}{
		{"q4_age_ranges", 4, []map[string]any{
			{"age_lower": 20, "age_upper": 30},
			{"age_lower": 30, "age_upper": 40},
			{"age_lower": 40, "age_upper": 50},
		}},
		{"q6_interests", 6, []map[string]any{
			{"interest": "tennis"},
			{"interest": "photography"},
			{"interest": "hiking"},
		}},
		{"q9_age_thresholds", 9, []map[string]any{
			{"age_1": 50, "age_2": 25},
			{"age_1": 40, "age_2": 30},
		}},
	}

	for _, sw := range sweeps {
		b.Run(sw.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, _, err := runner.Run(ctx, sw.id, sw.params[i%len(sw.params)]); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
