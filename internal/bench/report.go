package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	gberrors "github.com/graphbench/graphbench/internal/errors"
)

// Report is the outcome of one benchmark run.
type Report struct {
	RunID     string         `json:"run_id"`
	Backend   string         `json:"backend"`
	StartedAt time.Time      `json:"started_at"`
	Warmup    int            `json:"warmup"`
	Rounds    int            `json:"rounds"`
	Elapsed   float64        `json:"elapsed_seconds"`
	Queries   []*QueryReport `json:"queries"`
}

// WriteReport writes r as indented JSON.
func WriteReport(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return gberrors.NewInternalError("marshal report", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return gberrors.Wrap(gberrors.ErrCategoryBench, gberrors.CodeWriteFailed, "write report", err)
	}
	return nil
}

// ReadReport reads a report written by WriteReport.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gberrors.NewInputError(gberrors.CodeMissingFile, "read report", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, gberrors.NewInputError(gberrors.CodeMalformedValue, "parse report "+path, err)
	}
	return &r, nil
}

// Summary writes one table row of statistics per query, in milliseconds.
func Summary(w io.Writer, r *Report) error {
	if _, err := fmt.Fprintf(w, "Benchmark %s on %s (%d warm-up, %d rounds)\n",
		r.RunID, r.Backend, r.Warmup, r.Rounds); err != nil {
		return err
	}
	table := tablewriter.NewTable(w, tablewriter.WithHeaderAutoFormat(tw.Off))
	table.Header("Query", "Min (ms)", "Max (ms)", "Mean (ms)", "StdDev (ms)", "Median (ms)", "IQR (ms)", "OPS", "Rows")
	for _, q := range r.Queries {
		s := q.Stats
		if err := table.Append(q.Name, ms(s.Min), ms(s.Max), ms(s.Mean), ms(s.StdDev), ms(s.Median), ms(s.IQR),
			fmt.Sprintf("%.2f", s.OPS), fmt.Sprint(q.Rows)); err != nil {
			return err
		}
	}
	return table.Render()
}

func ms(seconds float64) string {
	return fmt.Sprintf("%.3f", seconds*1000)
}
