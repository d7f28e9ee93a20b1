package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/graphbench/graphbench/internal/config"
)

func newLoadCmd(opts *globalOptions) *cobra.Command {
	var (
		backend   string
		batchSize int
		fresh     bool
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the generated dataset into a graph backend",
		Long: `Create the schema and write every node and edge table into the backend.
Loading is idempotent: nodes are upserted by id and edges merged, so a
second load leaves the counts unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := config.ParseBackend(backend)
			if err != nil {
				return err
			}
			a, err := opts.open(func(cfg *config.Config) error {
				if batchSize > 0 {
					cfg.Neo4j.BatchSize = batchSize
				}
				return nil
			})
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			b, err := a.OpenBackend(cmd.Context(), name, fresh)
			if err != nil {
				return err
			}
			res, err := a.Loader(b, 0).Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := tablewriter.NewTable(out, tablewriter.WithHeaderAutoFormat(tw.Off))
			table.Header("Table", "Rows", "Batches", "Seconds")
			for _, p := range res.Phases {
				if err := table.Append(p.Name, p.Rows, p.Batches, fmt.Sprintf("%.3f", p.Elapsed.Seconds())); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "Loaded %d rows into %s in %.3fs\n", res.Rows(), b.Name(), res.Elapsed.Seconds())
			return err
		},
	}
	cmd.Flags().StringVar(&backend, "backend", string(config.BackendEmbedded), "backend: neo4j or embedded")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per write batch for chunked tables (default from config)")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "remove the embedded database before loading")
	return cmd
}
