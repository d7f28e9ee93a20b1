package main

import (
	"github.com/spf13/cobra"

	"github.com/graphbench/graphbench/internal/config"
	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/query"
)

func newQueryCmd(opts *globalOptions) *cobra.Command {
	var (
		backend string
		names   []string
		params  []string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run the query battery and print the results",
		Long: `Run queries against a loaded backend and print each result as a table
with its elapsed time. Without --query all nine run in order. --param
overrides a parameter default and needs exactly one --query.`,
		Example: `  graphbench query --backend embedded
  graphbench query -q q5 -p city=Manchester -p gender=female`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := config.ParseBackend(backend)
			if err != nil {
				return err
			}
			if len(params) > 0 && len(names) != 1 {
				return gberrors.NewValidationError(gberrors.CodeInvalidParam, "--param needs exactly one --query")
			}
			selected, err := selectQueries(names)
			if err != nil {
				return err
			}

			a, err := opts.open(nil)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			b, err := a.OpenBackend(cmd.Context(), name, false)
			if err != nil {
				return err
			}
			runner := a.Runner(b)
			for _, q := range selected {
				overrides, err := q.ParseParams(params)
				if err != nil {
					return err
				}
				res, err := runner.Exec(cmd.Context(), q, overrides)
				if err != nil {
					return err
				}
				if err := query.Print(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "backend", string(config.BackendEmbedded), "backend: neo4j or embedded")
	cmd.Flags().StringSliceVarP(&names, "query", "q", nil, "queries to run, e.g. q3 or 3 (default all)")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parameter override name=value")
	return cmd
}

// selectQueries resolves query names; none selects all.
func selectQueries(names []string) ([]*query.Query, error) {
	if len(names) == 0 {
		return query.All(), nil
	}
	out := make([]*query.Query, 0, len(names))
	for _, n := range names {
		q, err := query.LookupName(n)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}
