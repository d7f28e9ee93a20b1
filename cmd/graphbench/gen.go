package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/graphbench/graphbench/internal/generate"
)

// genStep describes one generator subcommand and what its --num means.
type genStep struct {
	name  string
	short string
	num   int
	usage string
	apply func(*generate.Options, int)
}

func edgeLimit(o *generate.Options, n int) { o.EdgeLimit = n }

var genSteps = []genStep{
	{"persons", "Generate person profiles", 10000, "number of persons",
		func(o *generate.Options, n int) { o.Persons = n }},
	{"interests", "Generate the interests table", 0, "keep the first N interests (0 = all)",
		func(o *generate.Options, n int) { o.InterestLimit = n }},
	{"locations", "Generate the cities, states and countries tables", 0, "keep the first N filtered cities (0 = all)",
		func(o *generate.Options, n int) { o.LocationLimit = n }},
	{"follows", "Generate Follows edges", generate.DefaultEdgeLimit, "maximum number of edges", edgeLimit},
	{"interests-edges", "Generate HasInterest edges", generate.DefaultEdgeLimit, "maximum number of edges", edgeLimit},
	{"lives-in", "Generate LivesIn edges", generate.DefaultEdgeLimit, "maximum number of edges", edgeLimit},
	{"city-in", "Generate CityIn edges", generate.DefaultEdgeLimit, "maximum number of edges", edgeLimit},
	{"state-in", "Generate StateIn edges", generate.DefaultEdgeLimit, "maximum number of edges", edgeLimit},
}

func newGenCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate dataset tables",
		Long: `Generate the dataset tables under the output directory. Steps read
their upstream tables from disk, so run persons, interests and locations
before the edge steps, or use "gen all".`,
	}
	for _, step := range genSteps {
		cmd.AddCommand(newGenStepCmd(opts, step))
	}
	cmd.AddCommand(newGenAllCmd(opts))
	return cmd
}

func newGenStepCmd(opts *globalOptions, step genStep) *cobra.Command {
	var (
		num  int
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   step.name,
		Short: step.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(nil)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			gopts, err := a.GenerateOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("num") {
				step.apply(&gopts, num)
			}
			if cmd.Flags().Changed("seed") {
				gopts.Seed = seed
			}

			g, err := a.Generator(gopts)
			if err != nil {
				return err
			}
			for _, s := range g.Steps() {
				if s.Name == step.name {
					a.Logger().Info("generating", zap.String("step", s.Name), zap.Uint64("seed", gopts.Seed))
					return s.Run(cmd.Context())
				}
			}
			return fmt.Errorf("unknown generator step %q", step.name)
		},
	}
	cmd.Flags().IntVarP(&num, "num", "n", step.num, step.usage)
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 0, "random seed")
	return cmd
}

func newGenAllCmd(opts *globalOptions) *cobra.Command {
	var (
		num  int
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run every generator step in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(nil)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			gopts, err := a.GenerateOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("num") {
				gopts.Persons = num
			}
			if cmd.Flags().Changed("seed") {
				gopts.Seed = seed
			}
			g, err := a.Generator(gopts)
			if err != nil {
				return err
			}
			return g.All(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&num, "num", "n", 10000, "number of persons")
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 0, "random seed")
	return cmd
}
