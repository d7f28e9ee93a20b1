package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graphbench/graphbench/internal/app"
	"github.com/graphbench/graphbench/internal/config"
	"github.com/graphbench/graphbench/internal/logging"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile string
	envFile    string
	dataDir    string
	outputDir  string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "graphbench",
		Short: "Generate, load, query and benchmark a social-network graph",
		Long: `graphbench builds a synthetic social network (persons, interests and
locations joined by Follows, HasInterest, LivesIn, CityIn and StateIn edges),
loads it into Neo4j or the embedded SQLite backend, and runs a fixed battery
of nine analytical queries against it.

Configuration precedence: defaults < --config file < environment (.env is
loaded first) < command line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "configuration file (YAML or JSON)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with credentials")
	pf.StringVar(&opts.dataDir, "data-dir", "", "base directory for all data files")
	pf.StringVar(&opts.outputDir, "output-dir", "", "dataset directory (default <data-dir>/output)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: console, json")

	root.AddCommand(
		newGenCmd(opts),
		newLoadCmd(opts),
		newQueryCmd(opts),
		newBenchCmd(opts),
		newPublishCmd(opts),
		newFetchCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig layers the config file, the environment and the global flags
// over the defaults.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if o.configFile != "" {
		var err error
		cfg, err = config.LoadFromFile(o.configFile)
		if err != nil {
			return nil, err
		}
	}
	config.LoadFromEnv(cfg)

	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	return cfg, nil
}

// open builds the application after mutate has applied command flags.
func (o *globalOptions) open(mutate func(*config.Config) error) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		if err := mutate(cfg); err != nil {
			return nil, err
		}
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return app.New(cfg, log)
}
