// Package app wires configuration to the graphbench components: generator,
// backends, loader, query runner, benchmark harness and dataset publisher.
// Resources opened through an App are released by Close in reverse order.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/graphbench/graphbench/internal/bench"
	"github.com/graphbench/graphbench/internal/config"
	"github.com/graphbench/graphbench/internal/dataset"
	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/generate"
	"github.com/graphbench/graphbench/internal/graphdb"
	"github.com/graphbench/graphbench/internal/graphdb/embedded"
	"github.com/graphbench/graphbench/internal/graphdb/neo4j"
	"github.com/graphbench/graphbench/internal/loader"
	"github.com/graphbench/graphbench/internal/logging"
	"github.com/graphbench/graphbench/internal/observability"
	"github.com/graphbench/graphbench/internal/query"
	"github.com/graphbench/graphbench/internal/storage"
)

// App holds the resolved configuration and every resource opened from it.
type App struct {
	cfg *config.Config
	log *zap.Logger

	mu      sync.Mutex
	closers []func(context.Context) error
	closed  bool
}

// New resolves and validates cfg and creates the data directories.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, gberrors.Wrap(gberrors.ErrCategoryInternal, gberrors.CodeWriteFailed, "create directories", err)
	}
	return &App{cfg: cfg, log: logging.OrNop(log)}, nil
}

// Config returns the resolved configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger { return a.log }

// Layout returns the dataset layout of the output directory.
func (a *App) Layout() dataset.Layout { return a.cfg.Layout() }

// GenerateOptions maps the generator configuration.
func (a *App) GenerateOptions() (generate.Options, error) {
	g := a.cfg.Generate
	ref, err := g.Reference()
	if err != nil {
		return generate.Options{}, gberrors.NewValidationError(gberrors.CodeInvalidConfig,
			fmt.Sprintf("generate.reference_date %q is not YYYY-MM-DD", g.ReferenceDate))
	}
	follows := generate.DefaultFollowsOptions()
	follows.SuperNodePermille = g.SuperNodePermille
	follows.MinFollowerPermille = g.MinFollowerPermille
	follows.MaxFollowerPercent = g.MaxFollowerPercent

	return generate.Options{
		Seed:           a.cfg.Seed,
		Persons:        g.Persons,
		Reference:      ref,
		CitiesFile:     a.cfg.CitiesFile(),
		InterestsFile:  a.cfg.InterestsFile(),
		Countries:      g.Countries,
		MinPopulation:  g.MinPopulation,
		LocationLimit:  g.LocationLimit,
		EdgeLimit:      g.EdgeLimit,
		Follows:        follows,
		InterestCounts: [2]int{g.MinInterests, g.MaxInterests},
	}, nil
}

// Generator returns a generator for opts writing to the output layout.
func (a *App) Generator(opts generate.Options) (*generate.Generator, error) {
	format, err := dataset.ParseFormat(a.cfg.Format)
	if err != nil {
		return nil, err
	}
	return generate.New(a.Layout(), format, opts, a.log.Named("generate")), nil
}

// OpenBackend connects to the named backend. With fresh set, the embedded
// database file is removed first; for neo4j fresh has no effect.
func (a *App) OpenBackend(ctx context.Context, name config.Backend, fresh bool) (graphdb.Backend, error) {
	log := a.log.Named(string(name))

	var b graphdb.Backend
	switch name {
	case config.BackendEmbedded:
		if fresh {
			if err := embedded.Remove(a.cfg.Embedded.Path); err != nil {
				return nil, gberrors.NewLoadError(gberrors.CodeConnectFailed, "remove embedded database", err)
			}
		}
		eb, err := embedded.Open(ctx, embedded.Options{
			Path:    a.cfg.Embedded.Path,
			Threads: a.cfg.Embedded.Threads,
		}, log)
		if err != nil {
			return nil, gberrors.NewLoadError(gberrors.CodeConnectFailed, "open embedded database", err)
		}
		b = eb
	case config.BackendNeo4j:
		nb, err := neo4j.Open(ctx, neo4j.Options{
			URI:      a.cfg.Neo4j.URI,
			User:     a.cfg.Neo4j.User,
			Password: a.cfg.Neo4j.Password,
			Database: a.cfg.Neo4j.Database,
			MaxPool:  a.cfg.Neo4j.MaxPool,
		}, log)
		if err != nil {
			return nil, gberrors.NewLoadError(gberrors.CodeConnectFailed, "connect to neo4j", err)
		}
		b = nb
	default:
		return nil, gberrors.NewValidationError(gberrors.CodeInvalidConfig,
			fmt.Sprintf("invalid backend: %s (must be neo4j or embedded)", name))
	}

	a.onClose(b.Close)
	log.Debug("backend opened")
	return b, nil
}

// Loader returns a loader of the output dataset into b.
func (a *App) Loader(b graphdb.Backend, batchSize int) *loader.Loader {
	if batchSize <= 0 {
		batchSize = a.cfg.Neo4j.BatchSize
	}
	return loader.New(b, a.Layout(), batchSize, a.log.Named("load"))
}

// Runner returns a query runner over b.
func (a *App) Runner(b graphdb.Backend) *query.Runner {
	return query.NewRunner(b, a.log.Named("query"))
}

// Harness returns a benchmark harness over b using the bench configuration.
func (a *App) Harness(b graphdb.Backend, queries []*query.Query) *bench.Harness {
	opts := bench.Options{
		Warmup:  a.cfg.Bench.Warmup,
		Rounds:  a.cfg.Bench.Rounds,
		Queries: queries,
	}
	return bench.New(a.Runner(b), opts, observability.NewMetrics(), a.log.Named("bench"))
}

// Publisher returns a dataset publisher over the configured object storage.
func (a *App) Publisher(ctx context.Context) (*storage.Publisher, error) {
	store, err := storage.NewFromConfig(ctx, a.cfg.Storage)
	if err != nil {
		return nil, gberrors.NewStorageError(gberrors.CodeUploadFailed, "open storage", err)
	}
	return storage.NewPublisher(store, a.cfg.Storage.Prefix, storage.DefaultConcurrency, a.log.Named("storage")), nil
}

func (a *App) onClose(fn func(context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

// Close releases every opened resource, most recent first, and returns the
// joined errors. Calling Close again is a no-op.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn("close failed", zap.Error(err))
		return err
	}
	return nil
}
