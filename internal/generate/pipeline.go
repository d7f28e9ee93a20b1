// Package generate synthesizes the social-network dataset: person, interest
// and location node tables, and the Follows, HasInterest, LivesIn, CityIn
// and StateIn edge tables.
//
// The table builders (GeneratePersons, BuildLocations, GenerateFollows, ...)
// are pure functions of their inputs and seed. Generator wires them to the
// dataset layout: each step reads its upstream tables from disk, writes its
// own table, and refreshes the dataset manifest.
package generate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/graphbench/graphbench/internal/dataset"
	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/logging"
	"github.com/graphbench/graphbench/pkg/types"
)

// Options holds every generator setting. Zero limits mean "no limit".
type Options struct {
	Seed          uint64
	Persons       int
	Reference     time.Time
	CitiesFile    string
	InterestsFile string

	Countries      []string
	MinPopulation  int64
	LocationLimit  int
	InterestLimit  int
	EdgeLimit      int
	Follows        FollowsOptions
	InterestCounts [2]int
}

// Generator runs generation steps against a dataset layout.
type Generator struct {
	layout dataset.Layout
	format dataset.Format
	opts   Options
	log    *zap.Logger
}

// New returns a generator writing tables under layout.
func New(layout dataset.Layout, format dataset.Format, opts Options, log *zap.Logger) *Generator {
	return &Generator{layout: layout, format: format, opts: opts, log: logging.OrNop(log)}
}

// Step is one named generation step.
type Step struct {
	Name string
	Run  func(context.Context) error
}

// Steps returns every step in dependency order.
func (g *Generator) Steps() []Step {
	return []Step{
		{"persons", g.Persons},
		{"interests", g.Interests},
		{"locations", g.Locations},
		{"follows", g.Follows},
		{"interests-edges", g.HasInterest},
		{"lives-in", g.LivesIn},
		{"city-in", g.CityIn},
		{"state-in", g.StateIn},
	}
}

// All runs every step in order and stops at the first error.
func (g *Generator) All(ctx context.Context) error {
	start := time.Now()
	for _, step := range g.Steps() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.Run(ctx); err != nil {
			return err
		}
	}
	g.log.Info("dataset generated", zap.String("root", g.layout.Root), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Persons writes the persons table.
func (g *Generator) Persons(ctx context.Context) error {
	persons, err := GeneratePersons(PersonOptions{Count: g.opts.Persons, Seed: g.opts.Seed, Reference: g.opts.Reference})
	if err != nil {
		return err
	}
	return g.saveNodes(types.LabelPerson, dataset.PersonsFrame(persons))
}

// Interests writes the interests table.
func (g *Generator) Interests(ctx context.Context) error {
	interests, err := GenerateInterests(g.opts.InterestsFile, g.opts.InterestLimit)
	if err != nil {
		return err
	}
	return g.saveNodes(types.LabelInterest, dataset.InterestsFrame(interests))
}

// Locations writes the cities, states and countries tables.
func (g *Generator) Locations(ctx context.Context) error {
	locs, err := GenerateLocations(g.opts.CitiesFile, LocationOptions{
		Countries:     g.opts.Countries,
		MinPopulation: g.opts.MinPopulation,
		Limit:         g.opts.LocationLimit,
	})
	if err != nil {
		return err
	}
	if err := g.saveNodes(types.LabelCity, dataset.CitiesFrame(locs.Cities)); err != nil {
		return err
	}
	if err := g.saveNodes(types.LabelState, dataset.StatesFrame(locs.States)); err != nil {
		return err
	}
	return g.saveNodes(types.LabelCountry, dataset.CountriesFrame(locs.Countries))
}

// Follows writes the degree-skewed Follows table.
func (g *Generator) Follows(ctx context.Context) error {
	ids, err := g.personIDs()
	if err != nil {
		return err
	}
	opts := g.opts.Follows
	opts.Seed = g.opts.Seed
	opts.Limit = g.opts.EdgeLimit

	res, err := GenerateFollows(ids, opts)
	if err != nil {
		return err
	}
	lo, hi := opts.SuperNodeBounds(len(ids))
	g.log.Info("follows sampled",
		zap.Int("base_edges", res.BaseEdges),
		zap.Int("super_nodes", len(res.SuperNodes)),
		zap.Int("min_followers", lo),
		zap.Int("max_followers", hi),
		zap.Int("deduplicated", res.Generated))
	if len(res.Edges) < res.Generated {
		g.log.Info("limiting edges", zap.Int("limit", opts.Limit))
	}
	return g.saveEdges(types.RelFollows, res.Edges)
}

// HasInterest writes the person-interest table.
func (g *Generator) HasInterest(ctx context.Context) error {
	ids, err := g.personIDs()
	if err != nil {
		return err
	}
	interests, err := g.layout.LoadInterests()
	if err != nil {
		return err
	}
	interestIDs := make([]int64, len(interests))
	for i, in := range interests {
		interestIDs[i] = in.ID
	}

	edges, err := GenerateHasInterest(ids, interestIDs, HasInterestOptions{
		Seed:  g.opts.Seed,
		Limit: g.opts.EdgeLimit,
		Min:   g.opts.InterestCounts[0],
		Max:   g.opts.InterestCounts[1],
	})
	if err != nil {
		return err
	}
	return g.saveEdges(types.RelHasInterest, edges)
}

// LivesIn writes the person-residence table.
func (g *Generator) LivesIn(ctx context.Context) error {
	ids, err := g.personIDs()
	if err != nil {
		return err
	}
	cities, err := g.layout.LoadCities()
	if err != nil {
		return err
	}

	res, err := GenerateLivesIn(ids, cities, LivesInOptions{
		Seed:          g.opts.Seed,
		Limit:         g.opts.EdgeLimit,
		MinPopulation: g.opts.MinPopulation,
	})
	if err != nil {
		return err
	}
	top := make([]string, len(res.TopCities))
	for i, c := range res.TopCities {
		top[i] = c.City.City
	}
	g.log.Info("residences assigned", zap.Strings("top_cities", top))
	return g.saveEdges(types.RelLivesIn, res.Edges)
}

// CityIn writes the city-state table.
func (g *Generator) CityIn(ctx context.Context) error {
	cities, err := g.layout.LoadCities()
	if err != nil {
		return err
	}
	states, err := g.layout.LoadStates()
	if err != nil {
		return err
	}
	edges, err := CityIn(cities, states)
	if err != nil {
		return err
	}
	return g.saveEdges(types.RelCityIn, truncate(edges, g.opts.EdgeLimit))
}

// StateIn writes the state-country table.
func (g *Generator) StateIn(ctx context.Context) error {
	states, err := g.layout.LoadStates()
	if err != nil {
		return err
	}
	countries, err := g.layout.LoadCountries()
	if err != nil {
		return err
	}
	edges, err := StateIn(states, countries)
	if err != nil {
		return err
	}
	return g.saveEdges(types.RelStateIn, truncate(edges, g.opts.EdgeLimit))
}

func (g *Generator) personIDs() ([]int64, error) {
	persons, err := g.layout.LoadPersons()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(persons))
	for i, p := range persons {
		ids[i] = p.ID
	}
	return ids, nil
}

func (g *Generator) saveNodes(label types.NodeLabel, f *dataset.Frame) error {
	paths, err := g.layout.SaveNodes(label, f, g.format)
	if err != nil {
		return err
	}
	g.log.Info("wrote nodes", zap.String("table", f.Schema.Name), zap.Int("rows", f.Len()), zap.Strings("files", paths))
	return g.refreshManifest()
}

func (g *Generator) saveEdges(rel types.Relation, edges []types.Edge) error {
	f := dataset.EdgesFrame(rel, edges)
	paths, err := g.layout.SaveEdges(rel, f, g.format)
	if err != nil {
		return err
	}
	g.log.Info("wrote edges", zap.String("table", f.Schema.Name), zap.Int("rows", f.Len()), zap.Strings("files", paths))
	return g.refreshManifest()
}

func (g *Generator) refreshManifest() error {
	m, err := dataset.BuildManifest(g.layout, g.opts.Seed)
	if err != nil {
		return err
	}
	if err := dataset.WriteManifest(g.layout, m); err != nil {
		return gberrors.NewGenerateError(gberrors.CodeWriteFailed, "write manifest", err)
	}
	return nil
}
