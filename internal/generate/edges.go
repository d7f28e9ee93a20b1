package generate

import (
	"fmt"
	"sort"

	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/sampling"
	"github.com/graphbench/graphbench/pkg/types"
)

// DefaultEdgeLimit is large enough to never truncate.
const DefaultEdgeLimit = 1_000_000_000

// baseFollowsFactor is the number of uniform Follows pairs drawn per person.
const baseFollowsFactor = 10

// FollowsOptions controls Follows generation. Fractions are taken of the
// person count with integer division.
type FollowsOptions struct {
	Seed  uint64
	Limit int

	SuperNodePermille   int
	MinFollowerPermille int
	MaxFollowerPercent  int
}

// DefaultFollowsOptions returns the 0.5% super nodes, 0.5%-5% followers mix.
func DefaultFollowsOptions() FollowsOptions {
	return FollowsOptions{
		Limit:               DefaultEdgeLimit,
		SuperNodePermille:   5,
		MinFollowerPermille: 5,
		MaxFollowerPercent:  5,
	}
}

// SuperNode is a person given a block of extra followers.
type SuperNode struct {
	ID int64
	// Followers is the drawn follower count before self-follow removal and
	// deduplication against the base edges
	Followers int
}

// FollowsResult is the Follows table plus the numbers behind it.
type FollowsResult struct {
	Edges      []types.Edge
	BaseEdges  int
	SuperNodes []SuperNode
	// Generated is the deduplicated count before the limit is applied
	Generated int
}

// SuperNodeBounds returns the follower count range [lo, hi) for n persons.
func (o FollowsOptions) SuperNodeBounds(n int) (int, int) {
	return n * o.MinFollowerPermille / 1000, n * o.MaxFollowerPercent / 100
}

// GenerateFollows builds the degree-skewed Follows table over personIDs.
//
// Stage one draws 10 x |persons| (to, from) pairs uniformly with replacement
// and discards self pairs. Stage two samples super nodes without
// replacement; each gets a follower count uniform in SuperNodeBounds and
// that many distinct followers, pointing follower -> super node. The union
// is deduplicated, sorted by (to, from) and cut to Limit.
func GenerateFollows(personIDs []int64, opts FollowsOptions) (*FollowsResult, error) {
	n := len(personIDs)
	s := sampling.New(opts.Seed)

	tos := s.Choice(personIDs, n*baseFollowsFactor)
	froms := s.Choice(personIDs, n*baseFollowsFactor)
	edges := make([]types.Edge, 0, len(tos))
	for i := range tos {
		if tos[i] != froms[i] {
			edges = append(edges, types.Edge{From: froms[i], To: tos[i]})
		}
	}
	res := &FollowsResult{BaseEdges: len(edges)}

	superIDs, err := s.SampleDistinctFrom(personIDs, n*opts.SuperNodePermille/1000)
	if err != nil {
		return nil, gberrors.NewGenerateError(gberrors.CodeInvalidParam, "sample super nodes", err)
	}
	sort.Slice(superIDs, func(i, j int) bool { return superIDs[i] < superIDs[j] })

	lo, hi := opts.SuperNodeBounds(n)
	res.SuperNodes = make([]SuperNode, len(superIDs))
	for i, id := range superIDs {
		k := s.IntRange(lo, hi)
		if k > n {
			k = n
		}
		res.SuperNodes[i] = SuperNode{ID: id, Followers: k}
	}
	for _, sn := range res.SuperNodes {
		followers, err := s.SampleDistinctFrom(personIDs, sn.Followers)
		if err != nil {
			return nil, gberrors.NewGenerateError(gberrors.CodeInvalidParam,
				fmt.Sprintf("sample followers of %d", sn.ID), err)
		}
		for _, f := range followers {
			if f != sn.ID {
				edges = append(edges, types.Edge{From: f, To: sn.ID})
			}
		}
	}

	edges = sortUnique(edges, byToFrom)
	res.Generated = len(edges)
	res.Edges = truncate(edges, opts.Limit)
	return res, nil
}

// HasInterestOptions controls HasInterest generation.
type HasInterestOptions struct {
	Seed  uint64
	Limit int
	// Each person draws a count uniform in [Min, Max)
	Min, Max int
}

// DefaultHasInterestOptions returns 1 to 4 interests per person.
func DefaultHasInterestOptions() HasInterestOptions {
	return HasInterestOptions{Limit: DefaultEdgeLimit, Min: 1, Max: 5}
}

// GenerateHasInterest gives each person a random number of distinct
// interests. Counts above the number of interests are clamped. The table is
// sorted by (person, interest) and cut to Limit.
func GenerateHasInterest(personIDs, interestIDs []int64, opts HasInterestOptions) ([]types.Edge, error) {
	if len(personIDs) > 0 && len(interestIDs) == 0 {
		return nil, gberrors.NewGenerateError(gberrors.CodeEmptyPopulation, "no interests to assign", nil)
	}
	s := sampling.New(opts.Seed)

	counts := make([]int, len(personIDs))
	for i := range counts {
		counts[i] = min(s.IntRange(opts.Min, opts.Max), len(interestIDs))
	}

	var edges []types.Edge
	for i, person := range personIDs {
		picks, err := s.SampleDistinctFrom(interestIDs, counts[i])
		if err != nil {
			return nil, gberrors.NewGenerateError(gberrors.CodeInvalidParam, "sample interests", err)
		}
		for _, in := range picks {
			edges = append(edges, types.Edge{From: person, To: in})
		}
	}

	sort.Slice(edges, func(i, j int) bool { return byFromTo(edges[i], edges[j]) })
	return truncate(edges, opts.Limit), nil
}

// LivesInOptions controls LivesIn generation.
type LivesInOptions struct {
	Seed          uint64
	Limit         int
	MinPopulation int64
}

// CityCount is a residence tally.
type CityCount struct {
	City    types.City
	Persons int
}

// LivesInResult is the LivesIn table plus the most common residences.
type LivesInResult struct {
	Edges     []types.Edge
	TopCities []CityCount
}

// GenerateLivesIn assigns each person, in order, a city drawn uniformly with
// replacement among cities with population >= MinPopulation.
func GenerateLivesIn(personIDs []int64, cities []types.City, opts LivesInOptions) (*LivesInResult, error) {
	byID := make(map[int64]types.City, len(cities))
	var eligible []int64
	for _, c := range cities {
		if c.Population >= opts.MinPopulation {
			eligible = append(eligible, c.ID)
			byID[c.ID] = c
		}
	}
	if len(personIDs) > 0 && len(eligible) == 0 {
		return nil, gberrors.NewGenerateError(gberrors.CodeEmptyPopulation,
			fmt.Sprintf("no city with population >= %d", opts.MinPopulation), nil)
	}

	s := sampling.New(opts.Seed)
	picks := s.Choice(eligible, len(personIDs))

	edges := make([]types.Edge, len(personIDs))
	tally := make(map[int64]int)
	for i, person := range personIDs {
		edges[i] = types.Edge{From: person, To: picks[i]}
		tally[picks[i]]++
	}

	top := make([]CityCount, 0, len(tally))
	for id, n := range tally {
		top = append(top, CityCount{City: byID[id], Persons: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Persons != top[j].Persons {
			return top[i].Persons > top[j].Persons
		}
		return top[i].City.ID < top[j].City.ID
	})
	if len(top) > 5 {
		top = top[:5]
	}

	return &LivesInResult{Edges: truncate(edges, opts.Limit), TopCities: top}, nil
}

// CityIn joins each city to its state on (state, country).
func CityIn(cities []types.City, states []types.State) ([]types.Edge, error) {
	type key struct{ state, country string }
	ids := make(map[key]int64, len(states))
	for _, st := range states {
		ids[key{st.State, st.Country}] = st.ID
	}

	edges := make([]types.Edge, 0, len(cities))
	for _, c := range cities {
		id, ok := ids[key{c.State, c.Country}]
		if !ok {
			return nil, gberrors.NewGenerateError(gberrors.CodeMissingColumn,
				fmt.Sprintf("city %d (%s) has no state %q in %s", c.ID, c.City, c.State, c.Country), nil)
		}
		edges = append(edges, types.Edge{From: c.ID, To: id})
	}
	return edges, nil
}

// StateIn joins each state to its country by name.
func StateIn(states []types.State, countries []types.Country) ([]types.Edge, error) {
	ids := make(map[string]int64, len(countries))
	for _, c := range countries {
		ids[c.Country] = c.ID
	}

	edges := make([]types.Edge, 0, len(states))
	for _, st := range states {
		id, ok := ids[st.Country]
		if !ok {
			return nil, gberrors.NewGenerateError(gberrors.CodeMissingColumn,
				fmt.Sprintf("state %d (%s) has no country %q", st.ID, st.State, st.Country), nil)
		}
		edges = append(edges, types.Edge{From: st.ID, To: id})
	}
	return edges, nil
}

func byToFrom(a, b types.Edge) bool {
	if a.To != b.To {
		return a.To < b.To
	}
	return a.From < b.From
}

func byFromTo(a, b types.Edge) bool {
	if a.From != b.From {
		return a.From < b.From
	}
	return a.To < b.To
}

// sortUnique sorts edges with less and drops adjacent duplicates in place.
func sortUnique(edges []types.Edge, less func(a, b types.Edge) bool) []types.Edge {
	sort.Slice(edges, func(i, j int) bool { return less(edges[i], edges[j]) })
	out := edges[:0]
	for _, e := range edges {
		if len(out) > 0 && e == out[len(out)-1] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// truncate keeps the first limit edges; a non-positive limit keeps all.
func truncate(edges []types.Edge, limit int) []types.Edge {
	if limit > 0 && limit < len(edges) {
		return edges[:limit]
	}
	return edges
}
