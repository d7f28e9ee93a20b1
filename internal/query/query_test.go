package query

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphbench/graphbench/internal/dataset"
	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/graphdb"
	"github.com/graphbench/graphbench/internal/graphdb/embedded"
	"github.com/graphbench/graphbench/internal/loader"
	"github.com/graphbench/graphbench/internal/testutil"
	"github.com/graphbench/graphbench/pkg/types"
)

// graph is the generated dataset held in memory.
type graph struct {
	persons   map[int64]types.Person
	cities    map[int64]types.City
	states    map[int64]types.State
	interests map[int64]types.Interest
	follows   []types.Edge
	livesIn   map[int64]int64
	hasInt    map[int64][]int64
	cityState map[int64]int64
}

func loadGraph(t *testing.T, l dataset.Layout) *graph {
	t.Helper()
	g := &graph{
		persons:   map[int64]types.Person{},
		cities:    map[int64]types.City{},
		states:    map[int64]types.State{},
		interests: map[int64]types.Interest{},
		livesIn:   map[int64]int64{},
		hasInt:    map[int64][]int64{},
		cityState: map[int64]int64{},
	}
	persons, err := l.LoadPersons()
	require.NoError(t, err)
	for _, p := range persons {
		g.persons[p.ID] = p
	}
	cities, err := l.LoadCities()
	require.NoError(t, err)
	for _, c := range cities {
		g.cities[c.ID] = c
	}
	states, err := l.LoadStates()
	require.NoError(t, err)
	for _, s := range states {
		g.states[s.ID] = s
	}
	interests, err := l.LoadInterests()
	require.NoError(t, err)
	for _, in := range interests {
		g.interests[in.ID] = in
	}
	g.follows, err = l.LoadEdgeList(types.RelFollows)
	require.NoError(t, err)
	livesIn, err := l.LoadEdgeList(types.RelLivesIn)
	require.NoError(t, err)
	for _, e := range livesIn {
		g.livesIn[e.From] = e.To
	}
	hasInt, err := l.LoadEdgeList(types.RelHasInterest)
	require.NoError(t, err)
	for _, e := range hasInt {
		g.hasInt[e.From] = append(g.hasInt[e.From], e.To)
	}
	cityIn, err := l.LoadEdgeList(types.RelCityIn)
	require.NoError(t, err)
	for _, e := range cityIn {
		g.cityState[e.From] = e.To
	}
	return g
}

func (g *graph) interestedIn(person int64, interest string) bool {
	for _, id := range g.hasInt[person] {
		if strings.EqualFold(g.interests[id].Interest, interest) {
			return true
		}
	}
	return false
}

func setup(t *testing.T) (*Runner, *graph) {
	t.Helper()
	ctx := context.Background()
	layout := testutil.Dataset(t, 400, 11)

	b, err := embedded.Open(ctx, embedded.Options{Path: filepath.Join(t.TempDir(), "graph.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close(ctx) })
	_, err = loader.New(b, layout, 0, nil).Load(ctx)
	require.NoError(t, err)

	return NewRunner(b, nil), loadGraph(t, layout)
}

type count struct {
	key []any
	n   int64
}

// top sorts counts by n descending then by key and keeps limit.
func top(counts map[string]*count, limit int) []*count {
	out := make([]*count, 0, len(counts))
	for _, c := range counts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		for k := range out[i].key {
			a, b := graphdb.FormatValue(out[i].key[k]), graphdb.FormatValue(out[j].key[k])
			if a != b {
				if x, ok := out[i].key[k].(int64); ok {
					return x < out[j].key[k].(int64)
				}
				return a < b
			}
		}
		return false
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func tally(counts map[string]*count, key ...any) {
	parts := make([]string, len(key))
	for i, k := range key {
		parts[i] = graphdb.FormatValue(k)
	}
	id := strings.Join(parts, "\x00")
	if c, ok := counts[id]; ok {
		c.n++
		return
	}
	counts[id] = &count{key: key, n: 1}
}

func TestQueries_AgreeWithInMemory(t *testing.T) {
	ctx := context.Background()
	r, g := setup(t)

	indeg := map[int64]int64{}
	outdeg := map[int64]int64{}
	for _, e := range g.follows {
		indeg[e.To]++
		outdeg[e.From]++
	}

	t.Run("q1", func(t *testing.T) {
		counts := map[string]*count{}
		for _, e := range g.follows {
			tally(counts, e.To)
		}
		want := top(counts, 3)

		rs, _, err := r.Run(ctx, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"personID", "name", "numFollowers"}, rs.Columns)
		require.Equal(t, len(want), rs.Len())
		for i, c := range want {
			id := c.key[0].(int64)
			assert.Equal(t, []any{id, g.persons[id].Name, c.n}, rs.Rows[i])
		}
	})

	t.Run("q2", func(t *testing.T) {
		counts := map[string]*count{}
		for _, e := range g.follows {
			tally(counts, e.To)
		}
		best := top(counts, 1)[0]
		id := best.key[0].(int64)
		city := g.cities[g.livesIn[id]]

		rs, _, err := r.Run(ctx, 2, nil)
		require.NoError(t, err)
		require.Equal(t, 1, rs.Len())
		assert.Equal(t, []any{g.persons[id].Name, best.n, city.City, city.State, city.Country}, rs.Rows[0])
	})

	t.Run("q3", func(t *testing.T) {
		sums := map[string][2]float64{}
		for pid, cid := range g.livesIn {
			c := g.cities[cid]
			if c.Country != "United States" {
				continue
			}
			s := sums[c.City]
			sums[c.City] = [2]float64{s[0] + float64(g.persons[pid].Age), s[1] + 1}
		}
		type avg struct {
			city string
			age  float64
		}
		var want []avg
		for city, s := range sums {
			want = append(want, avg{city, s[0] / s[1]})
		}
		sort.Slice(want, func(i, j int) bool {
			if want[i].age != want[j].age {
				return want[i].age < want[j].age
			}
			return want[i].city < want[j].city
		})
		if len(want) > 5 {
			want = want[:5]
		}

		rs, _, err := r.Run(ctx, 3, nil)
		require.NoError(t, err)
		require.Equal(t, len(want), rs.Len())
		for i, w := range want {
			assert.Equal(t, w.city, rs.Get(i, "city"))
			assert.InDelta(t, w.age, rs.Get(i, "averageAge"), 1e-9)
		}
	})

	t.Run("q4", func(t *testing.T) {
		counts := map[string]*count{}
		for pid, cid := range g.livesIn {
			if age := g.persons[pid].Age; age >= 30 && age <= 40 {
				tally(counts, g.cities[cid].Country)
			}
		}
		want := top(counts, 3)

		rs, _, err := r.Run(ctx, 4, nil)
		require.NoError(t, err)
		require.Equal(t, len(want), rs.Len())
		for i, c := range want {
			assert.Equal(t, []any{c.key[0], c.n}, rs.Rows[i])
		}
	})

	t.Run("q5", func(t *testing.T) {
		var want int64
		for pid, p := range g.persons {
			c := g.cities[g.livesIn[pid]]
			if p.Gender == "male" && c.City == "London" && c.Country == "United Kingdom" && g.interestedIn(pid, "Fine Dining") {
				want++
			}
		}
		rs, _, err := r.Run(ctx, 5, map[string]any{"interest": "Fine Dining"})
		require.NoError(t, err)
		assert.Equal(t, [][]any{{want}}, rs.Rows)
	})

	t.Run("q6", func(t *testing.T) {
		counts := map[string]*count{}
		for pid, p := range g.persons {
			if p.Gender == "female" && g.interestedIn(pid, "tennis") {
				c := g.cities[g.livesIn[pid]]
				tally(counts, c.City, c.Country)
			}
		}
		want := top(counts, 5)

		rs, _, err := r.Run(ctx, 6, nil)
		require.NoError(t, err)
		require.Equal(t, len(want), rs.Len())
		for i, c := range want {
			assert.Equal(t, []any{c.n, c.key[0], c.key[1]}, rs.Rows[i])
		}
	})

	t.Run("q7", func(t *testing.T) {
		counts := map[string]*count{}
		for pid, p := range g.persons {
			st := g.states[g.cityState[g.livesIn[pid]]]
			if p.Age >= 23 && p.Age <= 30 && st.Country == "United States" && g.interestedIn(pid, "photography") {
				tally(counts, st.State, st.Country)
			}
		}
		want := top(counts, 1)

		rs, _, err := r.Run(ctx, 7, nil)
		require.NoError(t, err)
		require.Equal(t, len(want), rs.Len())
		for i, c := range want {
			assert.Equal(t, []any{c.n, c.key[0], c.key[1]}, rs.Rows[i])
		}
	})

	t.Run("q8", func(t *testing.T) {
		var want int64
		for id, in := range indeg {
			want += in * outdeg[id]
		}
		rs, _, err := r.Run(ctx, 8, nil)
		require.NoError(t, err)
		assert.Equal(t, [][]any{{want}}, rs.Rows)
	})

	t.Run("q9", func(t *testing.T) {
		older := map[int64]int64{}
		for _, e := range g.follows {
			if g.persons[e.To].Age > 25 {
				older[e.From]++
			}
		}
		var want int64
		for _, e := range g.follows {
			if g.persons[e.To].Age < 50 {
				want += older[e.To]
			}
		}
		rs, _, err := r.Run(ctx, 9, nil)
		require.NoError(t, err)
		assert.Equal(t, [][]any{{want}}, rs.Rows)
	})
}

func TestRunAll(t *testing.T) {
	r, _ := setup(t)
	results, err := r.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 9)
	for i, res := range results {
		assert.Equal(t, i+1, res.Query.ID)
		assert.NotEmpty(t, res.Rows.Columns)
		assert.Len(t, res.Params, len(res.Query.Defaults))
	}

	var sb strings.Builder
	require.NoError(t, Print(&sb, results[0]))
	assert.Contains(t, sb.String(), "Query 1: Top 3 most-followed persons")
	assert.Contains(t, sb.String(), "personID")
	assert.Contains(t, sb.String(), "numFollowers")
}

func TestLookup(t *testing.T) {
	q, err := LookupName("Q7")
	require.NoError(t, err)
	assert.Equal(t, 7, q.ID)
	assert.Equal(t, "q7", q.Name())
	assert.Equal(t, []string{"age_lower", "age_upper", "country", "interest"}, q.ParamNames())

	_, err = Lookup(10)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeUnknownQuery, gberrors.GetCode(err))
	_, err = LookupName("top")
	assert.Error(t, err)
}

func TestBindAndParseParams(t *testing.T) {
	q, err := Lookup(4)
	require.NoError(t, err)

	bound, err := q.Bind(map[string]any{"age_lower": 25})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"age_lower": int64(25), "age_upper": int64(40)}, bound)

	_, err = q.Bind(map[string]any{"country": "Canada"})
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeInvalidParam, gberrors.GetCode(err))

	_, err = q.Bind(map[string]any{"age_lower": "25"})
	assert.Error(t, err)

	params, err := q.ParseParams([]string{"age_lower=20", " age_upper = 35"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"age_lower": int64(20), "age_upper": int64(35)}, params)

	_, err = q.ParseParams([]string{"age_lower=old"})
	assert.Error(t, err)
	_, err = q.ParseParams([]string{"age_lower"})
	assert.Error(t, err)

	q3, _ := Lookup(3)
	params, err = q3.ParseParams([]string{"country=Canada"})
	require.NoError(t, err)
	assert.Equal(t, "Canada", params["country"])
}

func TestStatementsShareParameters(t *testing.T) {
	for _, q := range All() {
		for _, name := range q.ParamNames() {
			assert.Contains(t, q.Cypher, "$"+name, q.Name())
			assert.Contains(t, q.SQL, "$"+name, q.Name())
		}
		assert.Equal(t, q.Cypher, q.Statement(graphdb.DialectCypher))
		assert.Equal(t, q.SQL, q.Statement(graphdb.DialectSQL))
	}
}
