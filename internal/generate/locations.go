package generate

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/graphbench/graphbench/internal/dataset"
	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/pkg/types"
)

// World-cities columns read by the location generator.
var worldCitiesColumns = []string{"city_ascii", "lat", "lng", "country", "iso2", "admin_name", "population"}

// DefaultCountries are the ISO-2 codes kept when none are configured.
var DefaultCountries = []string{"US", "GB", "CA"}

// DefaultMinPopulation is the smallest city population kept.
const DefaultMinPopulation = 1_000_000

// LocationOptions controls location generation.
type LocationOptions struct {
	Countries     []string
	MinPopulation int64
	// Limit keeps only the first Limit filtered rows; 0 keeps all
	Limit int
}

// Locations holds the three location node tables.
type Locations struct {
	Cities    []types.City
	States    []types.State
	Countries []types.Country
}

// ReadWorldCities reads the comma-separated world-cities reference file.
func ReadWorldCities(path string) (*dataset.RawTable, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, gberrors.NewInputError(gberrors.CodeMissingFile, "open world cities file", err)
	}
	defer fh.Close()
	return dataset.ReadRaw(bufio.NewReader(fh), ',', worldCitiesColumns)
}

// BuildLocations filters the reference rows and derives cities, states and
// countries with dense ids.
func BuildLocations(raw *dataset.RawTable, opts LocationOptions) (*Locations, error) {
	countries := opts.Countries
	if len(countries) == 0 {
		countries = DefaultCountries
	}
	keep := make(map[string]bool, len(countries))
	for _, c := range countries {
		keep[strings.ToUpper(c)] = true
	}

	var cities []types.City
	for n, rec := range raw.Rows {
		if !keep[raw.Get(rec, "iso2")] {
			continue
		}
		line := n + 2
		pop, err := parsePopulation(raw.Get(rec, "population"))
		if err != nil {
			return nil, malformed(line, "population", err)
		}
		if pop < opts.MinPopulation {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(raw.Get(rec, "lat")), 64)
		if err != nil {
			return nil, malformed(line, "lat", err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(raw.Get(rec, "lng")), 64)
		if err != nil {
			return nil, malformed(line, "lng", err)
		}
		cities = append(cities, types.City{
			City:       raw.Get(rec, "city_ascii"),
			State:      raw.Get(rec, "admin_name"),
			Country:    raw.Get(rec, "country"),
			Lat:        lat,
			Lng:        lng,
			Population: pop,
		})
		if opts.Limit > 0 && len(cities) == opts.Limit {
			break
		}
	}

	kept := cities[:0]
	for _, c := range cities {
		c.State = StripAccents(c.State)
		if c.State == "" {
			continue
		}
		kept = append(kept, c)
	}
	cities = kept

	sort.SliceStable(cities, func(i, j int) bool {
		a, b := cities[i], cities[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.State != b.State {
			return a.State < b.State
		}
		return a.City < b.City
	})
	for i := range cities {
		cities[i].ID = int64(i + 1)
	}

	return &Locations{
		Cities:    cities,
		States:    deriveStates(cities),
		Countries: deriveCountries(cities),
	}, nil
}

// GenerateLocations reads path and builds the location tables.
func GenerateLocations(path string, opts LocationOptions) (*Locations, error) {
	raw, err := ReadWorldCities(path)
	if err != nil {
		return nil, err
	}
	return BuildLocations(raw, opts)
}

// deriveStates relies on cities being sorted by (country, state).
func deriveStates(cities []types.City) []types.State {
	var states []types.State
	for _, c := range cities {
		if n := len(states); n > 0 && states[n-1].State == c.State && states[n-1].Country == c.Country {
			continue
		}
		states = append(states, types.State{ID: int64(len(states) + 1), State: c.State, Country: c.Country})
	}
	return states
}

func deriveCountries(cities []types.City) []types.Country {
	var countries []types.Country
	for _, c := range cities {
		if n := len(countries); n > 0 && countries[n-1].Country == c.Country {
			continue
		}
		countries = append(countries, types.Country{ID: int64(len(countries) + 1), Country: c.Country})
	}
	return countries
}

// StripAccents decomposes s (NFKD) and drops every non-ASCII rune, so
// "Québec" becomes "Quebec".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// parsePopulation accepts integer or float notation; an empty value is 0.
func parsePopulation(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func malformed(line int, column string, err error) error {
	return gberrors.NewInputError(gberrors.CodeMalformedValue,
		fmt.Sprintf("world cities line %d column %s", line, column), err)
}
