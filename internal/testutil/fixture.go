// Package testutil builds small generated datasets for tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graphbench/graphbench/internal/dataset"
	"github.com/graphbench/graphbench/internal/generate"
)

// WorldCities is a world-cities extract with seven eligible cities in three
// countries, one city below the population threshold, one row without a
// state and one country outside the default set.
const WorldCities = `"city","city_ascii","lat","lng","country","iso2","iso3","admin_name","capital","population","id"
"New York","New York","40.6943","-73.9249","United States","US","USA","New York","","18908608","1840034016"
"Los Angeles","Los Angeles","34.1141","-118.4068","United States","US","USA","California","","12121244","1840020491"
"Chicago","Chicago","41.8375","-87.6866","United States","US","USA","Illinois","","8497759","1840000494"
"Smallville","Smallville","40.0","-90.0","United States","US","USA","Kansas","","5000",""
"London","London","51.5072","-0.1275","United Kingdom","GB","GBR","London, City of","primary","11262000","1826645935"
"Manchester","Manchester","53.4794","-2.2453","United Kingdom","GB","GBR","Manchester","","2705000","1826246541"
"Montréal","Montreal","45.5089","-73.5617","Canada","CA","CAN","Québec","admin","4276526","1124586170"
"Toronto","Toronto","43.7417","-79.3733","Canada","CA","CAN","Ontario","admin","5647656.0","1124279679"
"Nowhere","Nowhere","0","0","Canada","CA","CAN","","","3000000",""
"Paris","Paris","48.8567","2.3522","France","FR","FRA","Île-de-France","primary","11060000","1250015082"
`

// Interests lists the interest labels, including the ones the default query
// parameters ask for.
const Interests = `interest
tennis
fine dining
photography
hiking
cooking
`

// WriteRaw writes the reference files into dir and returns their paths.
func WriteRaw(t testing.TB, dir string) (cities, interests string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	cities = filepath.Join(dir, "worldcities.csv")
	interests = filepath.Join(dir, "interests.csv")
	require.NoError(t, os.WriteFile(cities, []byte(WorldCities), 0644))
	require.NoError(t, os.WriteFile(interests, []byte(Interests), 0644))
	return cities, interests
}

// Options returns generator options over the reference files.
func Options(cities, interests string, persons int, seed uint64) generate.Options {
	return generate.Options{
		Seed:           seed,
		Persons:        persons,
		CitiesFile:     cities,
		InterestsFile:  interests,
		MinPopulation:  generate.DefaultMinPopulation,
		EdgeLimit:      generate.DefaultEdgeLimit,
		Follows:        generate.DefaultFollowsOptions(),
		InterestCounts: [2]int{1, 5},
	}
}

// Dataset generates a complete dataset under a temporary directory.
func Dataset(t testing.TB, persons int, seed uint64) dataset.Layout {
	t.Helper()
	root := t.TempDir()
	cities, interests := WriteRaw(t, filepath.Join(root, "raw"))
	layout := dataset.NewLayout(filepath.Join(root, "output"))
	g := generate.New(layout, dataset.FormatBoth, Options(cities, interests, persons, seed), nil)
	require.NoError(t, g.All(context.Background()))
	return layout
}
