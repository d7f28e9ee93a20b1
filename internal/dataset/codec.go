package dataset

import (
	"time"

	"github.com/graphbench/graphbench/pkg/types"
)

// PersonsFrame converts persons to a frame.
func PersonsFrame(persons []types.Person) *Frame {
	f := NewFrame(types.PersonSchema, len(persons))
	for _, p := range persons {
		f.Rows = append(f.Rows, []any{p.ID, p.Name, p.Gender, p.Birthday, p.Age, p.IsMarried})
	}
	return f
}

// PersonsFromFrame converts a persons frame back to records.
func PersonsFromFrame(f *Frame) []types.Person {
	out := make([]types.Person, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = types.Person{
			ID:        r[0].(int64),
			Name:      r[1].(string),
			Gender:    r[2].(string),
			Birthday:  r[3].(time.Time),
			Age:       r[4].(int64),
			IsMarried: r[5].(bool),
		}
	}
	return out
}

// CitiesFrame converts cities to a frame.
func CitiesFrame(cities []types.City) *Frame {
	f := NewFrame(types.CitySchema, len(cities))
	for _, c := range cities {
		f.Rows = append(f.Rows, []any{c.ID, c.City, c.State, c.Country, c.Lat, c.Lng, c.Population})
	}
	return f
}

// CitiesFromFrame converts a cities frame back to records.
func CitiesFromFrame(f *Frame) []types.City {
	out := make([]types.City, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = types.City{
			ID:         r[0].(int64),
			City:       r[1].(string),
			State:      r[2].(string),
			Country:    r[3].(string),
			Lat:        r[4].(float64),
			Lng:        r[5].(float64),
			Population: r[6].(int64),
		}
	}
	return out
}

// StatesFrame converts states to a frame.
func StatesFrame(states []types.State) *Frame {
	f := NewFrame(types.StateSchema, len(states))
	for _, s := range states {
		f.Rows = append(f.Rows, []any{s.ID, s.State, s.Country})
	}
	return f
}

// StatesFromFrame converts a states frame back to records.
func StatesFromFrame(f *Frame) []types.State {
	out := make([]types.State, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = types.State{ID: r[0].(int64), State: r[1].(string), Country: r[2].(string)}
	}
	return out
}

// CountriesFrame converts countries to a frame.
func CountriesFrame(countries []types.Country) *Frame {
	f := NewFrame(types.CountrySchema, len(countries))
	for _, c := range countries {
		f.Rows = append(f.Rows, []any{c.ID, c.Country})
	}
	return f
}

// CountriesFromFrame converts a countries frame back to records.
func CountriesFromFrame(f *Frame) []types.Country {
	out := make([]types.Country, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = types.Country{ID: r[0].(int64), Country: r[1].(string)}
	}
	return out
}

// InterestsFrame converts interests to a frame.
func InterestsFrame(interests []types.Interest) *Frame {
	f := NewFrame(types.InterestSchema, len(interests))
	for _, in := range interests {
		f.Rows = append(f.Rows, []any{in.ID, in.Interest})
	}
	return f
}

// InterestsFromFrame converts an interests frame back to records.
func InterestsFromFrame(f *Frame) []types.Interest {
	out := make([]types.Interest, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = types.Interest{ID: r[0].(int64), Interest: r[1].(string)}
	}
	return out
}

// EdgesFrame converts edges of a relation to a frame.
func EdgesFrame(rel types.Relation, edges []types.Edge) *Frame {
	f := NewFrame(types.EdgeSchema(rel), len(edges))
	for _, e := range edges {
		f.Rows = append(f.Rows, []any{e.From, e.To})
	}
	return f
}

// EdgesFromFrame converts an edge frame back to records.
func EdgesFromFrame(f *Frame) []types.Edge {
	out := make([]types.Edge, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = types.Edge{From: r[0].(int64), To: r[1].(int64)}
	}
	return out
}
