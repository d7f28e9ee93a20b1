// Package types defines the record types and table schemas of the generated
// social-network dataset.
package types

import "time"

// Person is a synthesized user profile.
type Person struct {
	ID        int64
	Name      string
	Gender    string
	Birthday  time.Time
	Age       int64
	IsMarried bool
}

// City is a populated place from the world-cities reference data.
type City struct {
	ID         int64
	City       string
	State      string
	Country    string
	Lat        float64
	Lng        float64
	Population int64
}

// State is a first-level administrative area, unique per country.
type State struct {
	ID      int64
	State   string
	Country string
}

// Country is identified by its full name.
type Country struct {
	ID      int64
	Country string
}

// Interest is a hobby or activity label.
type Interest struct {
	ID       int64
	Interest string
}

// Edge is a directed relationship between two surrogate keys.
type Edge struct {
	From int64
	To   int64
}

// Genders accepted by the person generator.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// NodeLabel names a node table in a graph backend.
type NodeLabel string

const (
	LabelPerson   NodeLabel = "Person"
	LabelCity     NodeLabel = "City"
	LabelState    NodeLabel = "State"
	LabelCountry  NodeLabel = "Country"
	LabelInterest NodeLabel = "Interest"
)

// NodeLabels lists every node label in load order.
var NodeLabels = []NodeLabel{LabelPerson, LabelInterest, LabelCity, LabelState, LabelCountry}

// Schema returns the dataset schema backing the label.
func (l NodeLabel) Schema() Schema {
	switch l {
	case LabelPerson:
		return PersonSchema
	case LabelCity:
		return CitySchema
	case LabelState:
		return StateSchema
	case LabelCountry:
		return CountrySchema
	case LabelInterest:
		return InterestSchema
	}
	return Schema{}
}

// Relation names a typed edge table.
type Relation string

const (
	RelFollows     Relation = "Follows"
	RelLivesIn     Relation = "LivesIn"
	RelHasInterest Relation = "HasInterest"
	RelCityIn      Relation = "CityIn"
	RelStateIn     Relation = "StateIn"
)

// Relations lists every relation in load order.
var Relations = []Relation{RelFollows, RelHasInterest, RelLivesIn, RelCityIn, RelStateIn}

// FileBase returns the base name of the relation's files.
func (r Relation) FileBase() string {
	switch r {
	case RelFollows:
		return "follows"
	case RelLivesIn:
		return "lives_in"
	case RelHasInterest:
		return "interested_in"
	case RelCityIn:
		return "city_in"
	case RelStateIn:
		return "state_in"
	}
	return ""
}

// Endpoints returns the source and target labels of the relation.
func (r Relation) Endpoints() (NodeLabel, NodeLabel) {
	switch r {
	case RelFollows:
		return LabelPerson, LabelPerson
	case RelLivesIn:
		return LabelPerson, LabelCity
	case RelHasInterest:
		return LabelPerson, LabelInterest
	case RelCityIn:
		return LabelCity, LabelState
	case RelStateIn:
		return LabelState, LabelCountry
	}
	return "", ""
}
