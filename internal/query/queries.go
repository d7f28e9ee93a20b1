// Package query holds the fixed battery of analytical graph queries and
// runs them against a backend.
//
// Every query has a Cypher and a SQL rendition returning the same columns in
// the same order. Orderings carry explicit tie-breakers so results are
// deterministic on every backend.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/graphdb"
)

// Query is one benchmark query.
type Query struct {
	ID          int
	Description string
	// Defaults holds every parameter the query takes and its default value
	Defaults map[string]any
	Cypher   string
	SQL      string
}

// Name returns the short name, e.g. "q3".
func (q *Query) Name() string {
	return fmt.Sprintf("q%d", q.ID)
}

// Statement returns the rendition for dialect.
func (q *Query) Statement(d graphdb.Dialect) string {
	if d == graphdb.DialectCypher {
		return q.Cypher
	}
	return q.SQL
}

// ParamNames returns the parameter names in sorted order.
func (q *Query) ParamNames() []string {
	names := make([]string, 0, len(q.Defaults))
	for k := range q.Defaults {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Bind overlays params on the defaults. Unknown names are rejected and
// values must have the default's type.
func (q *Query) Bind(params map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(q.Defaults))
	for k, v := range q.Defaults {
		out[k] = v
	}
	for k, v := range params {
		def, ok := q.Defaults[k]
		if !ok {
			return nil, gberrors.NewValidationError(gberrors.CodeInvalidParam,
				fmt.Sprintf("%s takes no parameter %q", q.Name(), k))
		}
		if n, isInt := v.(int); isInt {
			v = int64(n)
		}
		if fmt.Sprintf("%T", v) != fmt.Sprintf("%T", def) {
			return nil, gberrors.NewValidationError(gberrors.CodeInvalidParam,
				fmt.Sprintf("%s parameter %q must be %T, got %T", q.Name(), k, def, v))
		}
		out[k] = v
	}
	return out, nil
}

// ParseParams parses key=value pairs, converting each value to the type of
// the parameter's default.
func (q *Query) ParseParams(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, gberrors.NewValidationError(gberrors.CodeInvalidParam,
				fmt.Sprintf("parameter %q is not key=value", pair))
		}
		k = strings.TrimSpace(k)
		def, known := q.Defaults[k]
		if !known {
			return nil, gberrors.NewValidationError(gberrors.CodeInvalidParam,
				fmt.Sprintf("%s takes no parameter %q", q.Name(), k))
		}
		switch def.(type) {
		case int64:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, gberrors.NewValidationError(gberrors.CodeInvalidParam,
					fmt.Sprintf("%s parameter %q must be an integer, got %q", q.Name(), k, v))
			}
			out[k] = n
		default:
			out[k] = v
		}
	}
	return out, nil
}

// All returns the nine queries in order.
func All() []*Query {
	return battery
}

// Lookup returns the query with the given id.
func Lookup(id int) (*Query, error) {
	if id < 1 || id > len(battery) {
		return nil, gberrors.NewQueryError(gberrors.CodeUnknownQuery,
			fmt.Sprintf("no query %d, expected 1..%d", id, len(battery)), nil)
	}
	return battery[id-1], nil
}

// LookupName resolves "q3" or "3".
func LookupName(name string) (*Query, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "q"))
	if err != nil {
		return nil, gberrors.NewQueryError(gberrors.CodeUnknownQuery, fmt.Sprintf("no query %q", name), nil)
	}
	return Lookup(id)
}

var battery = []*Query{
	{
		ID:          1,
		Description: "Top 3 most-followed persons",
		Defaults:    map[string]any{},
		Cypher: `MATCH (follower:Person)-[:FOLLOWS]->(person:Person)
RETURN person.personID AS personID, person.name AS name, count(follower) AS numFollowers
ORDER BY numFollowers DESC, personID LIMIT 3`,
		SQL: `SELECT p.id AS personID, p.name AS name, count(*) AS numFollowers
FROM follows f JOIN person p ON p.id = f.dst
GROUP BY p.id, p.name
ORDER BY numFollowers DESC, personID LIMIT 3`,
	},
	{
		ID:          2,
		Description: "City in which the most-followed person lives",
		Defaults:    map[string]any{},
		Cypher: `MATCH (follower:Person)-[:FOLLOWS]->(person:Person)
WITH person, count(follower) AS followers
ORDER BY followers DESC, person.personID LIMIT 1
MATCH (person)-[:LIVES_IN]->(city:City)
RETURN person.name AS name, followers AS numFollowers, city.city AS city, city.state AS state, city.country AS country`,
		SQL: `WITH top AS (
  SELECT dst AS id, count(*) AS followers FROM follows
  GROUP BY dst ORDER BY followers DESC, id LIMIT 1
)
SELECT p.name AS name, top.followers AS numFollowers, c.city AS city, c.state AS state, c.country AS country
FROM top
JOIN person p ON p.id = top.id
JOIN lives_in li ON li.src = p.id
JOIN city c ON c.id = li.dst`,
	},
	{
		ID:          3,
		Description: "5 cities in a country with the lowest average age",
		Defaults:    map[string]any{"country": "United States"},
		Cypher: `MATCH (p:Person)-[:LIVES_IN]->(c:City)-[*1..2]->(co:Country {country: $country})
RETURN c.city AS city, avg(p.age) AS averageAge
ORDER BY averageAge, city LIMIT 5`,
		SQL: `SELECT c.city AS city, avg(p.age) AS averageAge
FROM person p
JOIN lives_in li ON li.src = p.id
JOIN city c ON c.id = li.dst
JOIN city_in ci ON ci.src = c.id
JOIN state_in si ON si.src = ci.dst
JOIN country co ON co.id = si.dst
WHERE co.country = $country
GROUP BY c.city
ORDER BY averageAge, city LIMIT 5`,
	},
	{
		ID:          4,
		Description: "Persons within an age range per country, top 3",
		Defaults:    map[string]any{"age_lower": int64(30), "age_upper": int64(40)},
		Cypher: `MATCH (p:Person)-[:LIVES_IN]->(ci:City)-[*1..2]->(country:Country)
WHERE p.age >= $age_lower AND p.age <= $age_upper
RETURN country.country AS countries, count(country) AS personCounts
ORDER BY personCounts DESC, countries LIMIT 3`,
		SQL: `SELECT co.country AS countries, count(*) AS personCounts
FROM person p
JOIN lives_in li ON li.src = p.id
JOIN city_in ci ON ci.src = li.dst
JOIN state_in si ON si.src = ci.dst
JOIN country co ON co.id = si.dst
WHERE p.age >= $age_lower AND p.age <= $age_upper
GROUP BY co.country
ORDER BY personCounts DESC, countries LIMIT 3`,
	},
	{
		ID:          5,
		Description: "Persons of a gender in a city interested in a topic",
		Defaults: map[string]any{
			"gender":   "male",
			"city":     "London",
			"country":  "United Kingdom",
			"interest": "fine dining",
		},
		Cypher: `MATCH (p:Person)-[:HAS_INTEREST]->(i:Interest)
WHERE toLower(i.interest) = toLower($interest)
AND toLower(p.gender) = toLower($gender)
WITH p, i
MATCH (p)-[:LIVES_IN]->(c:City)
WHERE c.city = $city AND c.country = $country
RETURN count(p) AS numPersons`,
		SQL: `SELECT count(*) AS numPersons
FROM person p
JOIN has_interest hi ON hi.src = p.id
JOIN interest i ON i.id = hi.dst
JOIN lives_in li ON li.src = p.id
JOIN city c ON c.id = li.dst
WHERE lower(i.interest) = lower($interest)
AND lower(p.gender) = lower($gender)
AND c.city = $city AND c.country = $country`,
	},
	{
		ID:          6,
		Description: "Top 5 cities by persons of a gender interested in a topic",
		Defaults:    map[string]any{"gender": "female", "interest": "tennis"},
		Cypher: `MATCH (p:Person)-[:HAS_INTEREST]->(i:Interest)
WHERE toLower(i.interest) = toLower($interest)
AND toLower(p.gender) = toLower($gender)
WITH p, i
MATCH (p)-[:LIVES_IN]->(c:City)
RETURN count(p) AS numPersons, c.city AS city, c.country AS country
ORDER BY numPersons DESC, city, country LIMIT 5`,
		SQL: `SELECT count(*) AS numPersons, c.city AS city, c.country AS country
FROM person p
JOIN has_interest hi ON hi.src = p.id
JOIN interest i ON i.id = hi.dst
JOIN lives_in li ON li.src = p.id
JOIN city c ON c.id = li.dst
WHERE lower(i.interest) = lower($interest)
AND lower(p.gender) = lower($gender)
GROUP BY c.city, c.country
ORDER BY numPersons DESC, city, country LIMIT 5`,
	},
	{
		ID:          7,
		Description: "State in a country with the most persons of an age range interested in a topic",
		Defaults: map[string]any{
			"country":   "United States",
			"age_lower": int64(23),
			"age_upper": int64(30),
			"interest":  "photography",
		},
		Cypher: `MATCH (p:Person)-[:LIVES_IN]->(:City)-[:CITY_IN]->(s:State)
WHERE p.age >= $age_lower AND p.age <= $age_upper AND s.country = $country
WITH p, s
MATCH (p)-[:HAS_INTEREST]->(i:Interest)
WHERE toLower(i.interest) = toLower($interest)
RETURN count(p) AS numPersons, s.state AS state, s.country AS country
ORDER BY numPersons DESC, state LIMIT 1`,
		SQL: `SELECT count(*) AS numPersons, s.state AS state, s.country AS country
FROM person p
JOIN lives_in li ON li.src = p.id
JOIN city_in ci ON ci.src = li.dst
JOIN state s ON s.id = ci.dst
JOIN has_interest hi ON hi.src = p.id
JOIN interest i ON i.id = hi.dst
WHERE p.age >= $age_lower AND p.age <= $age_upper AND s.country = $country
AND lower(i.interest) = lower($interest)
GROUP BY s.state, s.country
ORDER BY numPersons DESC, state LIMIT 1`,
	},
	{
		ID:          8,
		Description: "Number of second-degree Follows paths",
		Defaults:    map[string]any{},
		Cypher: `MATCH (a:Person)-[r1:FOLLOWS]->(b:Person)-[r2:FOLLOWS]->(c:Person)
RETURN count(*) AS numPaths`,
		SQL: `SELECT count(*) AS numPaths
FROM follows r1 JOIN follows r2 ON r2.src = r1.dst`,
	},
	{
		ID:          9,
		Description: "Second-degree Follows paths through younger persons to older persons",
		Defaults:    map[string]any{"age_1": int64(50), "age_2": int64(25)},
		Cypher: `MATCH (a:Person)-[r1:FOLLOWS]->(b:Person)-[r2:FOLLOWS]->(c:Person)
WHERE b.age < $age_1 AND c.age > $age_2
RETURN count(*) AS numPaths`,
		SQL: `SELECT count(*) AS numPaths
FROM follows r1
JOIN follows r2 ON r2.src = r1.dst
JOIN person b ON b.id = r1.dst
JOIN person c ON c.id = r2.dst
WHERE b.age < $age_1 AND c.age > $age_2`,
	},
}
