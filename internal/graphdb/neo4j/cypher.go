package neo4j

import (
	"fmt"

	"github.com/graphbench/graphbench/pkg/types"
)

// keyProperty is the unique key property of each label.
var keyProperty = map[types.NodeLabel]string{
	types.LabelPerson:   "personID",
	types.LabelCity:     "cityID",
	types.LabelState:    "stateID",
	types.LabelCountry:  "countryID",
	types.LabelInterest: "interestID",
}

// RelType returns the Cypher relationship type of rel.
func RelType(rel types.Relation) string {
	switch rel {
	case types.RelFollows:
		return "FOLLOWS"
	case types.RelLivesIn:
		return "LIVES_IN"
	case types.RelHasInterest:
		return "HAS_INTEREST"
	case types.RelCityIn:
		return "CITY_IN"
	case types.RelStateIn:
		return "STATE_IN"
	}
	return ""
}

// ConstraintStatements returns one uniqueness constraint per label.
func ConstraintStatements() []string {
	out := make([]string, 0, len(types.NodeLabels))
	for _, label := range types.NodeLabels {
		key := keyProperty[label]
		out = append(out, fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE", key, label, key))
	}
	return out
}

var (
	mergeNodeStatements = map[types.NodeLabel]string{}
	mergeEdgeStatements = map[types.Relation]string{}
)

func init() {
	for _, label := range types.NodeLabels {
		mergeNodeStatements[label] = fmt.Sprintf(
			"UNWIND $data AS row MERGE (n:%s {%s: row.id}) SET n += row", label, keyProperty[label])
	}
	for _, rel := range types.Relations {
		from, to := rel.Endpoints()
		mergeEdgeStatements[rel] = fmt.Sprintf(
			"UNWIND $data AS row MATCH (a:%s {%s: row.from}) MATCH (b:%s {%s: row.to}) MERGE (a)-[:%s]->(b)",
			from, keyProperty[from], to, keyProperty[to], RelType(rel))
	}
}
