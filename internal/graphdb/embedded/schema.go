package embedded

import (
	"fmt"
	"strings"

	"github.com/graphbench/graphbench/pkg/types"
)

func sqlType(t types.ColumnType) string {
	switch t {
	case types.TypeInt64:
		return "INTEGER"
	case types.TypeFloat64:
		return "REAL"
	case types.TypeBool:
		return "BOOLEAN"
	default:
		// dates are stored as YYYY-MM-DD text
		return "TEXT"
	}
}

// SchemaSQL returns the DDL for every node and edge table.
func SchemaSQL() []string {
	var stmts []string
	for _, label := range types.NodeLabels {
		schema := label.Schema()
		defs := make([]string, len(schema.Columns))
		for i, col := range schema.Columns {
			def := fmt.Sprintf("%q %s", col.Name, sqlType(col.Type))
			if col.Name == "id" {
				def += " PRIMARY KEY"
			} else {
				def += " NOT NULL"
			}
			defs[i] = def
		}
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
			NodeTable(label), strings.Join(defs, ", ")))
	}
	for _, rel := range types.Relations {
		table := EdgeTable(rel)
		stmts = append(stmts,
			fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (src INTEGER NOT NULL, dst INTEGER NOT NULL, PRIMARY KEY (src, dst)) WITHOUT ROWID", table),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_dst ON %s(dst)", table, table),
		)
	}
	return stmts
}

// upsertNodeSQL inserts a node or overwrites every non-key property.
func upsertNodeSQL(label types.NodeLabel) string {
	schema := label.Schema()
	cols := make([]string, len(schema.Columns))
	marks := make([]string, len(schema.Columns))
	var sets []string
	for i, col := range schema.Columns {
		cols[i] = fmt.Sprintf("%q", col.Name)
		marks[i] = "?"
		if col.Name != "id" {
			sets = append(sets, fmt.Sprintf("%q = excluded.%q", col.Name, col.Name))
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		NodeTable(label), strings.Join(cols, ", "), strings.Join(marks, ", "), strings.Join(sets, ", "))
}

// mergeEdgeSQL inserts an edge only when both endpoints exist. Arguments are
// src, dst, src, dst.
func mergeEdgeSQL(rel types.Relation) string {
	from, to := rel.Endpoints()
	return fmt.Sprintf("INSERT OR IGNORE INTO %s (src, dst) SELECT ?, ? "+
		"WHERE EXISTS (SELECT 1 FROM %s WHERE id = ?) AND EXISTS (SELECT 1 FROM %s WHERE id = ?)",
		EdgeTable(rel), NodeTable(from), NodeTable(to))
}
