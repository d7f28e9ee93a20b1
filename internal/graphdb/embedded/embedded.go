// Package embedded implements the graph backend on a single SQLite file.
//
// Node labels map to tables keyed by id and relations map to (src, dst)
// tables with a composite primary key, so upserts and edge merges are
// plain INSERT ... ON CONFLICT statements.
package embedded

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/graphbench/graphbench/internal/dataset"
	"github.com/graphbench/graphbench/internal/graphdb"
	"github.com/graphbench/graphbench/internal/logging"
	"github.com/graphbench/graphbench/pkg/types"
)

// Name is the backend name used in logs and metrics.
const Name = "embedded"

// Options configures the embedded backend.
type Options struct {
	Path string
	// Threads caps SQLite's auxiliary worker threads; 0 leaves the default
	Threads int
}

// Backend is a graphdb.Backend over SQLite.
type Backend struct {
	db   *sql.DB
	path string
	log  *zap.Logger

	mu        sync.Mutex // serializes writes
	nodeStmts map[types.NodeLabel]string
	edgeStmts map[types.Relation]string
}

var _ graphdb.Backend = (*Backend)(nil)

// Open opens (creating if needed) the database file at opts.Path.
func Open(ctx context.Context, opts Options, log *zap.Logger) (*Backend, error) {
	if opts.Path == "" {
		return nil, errors.New("embedded: database path is required")
	}
	db, err := sql.Open("sqlite3", opts.Path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=off")
	if err != nil {
		return nil, fmt.Errorf("embedded: failed to open database: %w", err)
	}
	// One long-lived connection so per-connection pragmas stick.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("embedded: failed to open database: %w", err)
	}
	if opts.Threads > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA threads = %d", opts.Threads)); err != nil {
			db.Close()
			return nil, fmt.Errorf("embedded: failed to set threads pragma: %w", err)
		}
	}

	b := &Backend{
		db:        db,
		path:      opts.Path,
		log:       logging.OrNop(log),
		nodeStmts: make(map[types.NodeLabel]string),
		edgeStmts: make(map[types.Relation]string),
	}
	for _, label := range types.NodeLabels {
		b.nodeStmts[label] = upsertNodeSQL(label)
	}
	for _, rel := range types.Relations {
		b.edgeStmts[rel] = mergeEdgeSQL(rel)
	}
	return b, nil
}

// Remove deletes the database file and its WAL side files.
func Remove(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("embedded: remove %s: %w", p, err)
		}
	}
	return nil
}

// Name implements graphdb.Backend.
func (b *Backend) Name() string { return Name }

// Dialect implements graphdb.Backend.
func (b *Backend) Dialect() graphdb.Dialect { return graphdb.DialectSQL }

// Path returns the database file path.
func (b *Backend) Path() string { return b.path }

// Setup creates every node and edge table.
func (b *Backend) Setup(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, stmt := range SchemaSQL() {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("embedded: failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// WriteNodes upserts batch into the label's table in one transaction.
func (b *Backend) WriteNodes(ctx context.Context, label types.NodeLabel, batch *dataset.Frame) error {
	stmt, ok := b.nodeStmts[label]
	if !ok {
		return fmt.Errorf("embedded: unknown node label %q", label)
	}
	if want := label.Schema().Name; batch.Schema.Name != want {
		return fmt.Errorf("embedded: %s batch has schema %q, want %q", label, batch.Schema.Name, want)
	}
	return b.writeBatch(ctx, stmt, batch, func(row []any) []any {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = bindValue(v)
		}
		return args
	})
}

// WriteEdges merges batch into the relation's table in one transaction.
// Rows whose endpoints do not exist are skipped.
func (b *Backend) WriteEdges(ctx context.Context, rel types.Relation, batch *dataset.Frame) error {
	stmt, ok := b.edgeStmts[rel]
	if !ok {
		return fmt.Errorf("embedded: unknown relation %q", rel)
	}
	from, to := batch.Schema.Index("from"), batch.Schema.Index("to")
	if from < 0 || to < 0 {
		return fmt.Errorf("embedded: %s batch lacks from/to columns", rel)
	}
	return b.writeBatch(ctx, stmt, batch, func(row []any) []any {
		return []any{row[from], row[to], row[from], row[to]}
	})
}

func (b *Backend) writeBatch(ctx context.Context, query string, batch *dataset.Frame, args func([]any) []any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("embedded: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("embedded: failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range batch.Rows {
		if _, err := stmt.ExecContext(ctx, args(row)...); err != nil {
			return fmt.Errorf("embedded: row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("embedded: failed to commit: %w", err)
	}
	return nil
}

var paramPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// Query runs a read statement. Parameters are bound by name ($name); entries
// of params the statement does not reference are ignored.
func (b *Backend) Query(ctx context.Context, stmt string, params map[string]any) (*graphdb.ResultSet, error) {
	var args []any
	seen := make(map[string]bool)
	for _, m := range paramPattern.FindAllStringSubmatch(stmt, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		v, ok := params[name]
		if !ok {
			return nil, fmt.Errorf("embedded: missing parameter $%s", name)
		}
		args = append(args, sql.Named(name, bindValue(v)))
	}

	rows, err := b.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("embedded: query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("embedded: failed to read columns: %w", err)
	}
	rs := &graphdb.ResultSet{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("embedded: failed to scan row: %w", err)
		}
		for i, v := range vals {
			vals[i] = graphdb.Normalize(v)
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("embedded: query failed: %w", err)
	}
	return rs, nil
}

// Count returns the number of rows in table.
func (b *Backend) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := b.db.QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("embedded: count %s: %w", table, err)
	}
	return n, nil
}

// Close closes the database.
func (b *Backend) Close(ctx context.Context) error {
	return b.db.Close()
}

func bindValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(types.DateLayout)
	}
	return v
}

// NodeTable returns the SQL table backing label.
func NodeTable(label types.NodeLabel) string {
	return strings.ToLower(string(label))
}

// EdgeTable returns the SQL table backing rel.
func EdgeTable(rel types.Relation) string {
	switch rel {
	case types.RelFollows:
		return "follows"
	case types.RelLivesIn:
		return "lives_in"
	case types.RelHasInterest:
		return "has_interest"
	case types.RelCityIn:
		return "city_in"
	case types.RelStateIn:
		return "state_in"
	}
	return ""
}
