// Package neo4j implements the graph backend on a Neo4j server through the
// official Bolt driver.
package neo4j

import (
	"context"
	"fmt"
	"time"

	driver "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"go.uber.org/zap"

	"github.com/graphbench/graphbench/internal/dataset"
	"github.com/graphbench/graphbench/internal/graphdb"
	"github.com/graphbench/graphbench/internal/logging"
	"github.com/graphbench/graphbench/pkg/types"
)

// Name is the backend name used in logs and metrics.
const Name = "neo4j"

// Options configures the server connection.
type Options struct {
	URI      string
	User     string
	Password string
	Database string
	// MaxPool caps the driver connection pool; 0 keeps the driver default
	MaxPool int
}

// Backend is a graphdb.Backend over a Neo4j server.
type Backend struct {
	driver   driver.DriverWithContext
	database string
	log      *zap.Logger
}

var _ graphdb.Backend = (*Backend)(nil)

// Open connects to the server and verifies connectivity.
func Open(ctx context.Context, opts Options, log *zap.Logger) (*Backend, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("neo4j: uri is required")
	}
	d, err := driver.NewDriverWithContext(opts.URI, driver.BasicAuth(opts.User, opts.Password, ""),
		func(c *config.Config) {
			if opts.MaxPool > 0 {
				c.MaxConnectionPoolSize = opts.MaxPool
			}
		})
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to create driver: %w", err)
	}
	if err := d.VerifyConnectivity(ctx); err != nil {
		d.Close(ctx)
		return nil, fmt.Errorf("neo4j: failed to connect to %s: %w", opts.URI, err)
	}
	return &Backend{driver: d, database: opts.Database, log: logging.OrNop(log)}, nil
}

// Name implements graphdb.Backend.
func (b *Backend) Name() string { return Name }

// Dialect implements graphdb.Backend.
func (b *Backend) Dialect() graphdb.Dialect { return graphdb.DialectCypher }

func (b *Backend) session(ctx context.Context, mode driver.AccessMode) driver.SessionWithContext {
	return b.driver.NewSession(ctx, driver.SessionConfig{AccessMode: mode, DatabaseName: b.database})
}

// Setup creates one uniqueness constraint per node label.
func (b *Backend) Setup(ctx context.Context) error {
	session := b.session(ctx, driver.AccessModeWrite)
	defer session.Close(ctx)

	for _, stmt := range ConstraintStatements() {
		result, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("neo4j: constraint failed: %w", err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return fmt.Errorf("neo4j: constraint failed: %w", err)
		}
	}
	return nil
}

// WriteNodes merges batch in one write transaction.
func (b *Backend) WriteNodes(ctx context.Context, label types.NodeLabel, batch *dataset.Frame) error {
	stmt, ok := mergeNodeStatements[label]
	if !ok {
		return fmt.Errorf("neo4j: unknown node label %q", label)
	}
	if want := label.Schema().Name; batch.Schema.Name != want {
		return fmt.Errorf("neo4j: %s batch has schema %q, want %q", label, batch.Schema.Name, want)
	}
	rows := make([]any, len(batch.Rows))
	for i, rec := range batch.Records() {
		for k, v := range rec {
			if t, ok := v.(time.Time); ok {
				rec[k] = driver.DateOf(t)
			}
		}
		rows[i] = rec
	}
	return b.write(ctx, stmt, rows)
}

// WriteEdges merges batch in one write transaction. Rows whose endpoints are
// absent match nothing and are skipped.
func (b *Backend) WriteEdges(ctx context.Context, rel types.Relation, batch *dataset.Frame) error {
	stmt, ok := mergeEdgeStatements[rel]
	if !ok {
		return fmt.Errorf("neo4j: unknown relation %q", rel)
	}
	from, to := batch.Schema.Index("from"), batch.Schema.Index("to")
	if from < 0 || to < 0 {
		return fmt.Errorf("neo4j: %s batch lacks from/to columns", rel)
	}
	rows := make([]any, len(batch.Rows))
	for i, row := range batch.Rows {
		rows[i] = map[string]any{"from": row[from], "to": row[to]}
	}
	return b.write(ctx, stmt, rows)
}

func (b *Backend) write(ctx context.Context, stmt string, rows []any) error {
	session := b.session(ctx, driver.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx driver.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, stmt, map[string]any{"data": rows})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j: write failed: %w", err)
	}
	return nil
}

// Query runs a read statement and collects every record.
func (b *Backend) Query(ctx context.Context, stmt string, params map[string]any) (*graphdb.ResultSet, error) {
	session := b.session(ctx, driver.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, stmt, params)
	if err != nil {
		return nil, fmt.Errorf("neo4j: query failed: %w", err)
	}
	keys, err := result.Keys()
	if err != nil {
		return nil, fmt.Errorf("neo4j: query failed: %w", err)
	}
	rs := &graphdb.ResultSet{Columns: keys}
	for result.Next(ctx) {
		values := result.Record().Values
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = normalize(v)
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("neo4j: query failed: %w", err)
	}
	return rs, nil
}

// Close closes the driver and its connection pool.
func (b *Backend) Close(ctx context.Context) error {
	return b.driver.Close(ctx)
}

func normalize(v any) any {
	switch x := v.(type) {
	case driver.Date:
		return x.Time().Format(types.DateLayout)
	default:
		return graphdb.Normalize(v)
	}
}
