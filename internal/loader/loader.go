// Package loader copies a generated dataset into a graph backend: schema
// first, then every node table, then every edge table.
package loader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/graphbench/graphbench/internal/dataset"
	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/graphdb"
	"github.com/graphbench/graphbench/internal/logging"
	"github.com/graphbench/graphbench/pkg/types"
)

// DefaultBatchSize is the chunk size for persons and follows.
const DefaultBatchSize = 500_000

// Phase is one timed step of a load.
type Phase struct {
	Name    string
	Rows    int
	Batches int
	Elapsed time.Duration
}

// Result summarizes a completed load.
type Result struct {
	Phases  []Phase
	Elapsed time.Duration
}

// Rows returns the total number of rows written.
func (r *Result) Rows() int {
	n := 0
	for _, p := range r.Phases {
		n += p.Rows
	}
	return n
}

// Loader writes dataset tables into a backend.
type Loader struct {
	backend   graphdb.Backend
	layout    dataset.Layout
	batchSize int
	log       *zap.Logger
}

// New returns a loader. A non-positive batchSize uses DefaultBatchSize.
func New(backend graphdb.Backend, layout dataset.Layout, batchSize int, log *zap.Logger) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{backend: backend, layout: layout, batchSize: batchSize, log: logging.OrNop(log)}
}

// Load runs setup, nodes and edges in order and aborts on the first failure.
// Re-running a load over the same data adds nothing.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}

	setupStart := time.Now()
	if err := l.backend.Setup(ctx); err != nil {
		return nil, gberrors.NewLoadError(gberrors.CodeSchemaFailed,
			fmt.Sprintf("%s: create schema", l.backend.Name()), err)
	}
	res.Phases = append(res.Phases, Phase{Name: "setup", Elapsed: time.Since(setupStart)})

	for _, label := range types.NodeLabels {
		phase, err := l.loadNodes(ctx, label)
		if err != nil {
			return nil, err
		}
		res.Phases = append(res.Phases, phase)
	}
	for _, rel := range types.Relations {
		phase, err := l.loadEdges(ctx, rel)
		if err != nil {
			return nil, err
		}
		res.Phases = append(res.Phases, phase)
	}

	res.Elapsed = time.Since(start)
	l.log.Info("load complete",
		zap.String("backend", l.backend.Name()),
		zap.Int("rows", res.Rows()),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func (l *Loader) loadNodes(ctx context.Context, label types.NodeLabel) (Phase, error) {
	frame, err := l.layout.LoadNodes(label)
	if err != nil {
		return Phase{}, err
	}
	size := 0
	if label == types.LabelPerson {
		size = l.batchSize
	}
	return l.writeChunks(ctx, frame, size, func(batch *dataset.Frame) error {
		return l.backend.WriteNodes(ctx, label, batch)
	})
}

func (l *Loader) loadEdges(ctx context.Context, rel types.Relation) (Phase, error) {
	frame, err := l.layout.LoadEdges(rel)
	if err != nil {
		return Phase{}, err
	}
	size := 0
	if rel == types.RelFollows {
		size = l.batchSize
	}
	return l.writeChunks(ctx, frame, size, func(batch *dataset.Frame) error {
		return l.backend.WriteEdges(ctx, rel, batch)
	})
}

// writeChunks writes frame in batches of size rows; size 0 is one batch.
func (l *Loader) writeChunks(ctx context.Context, frame *dataset.Frame, size int, write func(*dataset.Frame) error) (Phase, error) {
	start := time.Now()
	table := frame.Schema.Name
	chunks := frame.Chunks(size)
	for i, batch := range chunks {
		if err := ctx.Err(); err != nil {
			return Phase{}, err
		}
		if err := write(batch); err != nil {
			return Phase{}, gberrors.NewLoadError(gberrors.CodeBatchFailed,
				fmt.Sprintf("%s: table %s batch %d of %d", l.backend.Name(), table, i+1, len(chunks)), err)
		}
		if len(chunks) > 1 {
			l.log.Debug("wrote batch",
				zap.String("table", table),
				zap.Int("batch", i+1),
				zap.Int("rows", batch.Len()))
		}
	}
	phase := Phase{Name: table, Rows: frame.Len(), Batches: len(chunks), Elapsed: time.Since(start)}
	l.log.Info("loaded table",
		zap.String("table", table),
		zap.Int("rows", phase.Rows),
		zap.Int("batches", phase.Batches),
		zap.Duration("elapsed", phase.Elapsed))
	return phase, nil
}
