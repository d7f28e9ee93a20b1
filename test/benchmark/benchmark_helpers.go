// Package benchmark holds testing.B benchmarks of the query battery, the
// generators, the loader and dataset publishing.
//
// Query benchmarks need a database and are skipped unless
// GRAPHBENCH_BENCH_BACKEND is set:
//
//	GRAPHBENCH_BENCH_BACKEND=neo4j     uses NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD
//	                                   against an already loaded server
//	GRAPHBENCH_BENCH_BACKEND=embedded  opens GRAPHBENCH_EMBEDDED_PATH, or builds a
//	                                   GRAPHBENCH_BENCH_PERSONS sized database
//
// Variables are also read from ../../.env.
package benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/graphbench/graphbench/internal/graphdb"
	"github.com/graphbench/graphbench/internal/graphdb/embedded"
	"github.com/graphbench/graphbench/internal/graphdb/neo4j"
	"github.com/graphbench/graphbench/internal/loader"
	"github.com/graphbench/graphbench/internal/storage"
	"github.com/graphbench/graphbench/internal/testutil"
)

const defaultBenchPersons = 2000

func loadEnv() {
	// Try loading .env from project root (../../.env relative to test/benchmark)
	_ = godotenv.Load("../../.env")
}

func benchPersons() int {
	if v := os.Getenv("GRAPHBENCH_BENCH_PERSONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultBenchPersons
}

// getBenchmarkBackend returns a backend holding a loaded dataset, or skips.
func getBenchmarkBackend(b *testing.B) graphdb.Backend {
	b.Helper()
	loadEnv()
	ctx := context.Background()

	switch kind := os.Getenv("GRAPHBENCH_BENCH_BACKEND"); kind {
	case "":
		b.Skip("GRAPHBENCH_BENCH_BACKEND not set")
	case "neo4j":
		uri := os.Getenv("NEO4J_URI")
		if uri == "" {
			b.Skip("NEO4J_URI not set")
		}
		db, err := neo4j.Open(ctx, neo4j.Options{
			URI:      uri,
			User:     os.Getenv("NEO4J_USER"),
			Password: os.Getenv("NEO4J_PASSWORD"),
			Database: os.Getenv("NEO4J_DATABASE"),
		}, nil)
		if err != nil {
			b.Fatalf("Failed to connect to neo4j: %v", err)
		}
		b.Cleanup(func() { db.Close(ctx) })
		return db
	case "embedded":
		if path := os.Getenv("GRAPHBENCH_EMBEDDED_PATH"); path != "" {
			db, err := embedded.Open(ctx, embedded.Options{Path: path}, nil)
			if err != nil {
				b.Fatalf("Failed to open %s: %v", path, err)
			}
			b.Cleanup(func() { db.Close(ctx) })
			return db
		}
		return buildEmbedded(b, benchPersons(), 7)
	default:
		b.Fatalf("unknown GRAPHBENCH_BENCH_BACKEND %q", kind)
	}
	return nil
}

// buildEmbedded generates a dataset and loads it into a temporary database.
func buildEmbedded(b *testing.B, persons int, seed uint64) *embedded.Backend {
	b.Helper()
	ctx := context.Background()
	start := time.Now()

	layout := testutil.Dataset(b, persons, seed)
	db, err := embedded.Open(ctx, embedded.Options{Path: filepath.Join(b.TempDir(), "bench.db")}, nil)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { db.Close(ctx) })

	if _, err := loader.New(db, layout, 0, nil).Load(ctx); err != nil {
		b.Fatalf("Failed to load dataset: %v", err)
	}
	b.Logf("Built embedded database with %d persons in %s", persons, time.Since(start))
	return db
}

// getBenchmarkStorage returns object storage and a prefix for publish
// benchmarks. It respects GRAPHBENCH_STORAGE_TYPE=s3 from .env or the
// environment; otherwise it uses a temporary local directory.
func getBenchmarkStorage(b *testing.B, benchName string) (storage.ObjectStorage, string) {
	b.Helper()
	loadEnv()

	if os.Getenv("GRAPHBENCH_STORAGE_TYPE") == "s3" {
		bucket := os.Getenv("GRAPHBENCH_S3_BUCKET")
		if bucket == "" {
			b.Fatal("GRAPHBENCH_S3_BUCKET is required for s3 benchmark")
		}

		cfg := storage.DefaultS3Config()
		if v := os.Getenv("GRAPHBENCH_S3_REGION"); v != "" {
			cfg.Region = v
		}
		cfg.Endpoint = os.Getenv("GRAPHBENCH_S3_ENDPOINT")
		cfg.UsePathStyle = os.Getenv("GRAPHBENCH_S3_PATH_STYLE") == "true"

		st, err := storage.NewS3Storage(context.Background(), bucket, cfg)
		if err != nil {
			b.Fatalf("Failed to initialize S3 storage: %v", err)
		}

		// Unique prefix for this run
		prefix := fmt.Sprintf("bench/%s/%d", benchName, time.Now().UnixNano())
		b.Logf("Running benchmark against S3 Bucket: %s Prefix: %s", bucket, prefix)
		return st, prefix
	}

	st, err := storage.NewLocalStorage(filepath.Join(b.TempDir(), "storage"))
	if err != nil {
		b.Fatal(err)
	}
	return st, benchName
}
