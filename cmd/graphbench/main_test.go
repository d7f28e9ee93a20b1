package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphbench/graphbench/internal/bench"
	"github.com/graphbench/graphbench/internal/dataset"
	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/testutil"
	"github.com/graphbench/graphbench/pkg/types"
)

// run executes the command tree with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLIPipeline(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteRaw(t, filepath.Join(dir, "raw"))
	global := []string{"--data-dir", dir, "--env-file", filepath.Join(dir, "absent.env"), "--log-level", "error"}
	with := func(args ...string) []string { return append(append([]string{}, args...), global...) }

	_, err := run(t, with("gen", "all", "-n", "300", "-s", "9")...)
	require.NoError(t, err)
	layout := dataset.NewLayout(filepath.Join(dir, "output"))
	persons, err := layout.LoadPersons()
	require.NoError(t, err)
	assert.Len(t, persons, 300)

	// A single step regenerates one table
	_, err = run(t, with("gen", "follows", "-n", "50", "-s", "9")...)
	require.NoError(t, err)
	follows, err := layout.LoadEdgeList(types.RelFollows)
	require.NoError(t, err)
	assert.Len(t, follows, 50)
	_, err = run(t, with("gen", "follows", "-s", "9")...)
	require.NoError(t, err)

	out, err := run(t, with("load", "--backend", "embedded", "--fresh")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded")
	assert.Contains(t, out, "persons")
	assert.Contains(t, out, "Batches")

	out, err = run(t, with("query", "-q", "q6", "-p", "gender=male", "-p", "interest=hiking")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Query 6")
	assert.Contains(t, out, "interest = hiking")
	assert.Contains(t, out, "Query 6 completed in")

	golden := filepath.Join(dir, "golden.yaml")
	out, err = run(t, with("bench", "record", "--golden", golden, "--rounds", "1", "--warmup", "0")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 9 queries")

	report := filepath.Join(dir, "report.json")
	metrics := filepath.Join(dir, "metrics.prom")
	out, err = run(t, with("bench", "run", "--golden", golden, "--rounds", "2", "--warmup", "1",
		"--report", report, "--metrics-out", metrics)...)
	require.NoError(t, err)
	assert.Contains(t, out, "All 9 golden expectations passed")

	r, err := bench.ReadReport(report)
	require.NoError(t, err)
	assert.Equal(t, "embedded", r.Backend)
	assert.Len(t, r.Queries, 9)
	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "graphbench_query_duration_seconds")

	out, err = run(t, with("publish", "--prefix", "runs/seed9")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Published dataset")

	dest := filepath.Join(dir, "fetched")
	out, err = run(t, with("fetch", "--prefix", "runs/seed9", "--dest", dest)...)
	require.NoError(t, err)
	assert.Contains(t, out, "files verified")
	fetched, err := dataset.NewLayout(dest).LoadPersons()
	require.NoError(t, err)
	assert.Equal(t, persons, fetched)
}

func TestCLIRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	global := []string{"--data-dir", dir, "--env-file", filepath.Join(dir, "absent.env"), "--log-level", "error"}

	_, err := run(t, append([]string{"load", "--backend", "orientdb"}, global...)...)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeInvalidConfig, gberrors.GetCode(err))

	_, err = run(t, append([]string{"query", "-p", "age_1=3"}, global...)...)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeInvalidParam, gberrors.GetCode(err))

	_, err = run(t, append([]string{"query", "-q", "q42"}, global...)...)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeUnknownQuery, gberrors.GetCode(err))

	_, err = run(t, append([]string{"bench", "record"}, global...)...)
	require.Error(t, err)

	// persons must exist before follows can be generated
	_, err = run(t, append([]string{"gen", "follows"}, global...)...)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeMissingFile, gberrors.GetCode(err))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graphbench version dev"))
}
