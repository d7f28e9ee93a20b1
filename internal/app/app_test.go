package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphbench/graphbench/internal/config"
	gberrors "github.com/graphbench/graphbench/internal/errors"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestNewResolvesAndValidates(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.DataDir, "output"), a.Layout().Root)
	assert.Equal(t, filepath.Join(cfg.DataDir, "graph.db"), a.Config().Embedded.Path)

	bad := testConfig(t)
	bad.Format = "parquet"
	_, err = New(bad, nil)
	require.Error(t, err)
	assert.Equal(t, gberrors.ErrCategoryValidation, gberrors.GetCategory(err))
}

func TestGenerateOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Seed = 42
	cfg.Generate.Persons = 123
	cfg.Generate.MaxFollowerPercent = 7
	cfg.Generate.MinInterests, cfg.Generate.MaxInterests = 2, 3
	a, err := New(cfg, nil)
	require.NoError(t, err)

	opts, err := a.GenerateOptions()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), opts.Seed)
	assert.Equal(t, 123, opts.Persons)
	assert.Equal(t, 7, opts.Follows.MaxFollowerPercent)
	assert.Equal(t, [2]int{2, 3}, opts.InterestCounts)
	assert.Equal(t, 2024, opts.Reference.Year())
	assert.Equal(t, filepath.Join(cfg.DataDir, "raw", "worldcities.csv"), opts.CitiesFile)
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	a, err := New(testConfig(t), nil)
	require.NoError(t, err)

	b, err := a.OpenBackend(ctx, config.BackendEmbedded, true)
	require.NoError(t, err)
	assert.Equal(t, "embedded", b.Name())
	require.NoError(t, b.Setup(ctx))

	_, err = a.OpenBackend(ctx, config.Backend("arango"), false)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeInvalidConfig, gberrors.GetCode(err))

	require.NoError(t, a.Close(ctx))
	require.NoError(t, a.Close(ctx))
	_, err = b.Query(ctx, "SELECT 1", nil)
	assert.Error(t, err)
}

func TestOpenNeo4jRequiresURI(t *testing.T) {
	cfg := testConfig(t)
	cfg.Neo4j.URI = ""
	a, err := New(cfg, nil)
	require.NoError(t, err)

	_, err = a.OpenBackend(context.Background(), config.BackendNeo4j, false)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeConnectFailed, gberrors.GetCode(err))
}

func TestPublisherFromConfig(t *testing.T) {
	a, err := New(testConfig(t), nil)
	require.NoError(t, err)
	pub, err := a.Publisher(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, pub)
}
