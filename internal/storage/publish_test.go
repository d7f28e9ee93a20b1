package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphbench/graphbench/internal/config"
	"github.com/graphbench/graphbench/internal/dataset"
	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/testutil"
)

func TestPublishFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := testutil.Dataset(t, 200, 3)
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	pub := NewPublisher(store, "/datasets/seed3/", 3, nil)
	published, err := pub.Publish(ctx, src)
	require.NoError(t, err)
	require.NotEmpty(t, published.Files)

	objects, err := store.ListObjects(ctx, "datasets/seed3")
	require.NoError(t, err)
	assert.Len(t, objects, len(published.Files)+1)
	assert.Contains(t, objects, "datasets/seed3/"+dataset.ManifestFile)

	dst := dataset.NewLayout(filepath.Join(t.TempDir(), "fetched"))
	fetched, err := pub.Fetch(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, published.DatasetID, fetched.DatasetID)
	assert.Equal(t, published.Files, fetched.Files)

	want, err := src.LoadPersons()
	require.NoError(t, err)
	got, err := dst.LoadPersons()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPublishRejectsModifiedDataset(t *testing.T) {
	src := testutil.Dataset(t, 50, 1)
	m, err := dataset.ReadManifest(src)
	require.NoError(t, err)

	path := filepath.Join(src.Root, filepath.FromSlash(m.Files[0].Path))
	require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))

	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, err = NewPublisher(store, "ds", 0, nil).Publish(context.Background(), src)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeDigestMismatch, gberrors.GetCode(err))

	objects, err := store.ListObjects(context.Background(), "ds")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestFetchMissingManifest(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = NewPublisher(store, "nothing", 2, nil).Fetch(context.Background(), dataset.NewLayout(t.TempDir()))
	require.Error(t, err)
	assert.Equal(t, gberrors.ErrCategoryStorage, gberrors.GetCategory(err))
	assert.Equal(t, gberrors.CodeDownloadFailed, gberrors.GetCode(err))
}

func TestFetchDetectsCorruptObject(t *testing.T) {
	ctx := context.Background()
	src := testutil.Dataset(t, 50, 2)
	base := t.TempDir()
	store, err := NewLocalStorage(base)
	require.NoError(t, err)

	pub := NewPublisher(store, "ds", 2, nil)
	m, err := pub.Publish(ctx, src)
	require.NoError(t, err)

	obj := filepath.Join(base, "ds", filepath.FromSlash(m.Files[0].Path))
	require.NoError(t, os.WriteFile(obj, []byte("bit rot"), 0o644))

	_, err = pub.Fetch(ctx, dataset.NewLayout(t.TempDir()))
	require.Error(t, err)
	assert.Equal(t, gberrors.ErrCategoryStorage, gberrors.GetCategory(err))
	assert.Equal(t, gberrors.CodeDigestMismatch, gberrors.GetCode(err))
}

func TestFetchMissingObject(t *testing.T) {
	ctx := context.Background()
	src := testutil.Dataset(t, 50, 4)
	base := t.TempDir()
	store, err := NewLocalStorage(base)
	require.NoError(t, err)

	pub := NewPublisher(store, "ds", 2, nil)
	m, err := pub.Publish(ctx, src)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, ObjectPath("ds", m.Files[0].Path)))

	_, err = pub.Fetch(ctx, dataset.NewLayout(t.TempDir()))
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeDownloadFailed, gberrors.GetCode(err))
	assert.Contains(t, err.Error(), m.Files[0].Path)
}

func TestNewFromConfig(t *testing.T) {
	store, err := NewFromConfig(context.Background(), config.StorageConfig{Type: "local", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, store)

	_, err = NewFromConfig(context.Background(), config.StorageConfig{Type: "ftp"})
	assert.Error(t, err)
}
