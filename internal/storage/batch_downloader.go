package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/graphbench/graphbench/internal/dataset"
)

// BatchDownloader fetches dataset files from object storage in parallel.
// Files already present under the root with the expected size and digest
// are not downloaded again.
type BatchDownloader struct {
	storage     ObjectStorage
	concurrency int
	root        string
}

// BatchRequest names the manifest entries to fetch and the object prefix
// they were published under.
type BatchRequest struct {
	Prefix  string
	Entries []dataset.FileEntry
}

// BatchResult contains the outcome of a batch download.
type BatchResult struct {
	LocalPaths map[string]string
	Errors     map[string]error
	CacheHits  int
	Downloads  int
}

// NewBatchDownloader creates a downloader writing under root with at most
// concurrency transfers in flight.
func NewBatchDownloader(storage ObjectStorage, concurrency int, root string) *BatchDownloader {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchDownloader{
		storage:     storage,
		concurrency: concurrency,
		root:        root,
	}
}

// Download fetches every entry of req. Per-file failures are collected in
// the result; the returned error is only set for an invalid request.
func (b *BatchDownloader) Download(ctx context.Context, req *BatchRequest) (*BatchResult, error) {
	result := &BatchResult{
		LocalPaths: make(map[string]string),
		Errors:     make(map[string]error),
	}
	if req == nil {
		return nil, fmt.Errorf("nil batch request")
	}

	var queue []dataset.FileEntry
	for _, e := range req.Entries {
		local := b.localPath(e.Path)
		if e.Check(b.root) == nil {
			result.LocalPaths[e.Path] = local
			result.CacheHits++
			continue
		}
		queue = append(queue, e)
	}

	sem := semaphore.NewWeighted(int64(b.concurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, e := range queue {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			result.Errors[e.Path] = fmt.Errorf("semaphore acquire failed: %w", err)
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(rel, local string) {
			defer sem.Release(1)
			defer wg.Done()

			if err := b.storage.Download(ctx, ObjectPath(req.Prefix, rel), local); err != nil {
				mu.Lock()
				result.Errors[rel] = err
				mu.Unlock()
				return
			}

			mu.Lock()
			result.LocalPaths[rel] = local
			result.Downloads++
			mu.Unlock()
		}(e.Path, b.localPath(e.Path))
	}

	wg.Wait()
	return result, nil
}

// localPath maps a slash-separated dataset path under the root.
func (b *BatchDownloader) localPath(rel string) string {
	return filepath.Join(b.root, filepath.FromSlash(path.Clean("/"+rel)))
}

// ObjectPath joins a prefix and a dataset-relative path into an object key.
func ObjectPath(prefix, rel string) string {
	if prefix == "" {
		return path.Clean(rel)
	}
	return path.Join(prefix, rel)
}
