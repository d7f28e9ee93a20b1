package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestLocalStorage_UploadDownload(t *testing.T) {
	baseDir := t.TempDir()
	storage, err := NewLocalStorage(baseDir)
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "test.txt")
	content := []byte("hello world")
	if err := os.WriteFile(srcPath, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	ctx := context.Background()

	objectPath := "test/object.txt"
	if err := storage.Upload(ctx, srcPath, objectPath); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	exists, err := storage.Exists(ctx, objectPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected object to exist")
	}

	// Download into a directory that does not exist yet
	dstPath := filepath.Join(srcDir, "nested", "dir", "downloaded.txt")
	if err := storage.Download(ctx, objectPath, dstPath); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	downloaded, err := os.ReadFile(dstPath)
	if err != nil {
		t.Fatalf("failed to read downloaded file: %v", err)
	}
	if string(downloaded) != string(content) {
		t.Errorf("content mismatch: got %q, want %q", downloaded, content)
	}

	if err := storage.Delete(ctx, objectPath); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	exists, err = storage.Exists(ctx, objectPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected object to not exist after delete")
	}

	// Deleting a missing object is not an error
	if err := storage.Delete(ctx, objectPath); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
}

func TestLocalStorage_DownloadNotFound(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	err = storage.Download(context.Background(), "missing.csv", filepath.Join(t.TempDir(), "out.csv"))
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalStorage_UploadMissingSource(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	err = storage.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "nope.csv")
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("expected ErrUploadFailed, got %v", err)
	}
}

func TestLocalStorage_ListObjects(t *testing.T) {
	baseDir := t.TempDir()
	storage, err := NewLocalStorage(baseDir)
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	srcDir := t.TempDir()
	ctx := context.Background()

	objects := []string{
		"run/nodes/persons.csv",
		"run/nodes/cities.csv",
		"run/edges/follows.csv",
		"other/manifest.json",
	}
	for i, obj := range objects {
		srcPath := filepath.Join(srcDir, "test"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(srcPath, []byte("content"), 0644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		if err := storage.Upload(ctx, srcPath, obj); err != nil {
			t.Fatalf("Upload failed for %s: %v", obj, err)
		}
	}

	list, err := storage.ListObjects(ctx, "run")
	if err != nil {
		t.Fatalf("ListObjects failed: %v", err)
	}
	sort.Strings(list)
	want := []string{"run/edges/follows.csv", "run/nodes/cities.csv", "run/nodes/persons.csv"}
	if len(list) != len(want) {
		t.Fatalf("expected %d objects, got %d: %v", len(want), len(list), list)
	}
	for i := range want {
		if list[i] != want[i] {
			t.Errorf("object %d: got %q, want %q", i, list[i], want[i])
		}
	}

	empty, err := storage.ListObjects(ctx, "absent")
	if err != nil {
		t.Fatalf("ListObjects on missing prefix failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no objects, got %v", empty)
	}
}

func TestLocalStorage_UploadLeavesNoTempFiles(t *testing.T) {
	baseDir := t.TempDir()
	storage, err := NewLocalStorage(baseDir)
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	srcPath := filepath.Join(t.TempDir(), "src.txt")
	if err := os.WriteFile(srcPath, []byte("v1"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := storage.Upload(ctx, srcPath, "obj.txt"); err != nil {
			t.Fatalf("Upload %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "obj.txt" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("expected only obj.txt, got %v", names)
	}
}

func TestObjectPath(t *testing.T) {
	cases := []struct{ prefix, rel, want string }{
		{"", "nodes/persons.csv", "nodes/persons.csv"},
		{"datasets/seed0", "nodes/persons.csv", "datasets/seed0/nodes/persons.csv"},
		{"datasets/", "manifest.json", "datasets/manifest.json"},
	}
	for _, c := range cases {
		if got := ObjectPath(c.prefix, c.rel); got != c.want {
			t.Errorf("ObjectPath(%q, %q) = %q, want %q", c.prefix, c.rel, got, c.want)
		}
	}
}
