package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"

	gberrors "github.com/graphbench/graphbench/internal/errors"
)

// ManifestFile is the manifest's name inside a dataset root.
const ManifestFile = "manifest.json"

// Manifest describes one generated dataset.
type Manifest struct {
	// DatasetID is a random identifier assigned when the manifest is built
	DatasetID string `json:"dataset_id"`

	// Seed is the generator seed the dataset was produced with
	Seed uint64 `json:"seed"`

	// CreatedAt is the build time in UTC
	CreatedAt time.Time `json:"created_at"`

	// Files lists every table file, sorted by path
	Files []FileEntry `json:"files"`
}

// FileEntry records one table file of the dataset.
type FileEntry struct {
	// Path is relative to the dataset root, slash separated
	Path string `json:"path"`

	// Rows is the number of data rows (header excluded)
	Rows int `json:"rows"`

	// Size is the file size in bytes
	Size int64 `json:"size"`

	// Digest is the hex murmur3 128-bit hash of the file contents
	Digest string `json:"digest"`
}

// BuildManifest scans every table file present under the layout root.
func BuildManifest(l Layout, seed uint64) (*Manifest, error) {
	m := &Manifest{
		DatasetID: uuid.New().String(),
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
	}

	for _, base := range l.Bases() {
		for _, ext := range []string{ExtCSV, ExtColumnar} {
			path := base + ext
			if _, err := os.Stat(path); err != nil {
				continue
			}
			entry, err := describeFile(l.Root, path)
			if err != nil {
				return nil, err
			}
			m.Files = append(m.Files, entry)
		}
	}
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path })
	return m, nil
}

// WriteManifest writes m to the layout's manifest path.
func WriteManifest(l Layout, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return gberrors.NewInternalError("encode manifest", err)
	}
	return writeAtomic(l.ManifestPath(), func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}

// ReadManifest reads the manifest of the dataset at l.
func ReadManifest(l Layout) (*Manifest, error) {
	data, err := os.ReadFile(l.ManifestPath())
	if err != nil {
		return nil, gberrors.NewInputError(gberrors.CodeMissingFile, "read manifest", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, gberrors.NewInputError(gberrors.CodeMalformedValue, "parse manifest", err)
	}
	return &m, nil
}

// Verify recomputes size and digest of every manifest file under root.
func (m *Manifest) Verify(root string) error {
	for _, want := range m.Files {
		if err := want.Check(root); err != nil {
			return err
		}
	}
	return nil
}

// Check recomputes the size and digest of the file under root.
func (e FileEntry) Check(root string) error {
	path := filepath.Join(root, filepath.FromSlash(e.Path))
	size, digest, err := digestFile(path)
	if err != nil {
		return gberrors.NewInputError(gberrors.CodeMissingFile, "verify "+e.Path, err)
	}
	if size != e.Size || digest != e.Digest {
		return gberrors.NewInputError(gberrors.CodeDigestMismatch,
			fmt.Sprintf("%s: size %d digest %s, manifest has size %d digest %s",
				e.Path, size, digest, e.Size, e.Digest), nil)
	}
	return nil
}

// TotalSize returns the sum of file sizes.
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, f := range m.Files {
		total += f.Size
	}
	return total
}

func describeFile(root, path string) (FileEntry, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return FileEntry{}, gberrors.NewInternalError("relative path of "+path, err)
	}
	size, digest, err := digestFile(path)
	if err != nil {
		return FileEntry{}, gberrors.NewInputError(gberrors.CodeMissingFile, "digest "+rel, err)
	}
	rows, err := countRows(path)
	if err != nil {
		return FileEntry{}, err
	}
	return FileEntry{Path: filepath.ToSlash(rel), Rows: rows, Size: size, Digest: digest}, nil
}

func digestFile(path string) (int64, string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer fh.Close()

	h := murmur3.New128()
	size, err := io.Copy(h, fh)
	if err != nil {
		return 0, "", err
	}
	return size, hex.EncodeToString(h.Sum(nil)), nil
}

func countRows(path string) (int, error) {
	fh, err := os.Open(path)
	if err != nil {
		return 0, gberrors.NewInputError(gberrors.CodeMissingFile, "open "+path, err)
	}
	defer fh.Close()

	if filepath.Ext(path) == ExtColumnar {
		n, err := ColumnarRowCount(fh)
		if err != nil {
			return 0, gberrors.NewInputError(gberrors.CodeCorruptFile, "row count of "+path, err)
		}
		return n, nil
	}

	cr := csv.NewReader(bufio.NewReader(fh))
	cr.Comma = Separator
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	n := 0
	for {
		_, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, gberrors.NewInputError(gberrors.CodeMalformedValue, "row count of "+path, err)
		}
		n++
	}
	if n > 0 {
		n-- // header
	}
	return n, nil
}
