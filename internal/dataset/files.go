package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/pkg/types"
)

// Format selects which file encodings Save writes.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatColumnar Format = "columnar"
	FormatBoth     Format = "both"
)

// File extensions.
const (
	ExtCSV      = ".csv"
	ExtColumnar = ".sgc"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatColumnar, FormatBoth:
		return Format(s), nil
	case "":
		return FormatBoth, nil
	}
	return "", gberrors.NewValidationError(gberrors.CodeInvalidConfig,
		fmt.Sprintf("invalid format %q (must be csv, columnar or both)", s))
}

// Layout maps tables to paths under a dataset root:
//
//	<root>/nodes/<table>.{csv,sgc}
//	<root>/edges/<relation>.{csv,sgc}
//	<root>/manifest.json
type Layout struct {
	Root string
}

// NewLayout returns the layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{Root: dir}
}

// NodesDir returns the node table directory.
func (l Layout) NodesDir() string { return filepath.Join(l.Root, "nodes") }

// EdgesDir returns the edge table directory.
func (l Layout) EdgesDir() string { return filepath.Join(l.Root, "edges") }

// ManifestPath returns the manifest location.
func (l Layout) ManifestPath() string { return filepath.Join(l.Root, ManifestFile) }

// NodeBase returns the extension-less path of a node table.
func (l Layout) NodeBase(label types.NodeLabel) string {
	return filepath.Join(l.NodesDir(), label.Schema().Name)
}

// EdgeBase returns the extension-less path of a relation table.
func (l Layout) EdgeBase(rel types.Relation) string {
	return filepath.Join(l.EdgesDir(), rel.FileBase())
}

// Bases returns every table base path in load order, nodes first.
func (l Layout) Bases() []string {
	out := make([]string, 0, len(types.NodeLabels)+len(types.Relations))
	for _, label := range types.NodeLabels {
		out = append(out, l.NodeBase(label))
	}
	for _, rel := range types.Relations {
		out = append(out, l.EdgeBase(rel))
	}
	return out
}

// SaveNodes writes a node table.
func (l Layout) SaveNodes(label types.NodeLabel, f *Frame, format Format) ([]string, error) {
	return Save(l.NodeBase(label), f, format)
}

// SaveEdges writes a relation table.
func (l Layout) SaveEdges(rel types.Relation, f *Frame, format Format) ([]string, error) {
	return Save(l.EdgeBase(rel), f, format)
}

// LoadNodes reads a node table.
func (l Layout) LoadNodes(label types.NodeLabel) (*Frame, error) {
	return Load(l.NodeBase(label), label.Schema())
}

// LoadEdges reads a relation table.
func (l Layout) LoadEdges(rel types.Relation) (*Frame, error) {
	return Load(l.EdgeBase(rel), types.EdgeSchema(rel))
}

// LoadPersons reads and decodes the persons table.
func (l Layout) LoadPersons() ([]types.Person, error) {
	f, err := l.LoadNodes(types.LabelPerson)
	if err != nil {
		return nil, err
	}
	return PersonsFromFrame(f), nil
}

// LoadCities reads and decodes the cities table.
func (l Layout) LoadCities() ([]types.City, error) {
	f, err := l.LoadNodes(types.LabelCity)
	if err != nil {
		return nil, err
	}
	return CitiesFromFrame(f), nil
}

// LoadStates reads and decodes the states table.
func (l Layout) LoadStates() ([]types.State, error) {
	f, err := l.LoadNodes(types.LabelState)
	if err != nil {
		return nil, err
	}
	return StatesFromFrame(f), nil
}

// LoadCountries reads and decodes the countries table.
func (l Layout) LoadCountries() ([]types.Country, error) {
	f, err := l.LoadNodes(types.LabelCountry)
	if err != nil {
		return nil, err
	}
	return CountriesFromFrame(f), nil
}

// LoadInterests reads and decodes the interests table.
func (l Layout) LoadInterests() ([]types.Interest, error) {
	f, err := l.LoadNodes(types.LabelInterest)
	if err != nil {
		return nil, err
	}
	return InterestsFromFrame(f), nil
}

// LoadEdgeList reads and decodes a relation table.
func (l Layout) LoadEdgeList(rel types.Relation) ([]types.Edge, error) {
	f, err := l.LoadEdges(rel)
	if err != nil {
		return nil, err
	}
	return EdgesFromFrame(f), nil
}

// Save writes f to base with the extensions selected by format and returns
// the written paths. Each file is written to a temporary sibling and renamed
// into place, so readers never observe a partial table.
func Save(base string, f *Frame, format Format) ([]string, error) {
	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		return nil, gberrors.NewGenerateError(gberrors.CodeWriteFailed, "create dataset directory", err)
	}

	var written []string
	if format == FormatCSV || format == FormatBoth {
		path := base + ExtCSV
		if err := writeAtomic(path, func(w io.Writer) error { return WriteCSV(w, f) }); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if format == FormatColumnar || format == FormatBoth {
		path := base + ExtColumnar
		if err := writeAtomic(path, func(w io.Writer) error { return WriteColumnar(w, f) }); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	// Drop the encoding not written so Load cannot pick up a stale table.
	switch format {
	case FormatCSV:
		os.Remove(base + ExtColumnar)
	case FormatColumnar:
		os.Remove(base + ExtCSV)
	}
	return written, nil
}

// Load reads base, preferring the columnar file and falling back to CSV.
func Load(base string, schema types.Schema) (*Frame, error) {
	if fh, err := os.Open(base + ExtColumnar); err == nil {
		defer fh.Close()
		return ReadColumnar(bufio.NewReader(fh), schema)
	}
	fh, err := os.Open(base + ExtCSV)
	if err != nil {
		return nil, gberrors.NewInputError(gberrors.CodeMissingFile,
			fmt.Sprintf("no %s or %s file for %s", ExtColumnar, ExtCSV, base), err)
	}
	defer fh.Close()
	return ReadCSV(bufio.NewReader(fh), schema)
}

func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return gberrors.NewGenerateError(gberrors.CodeWriteFailed, "create "+path, err)
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriterSize(tmp, 1<<20)
	if err := write(bw); err != nil {
		tmp.Close()
		return gberrors.NewGenerateError(gberrors.CodeWriteFailed, "write "+path, err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return gberrors.NewGenerateError(gberrors.CodeWriteFailed, "flush "+path, err)
	}
	if err := tmp.Close(); err != nil {
		return gberrors.NewGenerateError(gberrors.CodeWriteFailed, "close "+path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return gberrors.NewGenerateError(gberrors.CodeWriteFailed, "rename "+path, err)
	}
	return nil
}
