package generate

import (
	"bufio"
	"os"
	"sort"
	"strings"

	"github.com/graphbench/graphbench/internal/dataset"
	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/pkg/types"
)

// ReadInterests reads the "interest" column of the reference file.
func ReadInterests(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, gberrors.NewInputError(gberrors.CodeMissingFile, "open interests file", err)
	}
	defer fh.Close()

	raw, err := dataset.ReadRaw(bufio.NewReader(fh), ',', []string{"interest"})
	if err != nil {
		return nil, err
	}
	out := make([]string, len(raw.Rows))
	for i, rec := range raw.Rows {
		out[i] = raw.Get(rec, "interest")
	}
	return out, nil
}

// BuildInterests drops empty values, deduplicates, sorts and assigns ids.
// A positive limit keeps only the first limit interests.
func BuildInterests(values []string, limit int) []types.Interest {
	seen := make(map[string]bool, len(values))
	var uniq []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		uniq = append(uniq, v)
	}
	sort.Strings(uniq)
	if limit > 0 && limit < len(uniq) {
		uniq = uniq[:limit]
	}

	out := make([]types.Interest, len(uniq))
	for i, v := range uniq {
		out[i] = types.Interest{ID: int64(i + 1), Interest: v}
	}
	return out
}

// GenerateInterests reads path and builds the interest table.
func GenerateInterests(path string, limit int) ([]types.Interest, error) {
	values, err := ReadInterests(path)
	if err != nil {
		return nil, err
	}
	return BuildInterests(values, limit), nil
}
