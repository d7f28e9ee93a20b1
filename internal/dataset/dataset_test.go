package dataset

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/spaolacci/murmur3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/pkg/types"
)

func samplePersons() []types.Person {
	return []types.Person{
		{ID: 1, Name: "Ada Lovelace", Gender: types.GenderFemale, Birthday: time.Date(1985, 12, 10, 0, 0, 0, 0, time.UTC), Age: 38, IsMarried: true},
		{ID: 2, Name: "Bob O'Neil", Gender: types.GenderMale, Birthday: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), Age: 54, IsMarried: false},
		{ID: 3, Name: "Zoë \"Z\" Quinn", Gender: types.GenderFemale, Birthday: time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC), Age: 23, IsMarried: false},
	}
}

func sampleCities() []types.City {
	return []types.City{
		{ID: 1, City: "Toronto", State: "Ontario", Country: "Canada", Lat: 43.7417, Lng: -79.3733, Population: 5429524},
		{ID: 2, City: "Montréal", State: "Quebec", Country: "Canada", Lat: 45.5089, Lng: -73.5617, Population: 4276526},
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, PersonsFrame(samplePersons())))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, "id|name|gender|birthday|age|isMarried", header)

	f, err := ReadCSV(&buf, types.PersonSchema)
	require.NoError(t, err)
	assert.Equal(t, samplePersons(), PersonsFromFrame(f))
}

func TestColumnar_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteColumnar(&buf, CitiesFrame(sampleCities())))

	n, err := ColumnarRowCount(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := ReadColumnar(&buf, types.CitySchema)
	require.NoError(t, err)
	assert.Equal(t, sampleCities(), CitiesFromFrame(f))
}

func TestColumnar_EmptyFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteColumnar(&buf, EdgesFrame(types.RelFollows, nil)))

	f, err := ReadColumnar(&buf, types.EdgeSchema(types.RelFollows))
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
}

func TestColumnar_CorruptBlockRejected(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteColumnar(&buf, PersonsFrame(samplePersons())))
	data := buf.Bytes()

	flipped := append([]byte(nil), data...)
	flipped[len(flipped)-1] ^= 0xff
	_, err := ReadColumnar(bytes.NewReader(flipped), types.PersonSchema)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeCorruptFile, gberrors.GetCode(err))

	_, err = ReadColumnar(bytes.NewReader(data[:len(data)/2]), types.PersonSchema)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeCorruptFile, gberrors.GetCode(err))

	_, err = ReadColumnar(strings.NewReader("PAR1xxxx"), types.PersonSchema)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeCorruptFile, gberrors.GetCode(err))
}

// withRowCount rewrites the row count in a columnar file header.
func withRowCount(t *testing.T, data []byte, rows uint64) []byte {
	t.Helper()
	off := len(columnarMagic)
	_, n := binary.Uvarint(data[off:])
	require.Positive(t, n)
	off += n
	_, m := binary.Uvarint(data[off:])
	require.Positive(t, m)

	out := append([]byte(nil), data[:off]...)
	out = binary.AppendUvarint(out, rows)
	return append(out, data[off+m:]...)
}

// columnBlock encodes one column section holding raw as its value block.
func columnBlock(name string, typ types.ColumnType, raw []byte) []byte {
	compressed := snappy.Encode(nil, raw)
	out := binary.AppendUvarint(nil, uint64(len(name)))
	out = append(out, name...)
	out = append(out, byte(typ))
	out = binary.LittleEndian.AppendUint32(out, murmur3.Sum32(raw))
	out = binary.AppendUvarint(out, uint64(len(compressed)))
	return append(out, compressed...)
}

func TestColumnar_ImplausibleRowCount(t *testing.T) {
	// header only: no columns, twenty million rows
	header := append([]byte(nil), columnarMagic...)
	header = binary.AppendUvarint(header, 0)
	header = binary.AppendUvarint(header, 20_000_000)
	_, err := ReadColumnar(bytes.NewReader(header), types.PersonSchema)
	require.Error(t, err)
	assert.Equal(t, gberrors.ErrCategoryInput, gberrors.GetCategory(err))

	var buf bytes.Buffer
	require.NoError(t, WriteColumnar(&buf, PersonsFrame(samplePersons())))
	inflated := withRowCount(t, buf.Bytes(), 1<<31)
	_, err = ReadColumnar(bytes.NewReader(inflated), types.PersonSchema)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeCorruptFile, gberrors.GetCode(err))

	_, err = ColumnarRowCount(bytes.NewReader(withRowCount(t, buf.Bytes(), 1<<40)))
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeCorruptFile, gberrors.GetCode(err))

	n, err := ColumnarRowCount(bytes.NewReader(withRowCount(t, buf.Bytes(), 1<<32)))
	require.NoError(t, err)
	assert.Equal(t, 1<<32, n)
}

func TestColumnar_InvalidBoolRejected(t *testing.T) {
	data := append([]byte(nil), columnarMagic...)
	data = binary.AppendUvarint(data, 1)
	data = binary.AppendUvarint(data, 2)
	data = append(data, columnBlock("isMarried", types.TypeBool, []byte{1, 2})...)

	_, err := ReadColumnar(bytes.NewReader(data), types.PersonSchema)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeCorruptFile, gberrors.GetCode(err))
	assert.Contains(t, err.Error(), "invalid bool")
}

func TestColumnar_SchemaMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteColumnar(&buf, InterestsFrame([]types.Interest{{ID: 1, Interest: "tennis"}})))

	_, err := ReadColumnar(bytes.NewReader(buf.Bytes()), types.CountrySchema)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeMissingColumn, gberrors.GetCode(err))
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("id|name\n1|x\n"), types.PersonSchema)
	require.Error(t, err)
	assert.Equal(t, gberrors.ErrCategoryInput, gberrors.GetCategory(err))
	assert.Equal(t, gberrors.CodeMissingColumn, gberrors.GetCode(err))
}

func TestReadCSV_MalformedValue(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("id|interest\nseven|golf\n"), types.InterestSchema)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeMalformedValue, gberrors.GetCode(err))
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadRaw_StripsBOM(t *testing.T) {
	raw, err := ReadRaw(strings.NewReader("\ufeffcity,iso2\nLondon,GB\n"), ',', []string{"city", "iso2"})
	require.NoError(t, err)
	require.Len(t, raw.Rows, 1)
	assert.Equal(t, "London", raw.Get(raw.Rows[0], "city"))
	assert.Equal(t, "", raw.Get(raw.Rows[0], "missing"))
}

func TestFrame_AppendValidates(t *testing.T) {
	f := NewFrame(types.InterestSchema, 1)
	assert.Error(t, f.Append(int64(1)))
	assert.Error(t, f.Append(1, "golf"))
	assert.NoError(t, f.Append(int64(1), "golf"))
	assert.Equal(t, 1, f.Len())
}

func TestFrame_Chunks(t *testing.T) {
	edges := make([]types.Edge, 10)
	for i := range edges {
		edges[i] = types.Edge{From: int64(i), To: int64(i + 1)}
	}
	f := EdgesFrame(types.RelFollows, edges)

	chunks := f.Chunks(4)
	require.Len(t, chunks, 3)
	assert.Equal(t, 4, chunks[0].Len())
	assert.Equal(t, 2, chunks[2].Len())
	assert.Equal(t, int64(8), chunks[2].Rows[0][0])

	assert.Len(t, f.Chunks(0), 1)
	assert.Len(t, f.Chunks(100), 1)
}

func TestLayout_SaveLoad(t *testing.T) {
	l := NewLayout(t.TempDir())

	paths, err := l.SaveNodes(types.LabelPerson, PersonsFrame(samplePersons()), FormatBoth)
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	persons, err := l.LoadPersons()
	require.NoError(t, err)
	assert.Equal(t, samplePersons(), persons)

	// CSV-only save must not leave a stale columnar file behind.
	_, err = l.SaveNodes(types.LabelPerson, PersonsFrame(samplePersons()[:1]), FormatCSV)
	require.NoError(t, err)
	_, err = os.Stat(l.NodeBase(types.LabelPerson) + ExtColumnar)
	assert.True(t, os.IsNotExist(err))

	persons, err = l.LoadPersons()
	require.NoError(t, err)
	assert.Len(t, persons, 1)

	_, err = l.LoadCities()
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeMissingFile, gberrors.GetCode(err))
}

func TestManifest_BuildVerify(t *testing.T) {
	l := NewLayout(t.TempDir())
	_, err := l.SaveNodes(types.LabelCity, CitiesFrame(sampleCities()), FormatBoth)
	require.NoError(t, err)
	_, err = l.SaveEdges(types.RelCityIn, EdgesFrame(types.RelCityIn, []types.Edge{{From: 1, To: 1}, {From: 2, To: 2}}), FormatCSV)
	require.NoError(t, err)

	m, err := BuildManifest(l, 42)
	require.NoError(t, err)
	require.Len(t, m.Files, 3)
	assert.Equal(t, uint64(42), m.Seed)
	assert.NotEmpty(t, m.DatasetID)
	for _, f := range m.Files {
		assert.Equal(t, 2, f.Rows, f.Path)
		assert.Len(t, f.Digest, 32)
	}
	assert.Equal(t, "edges/city_in.csv", m.Files[0].Path)

	require.NoError(t, WriteManifest(l, m))
	back, err := ReadManifest(l)
	require.NoError(t, err)
	assert.Equal(t, m.Files, back.Files)
	require.NoError(t, back.Verify(l.Root))

	path := filepath.Join(l.Root, "nodes", "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte("id|city|state|country|lat|lng|population\n"), 0644))
	err = back.Verify(l.Root)
	require.Error(t, err)
	assert.Equal(t, gberrors.CodeDigestMismatch, gberrors.GetCode(err))
}
