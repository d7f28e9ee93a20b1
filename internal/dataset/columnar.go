package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/golang/snappy"
	"github.com/spaolacci/murmur3"

	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/pkg/types"
)

// columnarMagic opens every columnar file.
var columnarMagic = []byte("SGC1")

const maxColumnarRows = 1 << 32

// maxSnappyExpansion bounds decoded/compressed size; a snappy block never
// expands by more than this.
const maxSnappyExpansion = 64

// Columnar file layout:
//
//	magic "SGC1"
//	uvarint column count, uvarint row count
//	per column:
//	  uvarint name length, name bytes
//	  1 byte column type
//	  4 bytes little-endian murmur3 sum of the raw block
//	  uvarint compressed length, snappy(raw block)
//
// Raw blocks hold the column values back to back: varint for int64, 8-byte
// little-endian IEEE bits for float64, uvarint length + bytes for string,
// one byte for bool, and varint days since the Unix epoch for dates.

// WriteColumnar writes the frame in columnar form.
func WriteColumnar(w io.Writer, f *Frame) error {
	var buf bytes.Buffer
	buf.Write(columnarMagic)
	buf.Write(binary.AppendUvarint(nil, uint64(len(f.Schema.Columns))))
	buf.Write(binary.AppendUvarint(nil, uint64(len(f.Rows))))

	for i, col := range f.Schema.Columns {
		raw := encodeColumn(col.Type, f.Rows, i)
		compressed := snappy.Encode(nil, raw)

		buf.Write(binary.AppendUvarint(nil, uint64(len(col.Name))))
		buf.WriteString(col.Name)
		buf.WriteByte(byte(col.Type))
		buf.Write(binary.LittleEndian.AppendUint32(nil, murmur3.Sum32(raw)))
		buf.Write(binary.AppendUvarint(nil, uint64(len(compressed))))
		buf.Write(compressed)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// ReadColumnar parses a columnar file against schema. Every schema column
// must be present with the same type; extra columns are skipped.
func ReadColumnar(r io.Reader, schema types.Schema) (*Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, gberrors.NewInputError(gberrors.CodeCorruptFile, "read columnar file", err)
	}
	d := &decoder{data: data, table: schema.Name}

	if !bytes.HasPrefix(data, columnarMagic) {
		return nil, d.corrupt("bad magic")
	}
	d.off = len(columnarMagic)

	ncols := d.uvarint()
	nrows := d.uvarint()
	if d.err != nil {
		return nil, d.err
	}
	if nrows > maxColumnarRows {
		return nil, d.corrupt(fmt.Sprintf("implausible row count %d", nrows))
	}

	// rows are allocated once the first wanted column proves nrows plausible
	var rows [][]any
	found := make([]bool, len(schema.Columns))

	for c := uint64(0); c < ncols; c++ {
		name := string(d.next(d.uvarint()))
		typ := types.ColumnType(d.nextByte())
		sum := d.nextUint32()
		compressed := d.next(d.uvarint())
		if d.err != nil {
			return nil, d.err
		}

		idx := schema.Index(name)
		if idx < 0 {
			continue
		}
		if schema.Columns[idx].Type != typ {
			return nil, gberrors.NewInputError(gberrors.CodeMalformedValue,
				fmt.Sprintf("%s.%s stored as %s, schema wants %s", schema.Name, name, typ, schema.Columns[idx].Type), nil)
		}

		if err := checkBlockSize(compressed, typ, nrows); err != nil {
			return nil, d.corrupt(fmt.Sprintf("column %s: %v", name, err))
		}
		raw, err := snappy.Decode(nil, compressed)
		if err != nil {
			return nil, gberrors.NewInputError(gberrors.CodeCorruptFile,
				fmt.Sprintf("%s.%s snappy decode", schema.Name, name), err)
		}
		if murmur3.Sum32(raw) != sum {
			return nil, d.corrupt(fmt.Sprintf("checksum mismatch in column %s", name))
		}
		if rows == nil {
			rows = make([][]any, nrows)
			for i := range rows {
				rows[i] = make([]any, len(schema.Columns))
			}
		}
		if err := decodeColumn(typ, raw, rows, idx); err != nil {
			return nil, gberrors.NewInputError(gberrors.CodeCorruptFile,
				fmt.Sprintf("%s.%s decode", schema.Name, name), err)
		}
		found[idx] = true
	}

	for i, ok := range found {
		if !ok {
			return nil, gberrors.NewInputError(gberrors.CodeMissingColumn,
				fmt.Sprintf("%s missing column %q", schema.Name, schema.Columns[i].Name), nil)
		}
	}
	return &Frame{Schema: schema, Rows: rows}, nil
}

// ColumnarRowCount reads only the header of a columnar file.
func ColumnarRowCount(r io.Reader) (int, error) {
	head := make([]byte, len(columnarMagic)+2*binary.MaxVarintLen64)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, err
	}
	d := &decoder{data: head[:n], table: "header"}
	if !bytes.HasPrefix(d.data, columnarMagic) {
		return 0, d.corrupt("bad magic")
	}
	d.off = len(columnarMagic)
	d.uvarint()
	rows := d.uvarint()
	if d.err != nil {
		return 0, d.err
	}
	if rows > maxColumnarRows {
		return 0, d.corrupt(fmt.Sprintf("implausible row count %d", rows))
	}
	return int(rows), nil
}

// checkBlockSize rejects a block whose decoded length cannot hold nrows
// values of type t, or that claims more than snappy can expand to.
func checkBlockSize(compressed []byte, t types.ColumnType, nrows uint64) error {
	n, err := snappy.DecodedLen(compressed)
	if err != nil {
		return err
	}
	if uint64(n) > uint64(len(compressed))*maxSnappyExpansion {
		return fmt.Errorf("decoded length %d too large for %d compressed bytes", n, len(compressed))
	}
	if need := nrows * minValueWidth(t); uint64(n) < need {
		return fmt.Errorf("%d bytes cannot hold %d rows", n, nrows)
	}
	return nil
}

// minValueWidth is the fewest raw bytes one value of type t occupies.
func minValueWidth(t types.ColumnType) uint64 {
	if t == types.TypeFloat64 {
		return 8
	}
	return 1
}

func encodeColumn(t types.ColumnType, rows [][]any, col int) []byte {
	var out []byte
	for _, row := range rows {
		switch t {
		case types.TypeInt64:
			out = binary.AppendVarint(out, row[col].(int64))
		case types.TypeFloat64:
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(row[col].(float64)))
		case types.TypeString:
			s := row[col].(string)
			out = binary.AppendUvarint(out, uint64(len(s)))
			out = append(out, s...)
		case types.TypeBool:
			if row[col].(bool) {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		case types.TypeDate:
			out = binary.AppendVarint(out, epochDays(row[col].(time.Time)))
		}
	}
	return out
}

func decodeColumn(t types.ColumnType, raw []byte, rows [][]any, col int) error {
	d := &decoder{data: raw}
	for i := range rows {
		switch t {
		case types.TypeInt64:
			rows[i][col] = d.varint()
		case types.TypeFloat64:
			rows[i][col] = math.Float64frombits(d.nextUint64())
		case types.TypeString:
			rows[i][col] = string(d.next(d.uvarint()))
		case types.TypeBool:
			b := d.nextByte()
			if b > 1 {
				return fmt.Errorf("row %d: invalid bool byte %#x", i, b)
			}
			rows[i][col] = b == 1
		case types.TypeDate:
			rows[i][col] = time.Unix(d.varint()*86400, 0).UTC()
		default:
			return fmt.Errorf("unknown column type %d", t)
		}
		if d.err != nil {
			return d.err
		}
	}
	if d.off != len(raw) {
		return fmt.Errorf("%d trailing bytes", len(raw)-d.off)
	}
	return nil
}

func epochDays(t time.Time) int64 {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// decoder walks a byte slice and records the first error.
type decoder struct {
	data  []byte
	off   int
	table string
	err   error
}

func (d *decoder) corrupt(msg string) error {
	return gberrors.NewInputError(gberrors.CodeCorruptFile,
		fmt.Sprintf("%s: %s", d.table, msg), nil)
}

func (d *decoder) fail() {
	if d.err == nil {
		d.err = d.corrupt(fmt.Sprintf("truncated at offset %d", d.off))
	}
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.data[d.off:])
	if n <= 0 {
		d.fail()
		return 0
	}
	d.off += n
	return v
}

func (d *decoder) varint() int64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Varint(d.data[d.off:])
	if n <= 0 {
		d.fail()
		return 0
	}
	d.off += n
	return v
}

func (d *decoder) next(n uint64) []byte {
	if d.err != nil {
		return nil
	}
	if n > uint64(len(d.data)-d.off) {
		d.fail()
		return nil
	}
	b := d.data[d.off : d.off+int(n)]
	d.off += int(n)
	return b
}

func (d *decoder) nextByte() byte {
	b := d.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) nextUint32() uint32 {
	b := d.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) nextUint64() uint64 {
	b := d.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}
