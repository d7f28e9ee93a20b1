package types

import "fmt"

// ColumnType is the logical type of a column in a dataset table.
type ColumnType uint8

const (
	TypeInt64 ColumnType = iota + 1
	TypeFloat64
	TypeString
	TypeBool
	TypeDate
)

// String returns the lowercase type name used in error messages and manifests.
func (t ColumnType) String() string {
	switch t {
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeDate:
		return "date"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// DateLayout is the on-disk representation of date columns.
const DateLayout = "2006-01-02"

// Schema defines the structure of one dataset table.
type Schema struct {
	// Name is the table name, also the base name of its files
	Name string `json:"name"`

	// Columns defines the columns in file order
	Columns []ColumnDef `json:"columns"`
}

// ColumnDef defines a single column in the schema.
type ColumnDef struct {
	// Name is the column name as written in file headers
	Name string `json:"name"`

	// Type is the logical column type
	Type ColumnType `json:"type"`
}

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames returns the column names in order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Node table schemas.
var (
	PersonSchema = Schema{
		Name: "persons",
		Columns: []ColumnDef{
			{Name: "id", Type: TypeInt64},
			{Name: "name", Type: TypeString},
			{Name: "gender", Type: TypeString},
			{Name: "birthday", Type: TypeDate},
			{Name: "age", Type: TypeInt64},
			{Name: "isMarried", Type: TypeBool},
		},
	}

	CitySchema = Schema{
		Name: "cities",
		Columns: []ColumnDef{
			{Name: "id", Type: TypeInt64},
			{Name: "city", Type: TypeString},
			{Name: "state", Type: TypeString},
			{Name: "country", Type: TypeString},
			{Name: "lat", Type: TypeFloat64},
			{Name: "lng", Type: TypeFloat64},
			{Name: "population", Type: TypeInt64},
		},
	}

	StateSchema = Schema{
		Name: "states",
		Columns: []ColumnDef{
			{Name: "id", Type: TypeInt64},
			{Name: "state", Type: TypeString},
			{Name: "country", Type: TypeString},
		},
	}

	CountrySchema = Schema{
		Name: "countries",
		Columns: []ColumnDef{
			{Name: "id", Type: TypeInt64},
			{Name: "country", Type: TypeString},
		},
	}

	InterestSchema = Schema{
		Name: "interests",
		Columns: []ColumnDef{
			{Name: "id", Type: TypeInt64},
			{Name: "interest", Type: TypeString},
		},
	}
)

// EdgeSchema returns the two-column schema shared by every relation file.
func EdgeSchema(rel Relation) Schema {
	return Schema{
		Name: rel.FileBase(),
		Columns: []ColumnDef{
			{Name: "from", Type: TypeInt64},
			{Name: "to", Type: TypeInt64},
		},
	}
}
