// Package model describes a database snapshot: tables, columns, keys, indexes and
// sequences. Everything here is a passive value object, built once by an upstream
// model builder (internal/modelbuilder or internal/introspect) and never mutated
// afterwards.
package model

import (
	"fmt"
	"strings"
)

// SchemaQualifiedName is a schema+name pair, compared case-sensitively (ordinal).
type SchemaQualifiedName struct {
	Schema string
	Name   string
}

// ParseQualifiedName splits "schema.name" into its two parts at the first dot, so the
// name half may itself contain further dots; a string with no dot, or with an empty
// schema or name half, is invalid input.
func ParseQualifiedName(s string) (SchemaQualifiedName, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return SchemaQualifiedName{}, fmt.Errorf("qualified name %q: expected \"schema.name\"", s)
	}
	return SchemaQualifiedName{Schema: parts[0], Name: parts[1]}, nil
}

func (q SchemaQualifiedName) String() string {
	return q.Schema + "." + q.Name
}

// Equal reports byte-for-byte equality of both components.
func (q SchemaQualifiedName) Equal(o SchemaQualifiedName) bool {
	return q.Schema == o.Schema && q.Name == o.Name
}

// ValueGeneration describes how a column's value is produced by the database.
type ValueGeneration int

const (
	ValueGenerationNone ValueGeneration = iota
	ValueGenerationOnInsert
)

// Column is a single field of a Table.
type Column struct {
	Name string

	// SourceType is an opaque identity for the column's CLR/domain-model type;
	// equality of SourceType is part of structural matching (spec.md §4.1).
	SourceType string

	// DataType is the physical, already-dialect-resolved type string (e.g. "varchar",
	// "int4").
	DataType string

	Nullable        bool
	ValueGeneration ValueGeneration
	IsTimestamp     bool

	MaxLength *int
	Precision *int
	Scale     *int

	IsFixedLength bool
	IsUnicode     bool

	HasDefault     bool
	DefaultValue   any
	DefaultSQL     string

	// ColumnNameAnnotation is the recorded "column-name" annotation used by the
	// property-level fuzzy matcher (spec.md §4.1); for database-level columns it is
	// always equal to Name.
	ColumnNameAnnotation string
}

// PrimaryKey is a table's primary key.
type PrimaryKey struct {
	Name      string
	Table     SchemaQualifiedName
	Columns   []string
	Clustered bool
}

// ForeignKey is a table's foreign key.
type ForeignKey struct {
	Name            string
	Table           SchemaQualifiedName
	Columns         []string
	RefTable        SchemaQualifiedName
	RefColumns      []string
	CascadeDelete   bool
	Unique          bool
	Required        bool
}

// Index is a table's secondary index.
type Index struct {
	Name      string
	Table     SchemaQualifiedName
	Columns   []string
	Unique    bool
	Clustered bool
}

// Table is a database table: a name, its columns, and its keys/indexes.
type Table struct {
	Name        SchemaQualifiedName
	Columns     []Column
	PrimaryKey  *PrimaryKey
	ForeignKeys []ForeignKey
	Indexes     []Index
}

// Column returns the column named name, or nil if the table has none by that name.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Sequence is a standalone database sequence object.
type Sequence struct {
	Name SchemaQualifiedName
}

// DatabaseModel is a full snapshot: an ordered set of tables and an ordered set of
// sequences. Tables are unique by qualified name.
type DatabaseModel struct {
	Tables    []Table
	Sequences []Sequence
}

// Len returns the total number of tables and sequences, a rough sizing hint for
// callers pre-allocating operation slices.
func (m *DatabaseModel) Len() int {
	return len(m.Tables) + len(m.Sequences)
}

// Table returns the table with the given qualified name, or nil if absent.
func (m *DatabaseModel) Table(name SchemaQualifiedName) *Table {
	for i := range m.Tables {
		if m.Tables[i].Name.Equal(name) {
			return &m.Tables[i]
		}
	}
	return nil
}

// Validate checks the structural invariants spec.md §3 requires of a DatabaseModel:
// every PrimaryKey/ForeignKey/Index column reference must resolve to a column of the
// owning table, a ForeignKey must list as many referenced columns as local ones, and
// HasDefault must agree with the presence of a default value or expression. The names
// of a ForeignKey's referenced columns are not checked against the referenced table.
func (m *DatabaseModel) Validate() error {
	seen := map[SchemaQualifiedName]bool{}
	for _, t := range m.Tables {
		if seen[t.Name] {
			return fmt.Errorf("model: duplicate table %q", t.Name)
		}
		seen[t.Name] = true

		cols := map[string]bool{}
		for _, c := range t.Columns {
			if cols[c.Name] {
				return fmt.Errorf("model: duplicate column %q in table %q", c.Name, t.Name)
			}
			cols[c.Name] = true
			if c.HasDefault != (c.DefaultValue != nil || c.DefaultSQL != "") {
				return fmt.Errorf("model: column %q.%q: has_default disagrees with default presence", t.Name, c.Name)
			}
		}
		if t.PrimaryKey != nil {
			for _, cn := range t.PrimaryKey.Columns {
				if !cols[cn] {
					return fmt.Errorf("model: primary key %q references unknown column %q in table %q", t.PrimaryKey.Name, cn, t.Name)
				}
			}
		}
		for _, fk := range t.ForeignKeys {
			if len(fk.Columns) != len(fk.RefColumns) {
				return fmt.Errorf("model: foreign key %q: column count mismatch (%d vs %d)", fk.Name, len(fk.Columns), len(fk.RefColumns))
			}
			for _, cn := range fk.Columns {
				if !cols[cn] {
					return fmt.Errorf("model: foreign key %q references unknown column %q in table %q", fk.Name, cn, t.Name)
				}
			}
		}
		for _, idx := range t.Indexes {
			for _, cn := range idx.Columns {
				if !cols[cn] {
					return fmt.Errorf("model: index %q references unknown column %q in table %q", idx.Name, cn, t.Name)
				}
			}
		}
	}
	return nil
}
