// Package ops defines the closed MigrationOperation taxonomy and the OperationCollection
// that the differ fills in and the SQL generator reads back out, in the teacher's
// categorizedDDLs spirit (internal/sync/syncer_types.go) generalized from string
// buckets to typed operation buckets.
package ops

import "github.com/dbschema/schemadiff/internal/model"

// Kind tags a MigrationOperation's variant. The zero value is KindCreateTable, a kind
// the differ emits, so a zero Kind does not mark an unset operation.
type Kind int

const (
	KindCreateTable Kind = iota
	KindDropTable
	KindMoveTable
	KindRenameTable

	KindAddColumn
	KindDropColumn
	KindAlterColumn
	KindRenameColumn

	KindAddPrimaryKey
	KindDropPrimaryKey

	KindAddForeignKey
	KindDropForeignKey

	KindAddDefaultConstraint
	KindDropDefaultConstraint

	KindCreateIndex
	KindDropIndex
	KindRenameIndex

	KindCreateSequence
	KindDropSequence
)

func (k Kind) String() string {
	switch k {
	case KindCreateTable:
		return "CreateTable"
	case KindDropTable:
		return "DropTable"
	case KindMoveTable:
		return "MoveTable"
	case KindRenameTable:
		return "RenameTable"
	case KindAddColumn:
		return "AddColumn"
	case KindDropColumn:
		return "DropColumn"
	case KindAlterColumn:
		return "AlterColumn"
	case KindRenameColumn:
		return "RenameColumn"
	case KindAddPrimaryKey:
		return "AddPrimaryKey"
	case KindDropPrimaryKey:
		return "DropPrimaryKey"
	case KindAddForeignKey:
		return "AddForeignKey"
	case KindDropForeignKey:
		return "DropForeignKey"
	case KindAddDefaultConstraint:
		return "AddDefaultConstraint"
	case KindDropDefaultConstraint:
		return "DropDefaultConstraint"
	case KindCreateIndex:
		return "CreateIndex"
	case KindDropIndex:
		return "DropIndex"
	case KindRenameIndex:
		return "RenameIndex"
	case KindCreateSequence:
		return "CreateSequence"
	case KindDropSequence:
		return "DropSequence"
	default:
		return "Unknown"
	}
}

// Operation is implemented by every migration-operation variant. Kind is used for
// collection bucketing and exhaustive dispatch in the SQL generator.
type Operation interface {
	Kind() Kind
}

type CreateTable struct{ Table model.Table }

func (CreateTable) Kind() Kind { return KindCreateTable }

type DropTable struct{ Name model.SchemaQualifiedName }

func (DropTable) Kind() Kind { return KindDropTable }

// MoveTable relocates a table to a new schema, keeping its name.
type MoveTable struct {
	OldName   model.SchemaQualifiedName
	NewSchema string
}

func (MoveTable) Kind() Kind { return KindMoveTable }

// RenameTable renames a table within its current schema.
type RenameTable struct {
	// Name carries the schema currently on the server (see spec.md §4.4 scope rules:
	// after a MoveTable, the schema component reflects the target schema).
	Name    model.SchemaQualifiedName
	NewName string
}

func (RenameTable) Kind() Kind { return KindRenameTable }

type AddColumn struct {
	Table  model.SchemaQualifiedName
	Column model.Column
}

func (AddColumn) Kind() Kind { return KindAddColumn }

type DropColumn struct {
	Table      model.SchemaQualifiedName
	ColumnName string
}

func (DropColumn) Kind() Kind { return KindDropColumn }

// AlterColumn replaces a column's definition in place. Destructive is always true
// (spec.md §4.2, §9 — data-loss analysis is explicitly out of scope).
type AlterColumn struct {
	Table       model.SchemaQualifiedName
	NewColumn   model.Column
	Destructive bool
}

func (AlterColumn) Kind() Kind { return KindAlterColumn }

type RenameColumn struct {
	Table   model.SchemaQualifiedName
	OldName string
	NewName string
}

func (RenameColumn) Kind() Kind { return KindRenameColumn }

type AddPrimaryKey struct {
	Table     model.SchemaQualifiedName
	Name      string
	Columns   []string
	Clustered bool
}

func (AddPrimaryKey) Kind() Kind { return KindAddPrimaryKey }

type DropPrimaryKey struct {
	Table model.SchemaQualifiedName
	Name  string
}

func (DropPrimaryKey) Kind() Kind { return KindDropPrimaryKey }

type AddForeignKey struct {
	Table         model.SchemaQualifiedName
	Name          string
	Columns       []string
	RefTable      model.SchemaQualifiedName
	RefColumns    []string
	CascadeDelete bool
}

func (AddForeignKey) Kind() Kind { return KindAddForeignKey }

type DropForeignKey struct {
	Table model.SchemaQualifiedName
	Name  string
}

func (DropForeignKey) Kind() Kind { return KindDropForeignKey }

type AddDefaultConstraint struct {
	Table        model.SchemaQualifiedName
	ColumnName   string
	DefaultValue any
	DefaultSQL   string
}

func (AddDefaultConstraint) Kind() Kind { return KindAddDefaultConstraint }

type DropDefaultConstraint struct {
	Table      model.SchemaQualifiedName
	ColumnName string
}

func (DropDefaultConstraint) Kind() Kind { return KindDropDefaultConstraint }

type CreateIndex struct {
	Table     model.SchemaQualifiedName
	Name      string
	Columns   []string
	Unique    bool
	Clustered bool
}

func (CreateIndex) Kind() Kind { return KindCreateIndex }

type DropIndex struct {
	Table model.SchemaQualifiedName
	Name  string
}

func (DropIndex) Kind() Kind { return KindDropIndex }

type RenameIndex struct {
	Table   model.SchemaQualifiedName
	OldName string
	NewName string
}

func (RenameIndex) Kind() Kind { return KindRenameIndex }

type CreateSequence struct{ Sequence model.Sequence }

func (CreateSequence) Kind() Kind { return KindCreateSequence }

type DropSequence struct{ Name model.SchemaQualifiedName }

func (DropSequence) Kind() Kind { return KindDropSequence }
