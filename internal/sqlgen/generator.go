package sqlgen

import (
	"github.com/dbschema/schemadiff/internal/ops"
)

// Dialect is implemented once per target database system. Each migration-operation
// kind has exactly one visitor method (spec.md §4.5); a handful of extension points
// (IdentitySuffix, ClusteredSuffix, DefaultClauseSQL, TypeSQL) let a dialect inject
// column/PK traits into the shared rendering helpers without overriding the whole
// visitor. PreProcess is the dialect's chance to rewrite the operation list before
// rendering — the SQL-Server-like dialect's pre-AlterColumn synthesis pass
// (spec.md §4.6) is implemented there.
type Dialect interface {
	Name() string

	QuoteIdent(name string) string

	IdentitySuffix(generatesOnInsert bool) string
	ClusteredSuffix(clustered bool) string
	TypeSQL(dataType string) string
	DefaultClauseSQL(value any, sql string) (string, error)

	CreateTable(b *builder, op ops.CreateTable) error
	DropTable(b *builder, op ops.DropTable) error
	MoveTable(b *builder, op ops.MoveTable) error
	RenameTable(b *builder, op ops.RenameTable) error

	AddColumn(b *builder, op ops.AddColumn) error
	DropColumn(b *builder, op ops.DropColumn) error
	AlterColumn(b *builder, op ops.AlterColumn) error
	RenameColumn(b *builder, op ops.RenameColumn) error

	AddPrimaryKey(b *builder, op ops.AddPrimaryKey) error
	DropPrimaryKey(b *builder, op ops.DropPrimaryKey) error

	AddForeignKey(b *builder, op ops.AddForeignKey) error
	DropForeignKey(b *builder, op ops.DropForeignKey) error

	AddDefaultConstraint(b *builder, op ops.AddDefaultConstraint) error
	DropDefaultConstraint(b *builder, op ops.DropDefaultConstraint) error

	CreateIndex(b *builder, op ops.CreateIndex) error
	DropIndex(b *builder, op ops.DropIndex) error
	RenameIndex(b *builder, op ops.RenameIndex) error

	CreateSequence(b *builder, op ops.CreateSequence) error
	DropSequence(b *builder, op ops.DropSequence) error

	// PreProcess runs once, before rendering, over the full canonically-ordered
	// operation stream. The default (Base) implementation returns it unchanged.
	PreProcess(all []ops.Operation) ([]ops.Operation, error)
}

// GenerateSql renders an ordered operation stream into dialect-correct SQL statements
// (spec.md §6). A fresh builder is used per call; d must not be shared across
// concurrent calls if its PreProcess or visitor methods carry mutable state (SQLServer
// does: its varCounter advances with every DropDefaultConstraint it renders).
func GenerateSql(operations []ops.Operation, d Dialect) ([]Statement, error) {
	processed, err := d.PreProcess(operations)
	if err != nil {
		return nil, err
	}

	b := newBuilder()
	for _, op := range processed {
		if err := dispatch(b, d, op); err != nil {
			return nil, err
		}
	}
	return b.statements(), nil
}

func dispatch(b *builder, d Dialect, op ops.Operation) error {
	switch v := op.(type) {
	case ops.CreateTable:
		return d.CreateTable(b, v)
	case ops.DropTable:
		return d.DropTable(b, v)
	case ops.MoveTable:
		return d.MoveTable(b, v)
	case ops.RenameTable:
		return d.RenameTable(b, v)
	case ops.AddColumn:
		return d.AddColumn(b, v)
	case ops.DropColumn:
		return d.DropColumn(b, v)
	case ops.AlterColumn:
		return d.AlterColumn(b, v)
	case ops.RenameColumn:
		return d.RenameColumn(b, v)
	case ops.AddPrimaryKey:
		return d.AddPrimaryKey(b, v)
	case ops.DropPrimaryKey:
		return d.DropPrimaryKey(b, v)
	case ops.AddForeignKey:
		return d.AddForeignKey(b, v)
	case ops.DropForeignKey:
		return d.DropForeignKey(b, v)
	case ops.AddDefaultConstraint:
		return d.AddDefaultConstraint(b, v)
	case ops.DropDefaultConstraint:
		return d.DropDefaultConstraint(b, v)
	case ops.CreateIndex:
		return d.CreateIndex(b, v)
	case ops.DropIndex:
		return d.DropIndex(b, v)
	case ops.RenameIndex:
		return d.RenameIndex(b, v)
	case ops.CreateSequence:
		return d.CreateSequence(b, v)
	case ops.DropSequence:
		return d.DropSequence(b, v)
	default:
		return unhandledOperation(op)
	}
}
