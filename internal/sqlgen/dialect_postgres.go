package sqlgen

import (
	"strings"

	"github.com/dbschema/schemadiff/internal/ops"
)

// Postgres renders PostgreSQL-flavored DDL, grounded on the teacher's
// internal/sync/ddl_alter_column_postgres.go: rather than MySQL's single MODIFY
// COLUMN, PostgreSQL needs one ALTER COLUMN statement per attribute (type,
// nullability, default); AlterColumn emits all three on every alteration, whether or
// not that attribute changed.
type Postgres struct {
	Base
}

func NewPostgres() *Postgres {
	d := &Postgres{Base: Base{DialectName: "postgres"}}
	d.Base.Self = d
	return d
}

func (Postgres) IdentitySuffix(generatesOnInsert bool) string {
	if generatesOnInsert {
		return " GENERATED BY DEFAULT AS IDENTITY"
	}
	return ""
}

func (d *Postgres) AlterColumn(bld *builder, op ops.AlterColumn) error {
	table := d.qualified(op.Table)
	col := d.QuoteIdent(op.NewColumn.Name)
	typeSQL := d.TypeSQL(op.NewColumn.DataType)

	bld.emit("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s", table, col, typeSQL, col, typeSQL)

	if op.NewColumn.Nullable {
		bld.emit("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", table, col)
	} else {
		bld.emit("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, col)
	}

	if op.NewColumn.HasDefault {
		clause, err := d.DefaultClauseSQL(op.NewColumn.DefaultValue, op.NewColumn.DefaultSQL)
		if err != nil {
			return err
		}
		bld.emit("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", table, col, clause)
	} else {
		bld.emit("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", table, col)
	}
	return nil
}

func (d *Postgres) RenameTable(bld *builder, op ops.RenameTable) error {
	bld.emit("ALTER TABLE %s RENAME TO %s", d.qualified(op.Name), d.QuoteIdent(op.NewName))
	return nil
}

func (d *Postgres) RenameColumn(bld *builder, op ops.RenameColumn) error {
	bld.emit("ALTER TABLE %s RENAME COLUMN %s TO %s", d.qualified(op.Table), d.QuoteIdent(op.OldName), d.QuoteIdent(op.NewName))
	return nil
}

func (d *Postgres) RenameIndex(bld *builder, op ops.RenameIndex) error {
	bld.emit("ALTER INDEX %s RENAME TO %s", d.QuoteIdent(op.OldName), d.QuoteIdent(op.NewName))
	return nil
}

func (d *Postgres) MoveTable(bld *builder, op ops.MoveTable) error {
	bld.emit("ALTER TABLE %s SET SCHEMA %s", d.qualified(op.OldName), d.QuoteIdent(op.NewSchema))
	return nil
}

// AddForeignKey renders PostgreSQL's deferrable pattern for foreign keys, grounded on
// the teacher's generateAddConstraintDDLs (internal/sync/schema_ddl_create.go), which
// appends DEFERRABLE INITIALLY DEFERRED for postgres foreign keys.
func (d *Postgres) AddForeignKey(bld *builder, op ops.AddForeignKey) error {
	cols := quoteAll(d, op.Columns)
	refCols := quoteAll(d, op.RefColumns)
	clause := "ALTER TABLE " + d.qualified(op.Table) + " ADD CONSTRAINT " + d.QuoteIdent(op.Name) +
		" FOREIGN KEY (" + strings.Join(cols, ", ") + ") REFERENCES " + d.qualified(op.RefTable) + " (" + strings.Join(refCols, ", ") + ")"
	if op.CascadeDelete {
		clause += " ON DELETE CASCADE"
	}
	clause += " DEFERRABLE INITIALLY DEFERRED"
	bld.emit("%s", clause)
	return nil
}
