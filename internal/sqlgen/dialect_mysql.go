package sqlgen

import (
	"github.com/dbschema/schemadiff/internal/ops"
)

// MySQL renders MySQL/MariaDB-flavored DDL, grounded on the teacher's
// internal/sync/ddl_alter_column_mysql.go (single MODIFY COLUMN statement for column
// alterations) and internal/utils/qouting.go's backtick quoting rule.
type MySQL struct {
	Base
}

// NewMySQL returns a ready-to-use MySQL Dialect.
func NewMySQL() *MySQL {
	d := &MySQL{Base: Base{DialectName: "mysql"}}
	d.Base.Self = d
	return d
}

func (MySQL) QuoteIdent(name string) string { return QuoteIdentifier(name, '`', '`', "``") }

func (MySQL) IdentitySuffix(generatesOnInsert bool) string {
	if generatesOnInsert {
		return " AUTO_INCREMENT"
	}
	return ""
}

func (d *MySQL) AlterColumn(bld *builder, op ops.AlterColumn) error {
	def, err := d.columnDefSQL(d, op.NewColumn)
	if err != nil {
		return err
	}
	bld.emit("ALTER TABLE %s MODIFY COLUMN %s", d.qualified(op.Table), def)
	return nil
}

func (d *MySQL) RenameTable(bld *builder, op ops.RenameTable) error {
	bld.emit("RENAME TABLE %s TO %s", d.qualified(op.Name), d.QuoteIdent(op.NewName))
	return nil
}

func (d *MySQL) RenameColumn(bld *builder, op ops.RenameColumn) error {
	bld.emit("ALTER TABLE %s RENAME COLUMN %s TO %s", d.qualified(op.Table), d.QuoteIdent(op.OldName), d.QuoteIdent(op.NewName))
	return nil
}

func (d *MySQL) RenameIndex(bld *builder, op ops.RenameIndex) error {
	bld.emit("ALTER TABLE %s RENAME INDEX %s TO %s", d.qualified(op.Table), d.QuoteIdent(op.OldName), d.QuoteIdent(op.NewName))
	return nil
}

func (d *MySQL) DropIndex(bld *builder, op ops.DropIndex) error {
	bld.emit("DROP INDEX %s ON %s", d.QuoteIdent(op.Name), d.qualified(op.Table))
	return nil
}

// MoveTable: MySQL has no native cross-schema table relocation comparable to
// PostgreSQL's ALTER TABLE ... SET SCHEMA; databases are the schema unit and moving
// one requires a dump/restore outside this generator's scope.
func (d *MySQL) MoveTable(bld *builder, op ops.MoveTable) error {
	return unsupportedFeature(d.DialectName, op)
}

func (d *MySQL) AddDefaultConstraint(bld *builder, op ops.AddDefaultConstraint) error {
	clause, err := d.DefaultClauseSQL(op.DefaultValue, op.DefaultSQL)
	if err != nil {
		return err
	}
	bld.emit("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", d.qualified(op.Table), d.QuoteIdent(op.ColumnName), clause)
	return nil
}

func (d *MySQL) DropDefaultConstraint(bld *builder, op ops.DropDefaultConstraint) error {
	bld.emit("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", d.qualified(op.Table), d.QuoteIdent(op.ColumnName))
	return nil
}
