package sqlgen

import (
	"fmt"
	"strings"

	"github.com/dbschema/schemadiff/internal/model"
	"github.com/dbschema/schemadiff/internal/ops"
)

// Base implements Dialect with ANSI-flavored defaults, grounded on the teacher's
// internal/sync/schema_ddl_create.go (generateCreateTableDDL, mapColumnDefinition,
// generateAddConstraintDDLs) and schema_ddl_alter.go. Concrete dialects embed Base and
// override only what differs; RenameTable/RenameColumn/RenameIndex have no sane ANSI
// rendering and are left as UnsupportedDialectFeature, per spec.md §7's own example.
type Base struct {
	DialectName string

	// Self must be set by the embedding dialect's constructor to point back at
	// itself, so Base's shared rendering helpers (columnDefSQL, primaryKeyClause)
	// invoke the dialect's overridden extension points instead of Base's own ANSI
	// defaults. A nil Self falls back to Base acting as a plain ANSI dialect.
	Self Dialect

	// SourceModel and TargetModel are the resolved (source, target) database pair a
	// generator instance is bound to (spec.md §4.5, §6's "Create(source_db,
	// target_db) -> SqlGenerator" factory contract). Only the SQL-Server-like
	// dialect's pre-AlterColumn synthesis pass (dialect_sqlserver.go) reads them;
	// other dialects carry them unused.
	SourceModel *model.DatabaseModel
	TargetModel *model.DatabaseModel
}

func (b Base) self() Dialect {
	if b.Self != nil {
		return b.Self
	}
	return b
}

func (b Base) Name() string { return b.DialectName }

func (Base) QuoteIdent(name string) string { return QuoteDefaultIdentifier(name) }

func (Base) IdentitySuffix(generatesOnInsert bool) string { return "" }

func (Base) ClusteredSuffix(clustered bool) string { return "" }

func (Base) TypeSQL(dataType string) string { return dataType }

func (Base) DefaultClauseSQL(value any, sql string) (string, error) {
	if sql != "" {
		return sql, nil
	}
	return formatLiteral(value), nil
}

func formatLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return QuoteStringLiteral(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (b Base) qualified(q model.SchemaQualifiedName) string {
	d := b.self()
	return d.QuoteIdent(q.Schema) + "." + d.QuoteIdent(q.Name)
}

func (b Base) columnDefSQL(d Dialect, c model.Column) (string, error) {
	var sb strings.Builder
	sb.WriteString(d.QuoteIdent(c.Name))
	sb.WriteString(" ")
	sb.WriteString(d.TypeSQL(c.DataType))
	if suffix := d.IdentitySuffix(c.ValueGeneration == model.ValueGenerationOnInsert); suffix != "" {
		sb.WriteString(suffix)
	}
	if c.Nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	if c.HasDefault {
		clause, err := d.DefaultClauseSQL(c.DefaultValue, c.DefaultSQL)
		if err != nil {
			return "", err
		}
		sb.WriteString(" DEFAULT ")
		sb.WriteString(clause)
	}
	return sb.String(), nil
}

func (b Base) CreateTable(bld *builder, op ops.CreateTable) error {
	d := b.self()
	var cols []string
	for _, c := range op.Table.Columns {
		def, err := b.columnDefSQL(d, c)
		if err != nil {
			return err
		}
		cols = append(cols, def)
	}
	if op.Table.PrimaryKey != nil {
		cols = append(cols, b.primaryKeyClause(d, *op.Table.PrimaryKey))
	}
	bld.Indent()
	cols = bld.IndentedLines(cols)
	bld.Dedent()
	bld.emit("CREATE TABLE %s (\n%s\n)", b.qualified(op.Table.Name), strings.Join(cols, ",\n"))
	return nil
}

func (b Base) primaryKeyClause(d Dialect, pk model.PrimaryKey) string {
	quoted := make([]string, len(pk.Columns))
	for i, c := range pk.Columns {
		quoted[i] = d.QuoteIdent(c)
	}
	clause := fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", d.QuoteIdent(pk.Name), strings.Join(quoted, ", "))
	if suffix := d.ClusteredSuffix(pk.Clustered); suffix != "" {
		clause += suffix
	}
	return clause
}

func (b Base) DropTable(bld *builder, op ops.DropTable) error {
	bld.emit("DROP TABLE %s", b.qualified(op.Name))
	return nil
}

func (b Base) MoveTable(bld *builder, op ops.MoveTable) error {
	return unsupportedFeature(b.DialectName, op)
}

func (b Base) RenameTable(bld *builder, op ops.RenameTable) error {
	return unsupportedFeature(b.DialectName, op)
}

func (b Base) AddColumn(bld *builder, op ops.AddColumn) error {
	d := b.self()
	def, err := b.columnDefSQL(d, op.Column)
	if err != nil {
		return err
	}
	bld.emit("ALTER TABLE %s ADD COLUMN %s", b.qualified(op.Table), def)
	return nil
}

func (b Base) DropColumn(bld *builder, op ops.DropColumn) error {
	bld.emit("ALTER TABLE %s DROP COLUMN %s", b.qualified(op.Table), b.self().QuoteIdent(op.ColumnName))
	return nil
}

func (b Base) AlterColumn(bld *builder, op ops.AlterColumn) error {
	d := b.self()
	def, err := b.columnDefSQL(d, op.NewColumn)
	if err != nil {
		return err
	}
	bld.emit("ALTER TABLE %s ALTER COLUMN %s", b.qualified(op.Table), def)
	return nil
}

func (b Base) RenameColumn(bld *builder, op ops.RenameColumn) error {
	return unsupportedFeature(b.DialectName, op)
}

func (b Base) AddPrimaryKey(bld *builder, op ops.AddPrimaryKey) error {
	d := b.self()
	quoted := make([]string, len(op.Columns))
	for i, c := range op.Columns {
		quoted[i] = d.QuoteIdent(c)
	}
	clause := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s)", b.qualified(op.Table), d.QuoteIdent(op.Name), strings.Join(quoted, ", "))
	if suffix := d.ClusteredSuffix(op.Clustered); suffix != "" {
		clause += suffix
	}
	bld.emit("%s", clause)
	return nil
}

func (b Base) DropPrimaryKey(bld *builder, op ops.DropPrimaryKey) error {
	bld.emit("ALTER TABLE %s DROP CONSTRAINT %s", b.qualified(op.Table), b.self().QuoteIdent(op.Name))
	return nil
}

func (b Base) AddForeignKey(bld *builder, op ops.AddForeignKey) error {
	d := b.self()
	cols := quoteAll(d, op.Columns)
	refCols := quoteAll(d, op.RefColumns)
	clause := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		b.qualified(op.Table), d.QuoteIdent(op.Name), strings.Join(cols, ", "), b.qualified(op.RefTable), strings.Join(refCols, ", "))
	if op.CascadeDelete {
		clause += " ON DELETE CASCADE"
	}
	bld.emit("%s", clause)
	return nil
}

func (b Base) DropForeignKey(bld *builder, op ops.DropForeignKey) error {
	bld.emit("ALTER TABLE %s DROP CONSTRAINT %s", b.qualified(op.Table), b.self().QuoteIdent(op.Name))
	return nil
}

func (b Base) AddDefaultConstraint(bld *builder, op ops.AddDefaultConstraint) error {
	d := b.self()
	clause, err := d.DefaultClauseSQL(op.DefaultValue, op.DefaultSQL)
	if err != nil {
		return err
	}
	bld.emit("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", b.qualified(op.Table), d.QuoteIdent(op.ColumnName), clause)
	return nil
}

func (b Base) DropDefaultConstraint(bld *builder, op ops.DropDefaultConstraint) error {
	bld.emit("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", b.qualified(op.Table), b.self().QuoteIdent(op.ColumnName))
	return nil
}

func (b Base) CreateIndex(bld *builder, op ops.CreateIndex) error {
	d := b.self()
	cols := quoteAll(d, op.Columns)
	unique := ""
	if op.Unique {
		unique = "UNIQUE "
	}
	bld.emit("CREATE %sINDEX %s ON %s (%s)", unique, d.QuoteIdent(op.Name), b.qualified(op.Table), strings.Join(cols, ", "))
	return nil
}

func (b Base) DropIndex(bld *builder, op ops.DropIndex) error {
	bld.emit("DROP INDEX %s", b.self().QuoteIdent(op.Name))
	return nil
}

func (b Base) RenameIndex(bld *builder, op ops.RenameIndex) error {
	return unsupportedFeature(b.DialectName, op)
}

func (b Base) CreateSequence(bld *builder, op ops.CreateSequence) error {
	bld.emit("CREATE SEQUENCE %s", b.qualified(op.Sequence.Name))
	return nil
}

func (b Base) DropSequence(bld *builder, op ops.DropSequence) error {
	bld.emit("DROP SEQUENCE %s", b.qualified(op.Name))
	return nil
}

func (Base) PreProcess(all []ops.Operation) ([]ops.Operation, error) {
	return all, nil
}

func quoteAll(d Dialect, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = d.QuoteIdent(n)
	}
	return out
}
