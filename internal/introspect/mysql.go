package introspect

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dbschema/schemadiff/internal/model"
)

// introspectMySQL walks information_schema the way the teacher's getMySQLColumns
// (schema_fetch_mysql.go) does, reading COLUMN_TYPE/EXTRA for auto-increment and
// COLUMN_KEY for primary-key membership, then a second pass over
// information_schema.STATISTICS for indexes and KEY_COLUMN_USAGE for foreign keys.
func introspectMySQL(ctx context.Context, dsn string) (*model.DatabaseModel, error) {
	db, err := openAndPing(ctx, "mysql", dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tables, err := listMySQLTables(ctx, db)
	if err != nil {
		return nil, err
	}

	m := &model.DatabaseModel{}
	for _, name := range tables {
		t := model.Table{Name: model.SchemaQualifiedName{Schema: "default", Name: name}}

		cols, pkCols, err := mysqlColumns(ctx, db, name)
		if err != nil {
			return nil, err
		}
		t.Columns = cols
		if len(pkCols) > 0 {
			t.PrimaryKey = &model.PrimaryKey{Name: "PRIMARY", Table: t.Name, Columns: pkCols, Clustered: true}
		}

		fks, err := mysqlForeignKeys(ctx, db, name)
		if err != nil {
			return nil, err
		}
		t.ForeignKeys = fks

		idxs, err := mysqlIndexes(ctx, db, name)
		if err != nil {
			return nil, err
		}
		t.Indexes = idxs

		m.Tables = append(m.Tables, t)
	}
	return m, nil
}

func listMySQLTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT TABLE_NAME FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func mysqlColumns(ctx context.Context, db *sql.DB, table string) ([]model.Column, []string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, CHARACTER_MAXIMUM_LENGTH,
		       NUMERIC_PRECISION, NUMERIC_SCALE, COLUMN_KEY, EXTRA
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`, table)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var cols []model.Column
	var pkCols []string
	for rows.Next() {
		var (
			name, colType, isNullable, key, extra string
			colDefault                             sql.NullString
			maxLen, precision, scale               sql.NullInt64
		)
		if err := rows.Scan(&name, &colType, &isNullable, &colDefault, &maxLen, &precision, &scale, &key, &extra); err != nil {
			return nil, nil, err
		}
		c := model.Column{
			Name:                 name,
			SourceType:           colType,
			DataType:             colType,
			Nullable:             strings.EqualFold(isNullable, "YES"),
			ColumnNameAnnotation: name,
			IsUnicode:            true,
		}
		if strings.Contains(strings.ToLower(extra), "auto_increment") {
			c.ValueGeneration = model.ValueGenerationOnInsert
		}
		if maxLen.Valid {
			v := int(maxLen.Int64)
			c.MaxLength = &v
		}
		if precision.Valid {
			v := int(precision.Int64)
			c.Precision = &v
		}
		if scale.Valid {
			v := int(scale.Int64)
			c.Scale = &v
		}
		if colDefault.Valid {
			c.HasDefault = true
			c.DefaultSQL = colDefault.String
		}
		if strings.EqualFold(key, "PRI") {
			pkCols = append(pkCols, name)
		}
		cols = append(cols, c)
	}
	return cols, pkCols, rows.Err()
}

func mysqlForeignKeys(ctx context.Context, db *sql.DB, table string) ([]model.ForeignKey, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT rc.CONSTRAINT_NAME, kcu.COLUMN_NAME, kcu.REFERENCED_TABLE_NAME, kcu.REFERENCED_COLUMN_NAME, rc.DELETE_RULE
		FROM information_schema.REFERENTIAL_CONSTRAINTS rc
		JOIN information_schema.KEY_COLUMN_USAGE kcu
		  ON kcu.CONSTRAINT_NAME = rc.CONSTRAINT_NAME AND kcu.TABLE_SCHEMA = rc.CONSTRAINT_SCHEMA
		WHERE rc.CONSTRAINT_SCHEMA = DATABASE() AND rc.TABLE_NAME = ?
		ORDER BY rc.CONSTRAINT_NAME, kcu.ORDINAL_POSITION`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := map[string]*model.ForeignKey{}
	var order []string
	for rows.Next() {
		var name, localCol, refTable, refCol, onDelete string
		if err := rows.Scan(&name, &localCol, &refTable, &refCol, &onDelete); err != nil {
			return nil, err
		}
		fk, ok := byName[name]
		if !ok {
			fk = &model.ForeignKey{
				Name:          name,
				Table:         model.SchemaQualifiedName{Schema: "default", Name: table},
				RefTable:      model.SchemaQualifiedName{Schema: "default", Name: refTable},
				CascadeDelete: strings.EqualFold(onDelete, "CASCADE"),
				Required:      true,
			}
			byName[name] = fk
			order = append(order, name)
		}
		fk.Columns = append(fk.Columns, localCol)
		fk.RefColumns = append(fk.RefColumns, refCol)
	}
	var out []model.ForeignKey
	for _, n := range order {
		out = append(out, *byName[n])
	}
	return out, rows.Err()
}

func mysqlIndexes(ctx context.Context, db *sql.DB, table string) ([]model.Index, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT INDEX_NAME, NON_UNIQUE, COLUMN_NAME
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND INDEX_NAME != 'PRIMARY'
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := map[string]*model.Index{}
	var order []string
	for rows.Next() {
		var name, col string
		var nonUnique int
		if err := rows.Scan(&name, &nonUnique, &col); err != nil {
			return nil, err
		}
		idx, ok := byName[name]
		if !ok {
			idx = &model.Index{Name: name, Table: model.SchemaQualifiedName{Schema: "default", Name: table}, Unique: nonUnique == 0}
			byName[name] = idx
			order = append(order, name)
		}
		idx.Columns = append(idx.Columns, col)
	}
	var out []model.Index
	for _, n := range order {
		out = append(out, *byName[n])
	}
	return out, rows.Err()
}
