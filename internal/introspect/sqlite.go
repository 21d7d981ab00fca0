package introspect

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dbschema/schemadiff/internal/model"
)

// introspectSQLite reads sqlite_master and the table_info/foreign_key_list/index_list
// PRAGMAs, mirroring the surface the teacher's schema_fetch_sqlite.go queries; SQLite
// has no notion of schema so every table is reported under the "main" schema.
func introspectSQLite(ctx context.Context, dsn string) (*model.DatabaseModel, error) {
	db, err := openAndPing(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tables, err := listSQLiteTables(ctx, db)
	if err != nil {
		return nil, err
	}

	m := &model.DatabaseModel{}
	for _, name := range tables {
		t := model.Table{Name: model.SchemaQualifiedName{Schema: "main", Name: name}}

		cols, pkCols, err := sqliteColumns(ctx, db, name)
		if err != nil {
			return nil, err
		}
		t.Columns = cols
		if len(pkCols) > 0 {
			t.PrimaryKey = &model.PrimaryKey{Name: name + "_pk", Table: t.Name, Columns: pkCols}
		}

		fks, err := sqliteForeignKeys(ctx, db, name)
		if err != nil {
			return nil, err
		}
		t.ForeignKeys = fks

		idxs, err := sqliteIndexes(ctx, db, name)
		if err != nil {
			return nil, err
		}
		t.Indexes = idxs

		m.Tables = append(m.Tables, t)
	}
	return m, nil
}

func listSQLiteTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
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

func sqliteColumns(ctx context.Context, db *sql.DB, table string) ([]model.Column, []string, error) {
	rows, err := db.QueryContext(ctx, `PRAGMA table_info('`+table+`')`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var cols []model.Column
	var pkCols []string
	for rows.Next() {
		var (
			cid       int
			name      string
			dataType  string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return nil, nil, err
		}
		c := model.Column{
			Name:                 name,
			SourceType:           strings.ToLower(dataType),
			DataType:             strings.ToLower(dataType),
			Nullable:             notNull == 0,
			ColumnNameAnnotation: name,
			IsUnicode:            true,
		}
		if dfltValue.Valid {
			c.HasDefault = true
			c.DefaultSQL = dfltValue.String
		}
		if pk > 0 {
			pkCols = append(pkCols, name)
			if strings.Contains(strings.ToLower(dataType), "integer") {
				c.ValueGeneration = model.ValueGenerationOnInsert
			}
		}
		cols = append(cols, c)
	}
	return cols, pkCols, rows.Err()
}

func sqliteForeignKeys(ctx context.Context, db *sql.DB, table string) ([]model.ForeignKey, error) {
	rows, err := db.QueryContext(ctx, `PRAGMA foreign_key_list('`+table+`')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[int]*model.ForeignKey{}
	var order []int
	for rows.Next() {
		var (
			id, seq                          int
			refTable, from, to, onUpdate     string
			onDelete, match                  string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		fk, ok := byID[id]
		if !ok {
			fk = &model.ForeignKey{
				Name:          table + "_fk_" + refTable,
				Table:         model.SchemaQualifiedName{Schema: "main", Name: table},
				RefTable:      model.SchemaQualifiedName{Schema: "main", Name: refTable},
				CascadeDelete: strings.EqualFold(onDelete, "CASCADE"),
				Required:      true,
			}
			byID[id] = fk
			order = append(order, id)
		}
		fk.Columns = append(fk.Columns, from)
		fk.RefColumns = append(fk.RefColumns, to)
	}
	var out []model.ForeignKey
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, rows.Err()
}

func sqliteIndexes(ctx context.Context, db *sql.DB, table string) ([]model.Index, error) {
	listRows, err := db.QueryContext(ctx, `PRAGMA index_list('`+table+`')`)
	if err != nil {
		return nil, err
	}
	defer listRows.Close()

	type idxMeta struct {
		name   string
		unique bool
	}
	var metas []idxMeta
	for listRows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := listRows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		if origin == "pk" {
			continue
		}
		metas = append(metas, idxMeta{name: name, unique: unique == 1})
	}
	if err := listRows.Err(); err != nil {
		return nil, err
	}

	var out []model.Index
	for _, meta := range metas {
		infoRows, err := db.QueryContext(ctx, `PRAGMA index_info('`+meta.name+`')`)
		if err != nil {
			return nil, err
		}
		idx := model.Index{Name: meta.name, Table: model.SchemaQualifiedName{Schema: "main", Name: table}, Unique: meta.unique}
		for infoRows.Next() {
			var seqno, cid int
			var colName string
			if err := infoRows.Scan(&seqno, &cid, &colName); err != nil {
				infoRows.Close()
				return nil, err
			}
			idx.Columns = append(idx.Columns, colName)
		}
		err = infoRows.Err()
		infoRows.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}
