package introspect

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dbschema/schemadiff/internal/model"
)

// introspectPostgres walks pg_catalog the same way the teacher's
// getPostgresColumns/getPostgresIndexes/getPostgresConstraints do (schema_fetch_postgres.go),
// but folds the three passes into one per-table model.Table instead of separate
// ColumnInfo/IndexInfo/ConstraintInfo slices.
func introspectPostgres(ctx context.Context, dsn string) (*model.DatabaseModel, error) {
	db, err := openAndPing(ctx, "pgx", dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tables, err := listPostgresTables(ctx, db)
	if err != nil {
		return nil, err
	}

	m := &model.DatabaseModel{}
	for _, name := range tables {
		t := model.Table{Name: model.SchemaQualifiedName{Schema: "public", Name: name}}

		cols, err := postgresColumns(ctx, db, name)
		if err != nil {
			return nil, err
		}
		t.Columns = cols

		pk, err := postgresPrimaryKey(ctx, db, name)
		if err != nil {
			return nil, err
		}
		t.PrimaryKey = pk

		fks, err := postgresForeignKeys(ctx, db, name)
		if err != nil {
			return nil, err
		}
		t.ForeignKeys = fks

		idxs, err := postgresIndexes(ctx, db, name)
		if err != nil {
			return nil, err
		}
		t.Indexes = idxs

		m.Tables = append(m.Tables, t)
	}

	seqs, err := postgresSequences(ctx, db)
	if err != nil {
		return nil, err
	}
	m.Sequences = seqs

	return m, nil
}

func listPostgresTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
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

func postgresColumns(ctx context.Context, db *sql.DB, table string) ([]model.Column, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT c.column_name, c.data_type, c.udt_name, c.is_nullable, c.column_default,
		       c.character_maximum_length, c.numeric_precision, c.numeric_scale, c.is_identity
		FROM information_schema.columns c
		WHERE c.table_schema = 'public' AND c.table_name = $1
		ORDER BY c.ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []model.Column
	for rows.Next() {
		var (
			name, dataType, udtName, isNullable, isIdentity string
			colDefault                                      sql.NullString
			maxLen, precision, scale                        sql.NullInt64
		)
		if err := rows.Scan(&name, &dataType, &udtName, &isNullable, &colDefault, &maxLen, &precision, &scale, &isIdentity); err != nil {
			return nil, err
		}
		physType := dataType
		if dataType == "USER-DEFINED" || dataType == "ARRAY" {
			physType = udtName
		}

		c := model.Column{
			Name:                 name,
			SourceType:           physType,
			DataType:             physType,
			Nullable:             isNullable == "YES",
			ColumnNameAnnotation: name,
			IsFixedLength:        physType == "char" || physType == "bpchar",
			IsUnicode:            true,
		}
		if isIdentity == "YES" {
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
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func postgresPrimaryKey(ctx context.Context, db *sql.DB, table string) (*model.PrimaryKey, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT con.conname, att.attname
		FROM pg_catalog.pg_constraint con
		JOIN pg_catalog.pg_class rel ON rel.oid = con.conrelid
		JOIN pg_catalog.pg_namespace nsp ON nsp.oid = rel.relnamespace
		JOIN pg_catalog.pg_attribute att ON att.attrelid = con.conrelid AND att.attnum = ANY(con.conkey)
		WHERE con.contype = 'p' AND nsp.nspname = 'public' AND rel.relname = $1
		ORDER BY array_position(con.conkey, att.attnum)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk *model.PrimaryKey
	for rows.Next() {
		var name, col string
		if err := rows.Scan(&name, &col); err != nil {
			return nil, err
		}
		if pk == nil {
			pk = &model.PrimaryKey{Name: name, Table: model.SchemaQualifiedName{Schema: "public", Name: table}, Clustered: true}
		}
		pk.Columns = append(pk.Columns, col)
	}
	return pk, rows.Err()
}

func postgresForeignKeys(ctx context.Context, db *sql.DB, table string) ([]model.ForeignKey, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT con.conname, att.attname, confrel.relname, attf.attname, con.confdeltype
		FROM pg_catalog.pg_constraint con
		JOIN pg_catalog.pg_class rel ON rel.oid = con.conrelid
		JOIN pg_catalog.pg_namespace nsp ON nsp.oid = rel.relnamespace
		JOIN pg_catalog.pg_class confrel ON confrel.oid = con.confrelid
		JOIN pg_catalog.pg_attribute att ON att.attrelid = con.conrelid AND att.attnum = ANY(con.conkey)
		JOIN pg_catalog.pg_attribute attf ON attf.attrelid = con.confrelid AND attf.attnum = ANY(con.confkey)
		WHERE con.contype = 'f' AND nsp.nspname = 'public' AND rel.relname = $1
		ORDER BY con.conname, array_position(con.conkey, att.attnum)`, table)
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
				Table:         model.SchemaQualifiedName{Schema: "public", Name: table},
				RefTable:      model.SchemaQualifiedName{Schema: "public", Name: refTable},
				CascadeDelete: onDelete == "c",
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

func postgresIndexes(ctx context.Context, db *sql.DB, table string) ([]model.Index, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT i.relname, idx.indisunique, a.attname
		FROM pg_catalog.pg_class t
		JOIN pg_catalog.pg_index idx ON t.oid = idx.indrelid AND NOT idx.indisprimary
		JOIN pg_catalog.pg_class i ON i.oid = idx.indexrelid
		LEFT JOIN pg_catalog.pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(idx.indkey)
		WHERE t.relname = $1 AND t.relnamespace = (SELECT oid FROM pg_catalog.pg_namespace WHERE nspname = 'public')
		ORDER BY i.relname, array_position(idx.indkey, a.attnum)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := map[string]*model.Index{}
	var order []string
	for rows.Next() {
		var name string
		var unique bool
		var col sql.NullString
		if err := rows.Scan(&name, &unique, &col); err != nil {
			return nil, err
		}
		idx, ok := byName[name]
		if !ok {
			idx = &model.Index{Name: name, Table: model.SchemaQualifiedName{Schema: "public", Name: table}, Unique: unique}
			byName[name] = idx
			order = append(order, name)
		}
		if col.Valid {
			idx.Columns = append(idx.Columns, col.String)
		}
	}
	var out []model.Index
	for _, n := range order {
		out = append(out, *byName[n])
	}
	return out, rows.Err()
}

func postgresSequences(ctx context.Context, db *sql.DB) ([]model.Sequence, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT sequence_name FROM information_schema.sequences
		WHERE sequence_schema = 'public' ORDER BY sequence_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Sequence
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, model.Sequence{Name: model.SchemaQualifiedName{Schema: "public", Name: name}})
	}
	return out, rows.Err()
}
