// Package introspect builds a model.DatabaseModel by querying a live database's
// system catalogs, as an alternative to internal/modelbuilder's struct-tag-based
// construction. Grounded on the teacher's internal/sync/schema_fetch_{mysql,postgres,
// sqlite}.go, which query the same information_schema/pg_catalog/PRAGMA surfaces; this
// package reshapes their output directly into model.DatabaseModel instead of the
// teacher's intermediate ColumnInfo/IndexInfo/ConstraintInfo structs, since there is no
// separate sync-oriented comparison step downstream.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbschema/schemadiff/internal/config"
	"github.com/dbschema/schemadiff/internal/model"
)

// Introspect opens dsn with the driver matching dialect and builds a DatabaseModel from
// the live schema. The caller owns closing nothing extra; the connection used for
// introspection is closed before returning. profile may be nil, in which case column
// types are returned as the engine's catalog reports them, lowercased and trimmed.
//
// Native type vocabularies differ across engines (postgres's "character varying" vs.
// mysql's "varchar"), so a nil or empty profile makes cross-dialect introspection
// prone to spurious AlterColumn operations; profile.Normalize lets an operator close
// that gap for the dialect pairs they actually run.
func Introspect(ctx context.Context, dialect, dsn string, profile *config.TypeMappingProfile) (*model.DatabaseModel, error) {
	var m *model.DatabaseModel
	var err error

	switch strings.ToLower(dialect) {
	case "postgres", "postgresql":
		m, err = introspectPostgres(ctx, dsn)
	case "mysql":
		m, err = introspectMySQL(ctx, dsn)
	case "sqlite":
		m, err = introspectSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("introspect: unsupported dialect %q", dialect)
	}
	if err != nil {
		return nil, err
	}

	normalizeTypes(m, dialect, profile)
	return m, nil
}

// normalizeTypes rewrites every column's DataType through profile.Normalize in place.
// With a nil profile this is a no-op beyond the lowercase/trim Normalize always does.
func normalizeTypes(m *model.DatabaseModel, dialect string, profile *config.TypeMappingProfile) {
	for i := range m.Tables {
		cols := m.Tables[i].Columns
		for j := range cols {
			cols[j].DataType = profile.Normalize(dialect, cols[j].DataType)
		}
	}
}

func openAndPing(ctx context.Context, driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("introspect: open %s: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("introspect: ping %s: %w", driverName, err)
	}
	return db, nil
}
