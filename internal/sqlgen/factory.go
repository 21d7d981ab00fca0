package sqlgen

import (
	"strings"

	"github.com/dbschema/schemadiff/internal/errs"
	"github.com/dbschema/schemadiff/internal/model"
)

// Create builds a Dialect bound to the given (source, target) database pair
// (spec.md §6's factory contract: "Create(source_db, target_db) -> SqlGenerator per
// dialect"). dialectName is matched case-insensitively against "mysql", "postgres",
// "sqlite" and "sqlserver".
func Create(dialectName string, source, target *model.DatabaseModel) (Dialect, error) {
	var d Dialect
	switch strings.ToLower(dialectName) {
	case "mysql":
		d = NewMySQL()
	case "postgres", "postgresql":
		d = NewPostgres()
	case "sqlite":
		d = NewSQLite()
	case "sqlserver", "mssql":
		d = NewSQLServer()
	default:
		return nil, errs.New(errs.UnsupportedDialectFeature, "sqlgen: unknown dialect %q", dialectName)
	}

	base := baseOf(d)
	base.SourceModel = source
	base.TargetModel = target
	return d, nil
}

// baseOf returns a pointer to the embedded Base of a concrete dialect, so Create can
// populate SourceModel/TargetModel without each dialect exposing a setter.
func baseOf(d Dialect) *Base {
	switch v := d.(type) {
	case *MySQL:
		return &v.Base
	case *Postgres:
		return &v.Base
	case *SQLite:
		return &v.Base
	case *SQLServer:
		return &v.Base
	default:
		panic("sqlgen: unknown dialect type")
	}
}
