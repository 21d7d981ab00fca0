package sqlgen

import (
	"github.com/dbschema/schemadiff/internal/errs"
	"github.com/dbschema/schemadiff/internal/ops"
)

func unhandledOperation(op ops.Operation) error {
	return errs.New(errs.UnhandledOperation, "sqlgen: unhandled operation kind %s", op.Kind())
}

func unsupportedFeature(dialect string, op ops.Operation) error {
	return errs.New(errs.UnsupportedDialectFeature, "sqlgen: dialect %q does not support %s", dialect, op.Kind())
}
