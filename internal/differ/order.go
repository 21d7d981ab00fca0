package differ

import "github.com/dbschema/schemadiff/internal/ops"

// CanonicalOrder is the fixed operation-kind order Diff's output is flattened into
// (spec.md §4.3). Exposed here so callers that build their own ops.Collection (e.g.
// the SQL-Server pre-alter synthesis pass in internal/sqlgen) can re-flatten after
// merging synthesized operations without reaching into the ops package directly.
var CanonicalOrder = ops.CanonicalOrder
