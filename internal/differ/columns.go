package differ

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/dbschema/schemadiff/internal/matcher"
	"github.com/dbschema/schemadiff/internal/model"
	"github.com/dbschema/schemadiff/internal/ops"
)

// diffColumns implements spec.md §4.2 step 4's column and default-constraint passes
// for one paired table: RenameColumn for name differences, AddColumn/DropColumn for
// asymmetric sides (drops against the *target* table name — spec.md §9, preserved
// deliberately because drops execute after renames/moves), AlterColumn for paired
// columns whose database-level properties disagree, and Add/DropDefaultConstraint
// driven by defaults-equivalence.
func diffColumns(target model.SchemaQualifiedName, paired []matcher.ColumnPair, unSrc, unTgt []*model.Column, col *ops.Collection) error {
	for _, cp := range paired {
		if cp.Source.Name != cp.Target.Name {
			col.Add(ops.RenameColumn{Table: target, OldName: cp.Source.Name, NewName: cp.Target.Name})
		}
		if columnPropertiesDiffer(cp.Source, cp.Target) {
			col.Add(ops.AlterColumn{Table: target, NewColumn: *cp.Target, Destructive: true})
		}

		match, err := defaultsMatch(cp.Source, cp.Target)
		if err != nil {
			return err
		}
		if !match {
			if cp.Target.HasDefault {
				col.Add(ops.AddDefaultConstraint{
					Table:        target,
					ColumnName:   cp.Target.Name,
					DefaultValue: cp.Target.DefaultValue,
					DefaultSQL:   cp.Target.DefaultSQL,
				})
			}
			if cp.Source.HasDefault {
				col.Add(ops.DropDefaultConstraint{Table: target, ColumnName: cp.Source.Name})
			}
		}
	}

	for _, c := range unTgt {
		col.Add(ops.AddColumn{Table: target, Column: *c})
		if c.HasDefault {
			col.Add(ops.AddDefaultConstraint{Table: target, ColumnName: c.Name, DefaultValue: c.DefaultValue, DefaultSQL: c.DefaultSQL})
		}
	}

	for _, c := range unSrc {
		// Drop issued against the target table name: by this point in execution
		// rename/move has not yet run on the server (spec.md §9, deliberate).
		col.Add(ops.DropColumn{Table: target, ColumnName: c.Name})
	}

	return nil
}

// columnPropertiesDiffer compares the database-level properties spec.md §4.2 names:
// data type, nullability, value-generation, timestamp, max-length, precision, scale,
// fixed-length, unicode. Defaults are handled separately by defaultsMatch.
func columnPropertiesDiffer(a, b *model.Column) bool {
	if a.DataType != b.DataType {
		return true
	}
	if a.Nullable != b.Nullable {
		return true
	}
	if a.ValueGeneration != b.ValueGeneration {
		return true
	}
	if a.IsTimestamp != b.IsTimestamp {
		return true
	}
	if !intPtrEqual(a.MaxLength, b.MaxLength) {
		return true
	}
	if !intPtrEqual(a.Precision, b.Precision) {
		return true
	}
	if !intPtrEqual(a.Scale, b.Scale) {
		return true
	}
	if a.IsFixedLength != b.IsFixedLength {
		return true
	}
	if a.IsUnicode != b.IsUnicode {
		return true
	}
	return false
}

func intPtrEqual(a, b *int) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// defaultsMatch reports whether two defaults are equal per spec.md §4.2: both
// default-value references equal and both default-SQL strings byte-for-byte equal.
// Numeric default values are compared with apd.Decimal for precision-exact
// equivalence (so "10.00" and 10.0 match), grounded on the teacher's
// areDefaultsEquivalent in internal/sync/compare_columns.go.
func defaultsMatch(a, b *model.Column) (bool, error) {
	if a.DefaultSQL != b.DefaultSQL {
		return false, nil
	}
	return defaultValuesEqual(a.DefaultValue, b.DefaultValue)
}

func defaultValuesEqual(a, b any) (bool, error) {
	if a == nil && b == nil {
		return true, nil
	}
	if a == nil || b == nil {
		return false, nil
	}

	as, aok := decimalString(a)
	bs, bok := decimalString(b)
	if aok && bok {
		da, _, err := apd.NewFromString(as)
		if err != nil {
			return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b), nil
		}
		db, _, err := apd.NewFromString(bs)
		if err != nil {
			return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b), nil
		}
		return da.Cmp(db) == 0, nil
	}

	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b), nil
}

// decimalString extracts a numeric literal string from a default value if it looks
// numeric, for apd.Decimal comparison; otherwise reports ok=false so the caller falls
// back to plain equality.
func decimalString(v any) (s string, ok bool) {
	switch t := v.(type) {
	case string:
		s = t
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		s = fmt.Sprintf("%v", t)
	default:
		return "", false
	}
	var dummy apd.Decimal
	_, _, err := dummy.SetString(s)
	return s, err == nil
}
