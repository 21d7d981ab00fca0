// Package differ consumes the matcher's pairings and emits migration operations into
// an ops.Collection, following the pass sequence of spec.md §4.2. It is grounded on
// the teacher's internal/sync/schema_alter.go three-phase generateAlterDDLs
// coordinator, generalized to the full table/PK/column/default/FK/index pass order
// the spec mandates, plus transitive-rename resolution (rename.go).
package differ

import (
	"github.com/dbschema/schemadiff/internal/errs"
	"github.com/dbschema/schemadiff/internal/matcher"
	"github.com/dbschema/schemadiff/internal/model"
	"github.com/dbschema/schemadiff/internal/ops"
)

// Diff compares source against target and returns the canonically-ordered operation
// stream described by spec.md §4.3, after transitive-rename resolution.
func Diff(source, target *model.DatabaseModel) ([]ops.Operation, error) {
	if source == nil || target == nil {
		return nil, errs.New(errs.InvalidInput, "source and target models must be non-nil")
	}

	col := ops.New()

	// Pass 1: sequences — currently a no-op, reserved (spec.md §4.2 step 1, explicit
	// non-goal per spec.md §1).

	r := matcher.Match(source, target)

	// Pass 2: tables.
	diffTables(r, col)

	// Pass 3: primary keys (paired tables only — unpaired tables get their PK from
	// CreateTable/DropTable wholesale).
	for _, tp := range r.Tables {
		diffPrimaryKeyForTables(tp, r.PrimaryKeys[tp.Target.Name], col)
	}

	// Pass 4: per paired table, columns/defaults/FKs/indexes, in order.
	for _, tp := range r.Tables {
		key := tp.Target.Name
		if err := diffColumns(key, r.Columns[key], r.UnpairedSourceColumns[key], r.UnpairedTargetColumns[key], col); err != nil {
			return nil, err
		}
		diffForeignKeys(key, r.ForeignKeys[key], r.UnpairedSourceForeignKeys[key], r.UnpairedTargetForeignKeys[key], col)
		diffIndexes(key, r.Indexes[key], r.UnpairedSourceIndexes[key], r.UnpairedTargetIndexes[key], col)
	}

	resolveTransitiveRenames(col)

	return col.Flatten(), nil
}

func diffTables(r *matcher.Result, col *ops.Collection) {
	for _, tp := range r.Tables {
		if tp.Source.Name.Schema != tp.Target.Name.Schema {
			col.Add(ops.MoveTable{OldName: tp.Source.Name, NewSchema: tp.Target.Name.Schema})
		}
		if tp.Source.Name.Name != tp.Target.Name.Name {
			// The schema component of the old name is the *target* schema: if a move
			// happened above, it executes first, so by the time the rename runs the
			// table already lives under the target schema (spec.md §4.2 step 2).
			col.Add(ops.RenameTable{
				Name:    model.SchemaQualifiedName{Schema: tp.Target.Name.Schema, Name: tp.Source.Name.Name},
				NewName: tp.Target.Name.Name,
			})
		}
	}

	for _, t := range r.UnpairedTargetTables {
		col.Add(ops.CreateTable{Table: *t})
		for _, fk := range t.ForeignKeys {
			col.Add(ops.AddForeignKey{
				Table:         t.Name,
				Name:          fk.Name,
				Columns:       fk.Columns,
				RefTable:      fk.RefTable,
				RefColumns:    fk.RefColumns,
				CascadeDelete: fk.CascadeDelete,
			})
		}
		for _, idx := range t.Indexes {
			col.Add(ops.CreateIndex{
				Table:     t.Name,
				Name:      idx.Name,
				Columns:   idx.Columns,
				Unique:    idx.Unique,
				Clustered: idx.Clustered,
			})
		}
	}

	for _, t := range r.UnpairedSourceTables {
		col.Add(ops.DropTable{Name: t.Name})
	}
}

// diffPrimaryKeyForTables emits AddPrimaryKey/DropPrimaryKey for a paired table's PK
// when the two sides did not pair (spec.md §4.2 step 3).
func diffPrimaryKeyForTables(tp matcher.TablePair, pairedPK *matcher.PrimaryKeyPair, col *ops.Collection) {
	if tp.Target.PrimaryKey != nil && pairedPK == nil {
		col.Add(ops.AddPrimaryKey{
			Table:     tp.Target.Name,
			Name:      tp.Target.PrimaryKey.Name,
			Columns:   tp.Target.PrimaryKey.Columns,
			Clustered: tp.Target.PrimaryKey.Clustered,
		})
	}
	if tp.Source.PrimaryKey != nil && pairedPK == nil {
		col.Add(ops.DropPrimaryKey{
			Table: tp.Target.Name,
			Name:  tp.Source.PrimaryKey.Name,
		})
	}
}

func diffForeignKeys(target model.SchemaQualifiedName, paired []matcher.ForeignKeyPair, unSrc, unTgt []*model.ForeignKey, col *ops.Collection) {
	for _, fk := range unTgt {
		col.Add(ops.AddForeignKey{
			Table:         target,
			Name:          fk.Name,
			Columns:       fk.Columns,
			RefTable:      fk.RefTable,
			RefColumns:    fk.RefColumns,
			CascadeDelete: fk.CascadeDelete,
		})
	}
	for _, fk := range unSrc {
		col.Add(ops.DropForeignKey{Table: target, Name: fk.Name})
	}
}

func diffIndexes(target model.SchemaQualifiedName, paired []matcher.IndexPair, unSrc, unTgt []*model.Index, col *ops.Collection) {
	for _, ip := range paired {
		if ip.Source.Name != ip.Target.Name {
			col.Add(ops.RenameIndex{Table: target, OldName: ip.Source.Name, NewName: ip.Target.Name})
		}
	}
	for _, idx := range unTgt {
		col.Add(ops.CreateIndex{Table: target, Name: idx.Name, Columns: idx.Columns, Unique: idx.Unique, Clustered: idx.Clustered})
	}
	for _, idx := range unSrc {
		col.Add(ops.DropIndex{Table: target, Name: idx.Name})
	}
}
