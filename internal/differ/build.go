package differ

import (
	"github.com/dbschema/schemadiff/internal/errs"
	"github.com/dbschema/schemadiff/internal/model"
	"github.com/dbschema/schemadiff/internal/ops"
)

// CreateSchema produces the operations for an empty-to-target build: every sequence,
// then every table, then every foreign key, then every index, concatenated in that
// order (spec.md §6).
func CreateSchema(target *model.DatabaseModel) ([]ops.Operation, error) {
	if target == nil {
		return nil, errs.New(errs.InvalidInput, "target model must be non-nil")
	}
	out := make([]ops.Operation, 0, target.Len())

	for _, seq := range target.Sequences {
		out = append(out, ops.CreateSequence{Sequence: seq})
	}
	for _, t := range target.Tables {
		out = append(out, ops.CreateTable{Table: t})
	}
	for _, t := range target.Tables {
		for _, fk := range t.ForeignKeys {
			out = append(out, ops.AddForeignKey{
				Table:         t.Name,
				Name:          fk.Name,
				Columns:       fk.Columns,
				RefTable:      fk.RefTable,
				RefColumns:    fk.RefColumns,
				CascadeDelete: fk.CascadeDelete,
			})
		}
	}
	for _, t := range target.Tables {
		for _, idx := range t.Indexes {
			out = append(out, ops.CreateIndex{Table: t.Name, Name: idx.Name, Columns: idx.Columns, Unique: idx.Unique, Clustered: idx.Clustered})
		}
	}
	return out, nil
}

// DropSchema produces DropSequence*, DropForeignKey*, DropTable*, in that order
// (spec.md §6).
func DropSchema(source *model.DatabaseModel) ([]ops.Operation, error) {
	if source == nil {
		return nil, errs.New(errs.InvalidInput, "source model must be non-nil")
	}
	out := make([]ops.Operation, 0, source.Len())

	for _, seq := range source.Sequences {
		out = append(out, ops.DropSequence{Name: seq.Name})
	}
	for _, t := range source.Tables {
		for _, fk := range t.ForeignKeys {
			out = append(out, ops.DropForeignKey{Table: t.Name, Name: fk.Name})
		}
	}
	for _, t := range source.Tables {
		out = append(out, ops.DropTable{Name: t.Name})
	}
	return out, nil
}
