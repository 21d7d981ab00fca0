// Package matcher pairs entities, columns, keys and indexes between a source and a
// target model using the two-tier exact-then-fuzzy rules of spec.md §4.1. The matcher
// is stateless: every function takes both sides as read-only arguments and returns
// pairings, holding no references of its own afterward.
package matcher

import "github.com/dbschema/schemadiff/internal/model"

// TablePair is a matched (source, target) table. Either side may be nil when the
// pairing is produced by a later, un-paired enumeration — but the functions in this
// package only ever return pairs with both sides set.
type TablePair struct {
	Source *model.Table
	Target *model.Table
}

// ColumnPair is a matched (source, target) column within an already-paired table.
type ColumnPair struct {
	Source *model.Column
	Target *model.Column
}

// PrimaryKeyPair is a matched (source, target) primary key.
type PrimaryKeyPair struct {
	Source *model.PrimaryKey
	Target *model.PrimaryKey
}

// ForeignKeyPair is a matched (source, target) foreign key.
type ForeignKeyPair struct {
	Source *model.ForeignKey
	Target *model.ForeignKey
}

// IndexPair is a matched (source, target) index.
type IndexPair struct {
	Source *model.Index
	Target *model.Index
}

// Result is the full set of pairings between a source and target DatabaseModel,
// together with the unpaired leftovers on each side.
type Result struct {
	Tables []TablePair

	UnpairedSourceTables []*model.Table
	UnpairedTargetTables []*model.Table

	// Columns, PrimaryKeys, ForeignKeys and Indexes are keyed by the paired target
	// table's qualified name (stable regardless of any later rename), mirroring how
	// the differ walks "per paired table, in order" (spec.md §4.2 step 4).
	Columns     map[model.SchemaQualifiedName][]ColumnPair
	PrimaryKeys map[model.SchemaQualifiedName]*PrimaryKeyPair
	ForeignKeys map[model.SchemaQualifiedName][]ForeignKeyPair
	Indexes     map[model.SchemaQualifiedName][]IndexPair

	UnpairedSourceColumns     map[model.SchemaQualifiedName][]*model.Column
	UnpairedTargetColumns     map[model.SchemaQualifiedName][]*model.Column
	UnpairedSourceForeignKeys map[model.SchemaQualifiedName][]*model.ForeignKey
	UnpairedTargetForeignKeys map[model.SchemaQualifiedName][]*model.ForeignKey
	UnpairedSourceIndexes     map[model.SchemaQualifiedName][]*model.Index
	UnpairedTargetIndexes     map[model.SchemaQualifiedName][]*model.Index
}

// Match runs the full two-tier pairing pipeline: tables first (by name, then fuzzy by
// column-structure overlap), then, within each paired table, columns, primary key,
// foreign keys and indexes.
func Match(source, target *model.DatabaseModel) *Result {
	r := &Result{
		Columns:                   map[model.SchemaQualifiedName][]ColumnPair{},
		PrimaryKeys:               map[model.SchemaQualifiedName]*PrimaryKeyPair{},
		ForeignKeys:               map[model.SchemaQualifiedName][]ForeignKeyPair{},
		Indexes:                   map[model.SchemaQualifiedName][]IndexPair{},
		UnpairedSourceColumns:     map[model.SchemaQualifiedName][]*model.Column{},
		UnpairedTargetColumns:     map[model.SchemaQualifiedName][]*model.Column{},
		UnpairedSourceForeignKeys: map[model.SchemaQualifiedName][]*model.ForeignKey{},
		UnpairedTargetForeignKeys: map[model.SchemaQualifiedName][]*model.ForeignKey{},
		UnpairedSourceIndexes:     map[model.SchemaQualifiedName][]*model.Index{},
		UnpairedTargetIndexes:     map[model.SchemaQualifiedName][]*model.Index{},
	}

	matchTables(source, target, r)

	for _, tp := range r.Tables {
		key := tp.Target.Name
		cols, unSrc, unTgt := matchColumns(tp.Source, tp.Target)
		r.Columns[key] = cols
		r.UnpairedSourceColumns[key] = unSrc
		r.UnpairedTargetColumns[key] = unTgt

		r.PrimaryKeys[key] = matchPrimaryKey(tp.Source, tp.Target, cols)

		fks, unSrcFK, unTgtFK := matchForeignKeys(tp.Source, tp.Target, cols)
		r.ForeignKeys[key] = fks
		r.UnpairedSourceForeignKeys[key] = unSrcFK
		r.UnpairedTargetForeignKeys[key] = unTgtFK

		idxs, unSrcIdx, unTgtIdx := matchIndexes(tp.Source, tp.Target, cols)
		r.Indexes[key] = idxs
		r.UnpairedSourceIndexes[key] = unSrcIdx
		r.UnpairedTargetIndexes[key] = unTgtIdx
	}

	return r
}

// matchProperties is the property-level structural predicate from spec.md §4.1: equal
// column-name annotation and equal source-type identity.
func matchProperties(a, b *model.Column) bool {
	return a.ColumnNameAnnotation == b.ColumnNameAnnotation && a.SourceType == b.SourceType
}

// sameColumnSet reports whether the two column-name lists denote structurally
// matching columns pairwise (by MatchProperties, via the two tables' column lookup),
// used by PK/FK/index pairing predicates.
func sameColumnSet(srcTable, tgtTable *model.Table, srcCols, tgtCols []string) bool {
	if len(srcCols) != len(tgtCols) {
		return false
	}
	for i := range srcCols {
		sc := srcTable.Column(srcCols[i])
		tc := tgtTable.Column(tgtCols[i])
		if sc == nil || tc == nil {
			return false
		}
		if !matchProperties(sc, tc) {
			return false
		}
	}
	return true
}
