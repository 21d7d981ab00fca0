package matcher

import "github.com/dbschema/schemadiff/internal/model"

// matchPrimaryKey pairs the source and target primary keys of an already-paired
// table when both exist and their column lists structurally match (spec.md §4.1).
// The database-level predicate additionally compares name and clustered flag.
func matchPrimaryKey(source, target *model.Table, _ []ColumnPair) *PrimaryKeyPair {
	if source.PrimaryKey == nil || target.PrimaryKey == nil {
		return nil
	}
	if !sameColumnSet(source, target, source.PrimaryKey.Columns, target.PrimaryKey.Columns) {
		return nil
	}
	if source.PrimaryKey.Name != target.PrimaryKey.Name {
		return nil
	}
	if source.PrimaryKey.Clustered != target.PrimaryKey.Clustered {
		return nil
	}
	return &PrimaryKeyPair{Source: source.PrimaryKey, Target: target.PrimaryKey}
}

// matchForeignKeys pairs foreign keys between an already-paired table's source and
// target sides: cross-product, pairing iff unique flag, required flag, column lists
// and referenced-column lists all structurally agree, plus (at the database level)
// cascade-delete.
func matchForeignKeys(source, target *model.Table, _ []ColumnPair) (pairs []ForeignKeyPair, unpairedSource, unpairedTarget []*model.ForeignKey) {
	usedSource := make([]bool, len(source.ForeignKeys))
	usedTarget := make([]bool, len(target.ForeignKeys))

	for si := range source.ForeignKeys {
		for ti := range target.ForeignKeys {
			if usedTarget[ti] {
				continue
			}
			if foreignKeysMatch(source, target, &source.ForeignKeys[si], &target.ForeignKeys[ti]) {
				pairs = append(pairs, ForeignKeyPair{Source: &source.ForeignKeys[si], Target: &target.ForeignKeys[ti]})
				usedSource[si] = true
				usedTarget[ti] = true
				break
			}
		}
	}

	for si := range source.ForeignKeys {
		if !usedSource[si] {
			unpairedSource = append(unpairedSource, &source.ForeignKeys[si])
		}
	}
	for ti := range target.ForeignKeys {
		if !usedTarget[ti] {
			unpairedTarget = append(unpairedTarget, &target.ForeignKeys[ti])
		}
	}
	return
}

func foreignKeysMatch(srcTable, tgtTable *model.Table, a, b *model.ForeignKey) bool {
	if a.Unique != b.Unique || a.Required != b.Required || a.CascadeDelete != b.CascadeDelete {
		return false
	}
	if !sameColumnSet(srcTable, tgtTable, a.Columns, b.Columns) {
		return false
	}
	// Referenced columns belong to the referenced table, which may itself differ
	// between source and target models (e.g. across a rename); fall back to
	// positional type-identity independent of which table object owns them by
	// comparing the raw names here, matching the spec's "referenced-property-lists
	// all agree" wording at the name level.
	if len(a.RefColumns) != len(b.RefColumns) {
		return false
	}
	for i := range a.RefColumns {
		if a.RefColumns[i] != b.RefColumns[i] {
			return false
		}
	}
	return true
}

// matchIndexes pairs indexes between an already-paired table's source and target
// sides: cross-product, pairing iff unique flag agrees and column lists structurally
// match; database-level re-validation adds clustering.
func matchIndexes(source, target *model.Table, _ []ColumnPair) (pairs []IndexPair, unpairedSource, unpairedTarget []*model.Index) {
	usedSource := make([]bool, len(source.Indexes))
	usedTarget := make([]bool, len(target.Indexes))

	for si := range source.Indexes {
		for ti := range target.Indexes {
			if usedTarget[ti] {
				continue
			}
			a, b := &source.Indexes[si], &target.Indexes[ti]
			if a.Unique == b.Unique && a.Clustered == b.Clustered && sameColumnSet(source, target, a.Columns, b.Columns) {
				pairs = append(pairs, IndexPair{Source: a, Target: b})
				usedSource[si] = true
				usedTarget[ti] = true
				break
			}
		}
	}

	for si := range source.Indexes {
		if !usedSource[si] {
			unpairedSource = append(unpairedSource, &source.Indexes[si])
		}
	}
	for ti := range target.Indexes {
		if !usedTarget[ti] {
			unpairedTarget = append(unpairedTarget, &target.Indexes[ti])
		}
	}
	return
}
