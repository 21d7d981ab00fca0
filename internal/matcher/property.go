package matcher

import "github.com/dbschema/schemadiff/internal/model"

// matchColumns pairs columns of an already-paired table: simple (exact-name) match
// first, then fuzzy (matchProperties) among the remainder, per spec.md §4.1. The
// database-level re-validation spec.md §4.1 describes ("pairings are re-validated at
// the database level [...] same predicates applied to Column") collapses to the same
// check here since this package operates directly on database-level model.Column.
func matchColumns(source, target *model.Table) (pairs []ColumnPair, unpairedSource, unpairedTarget []*model.Column) {
	usedSource := make([]bool, len(source.Columns))
	usedTarget := make([]bool, len(target.Columns))

	for si := range source.Columns {
		for ti := range target.Columns {
			if usedTarget[ti] {
				continue
			}
			if source.Columns[si].Name == target.Columns[ti].Name {
				pairs = append(pairs, ColumnPair{Source: &source.Columns[si], Target: &target.Columns[ti]})
				usedSource[si] = true
				usedTarget[ti] = true
				break
			}
		}
	}

	for si := range source.Columns {
		if usedSource[si] {
			continue
		}
		for ti := range target.Columns {
			if usedTarget[ti] {
				continue
			}
			if matchProperties(&source.Columns[si], &target.Columns[ti]) {
				pairs = append(pairs, ColumnPair{Source: &source.Columns[si], Target: &target.Columns[ti]})
				usedSource[si] = true
				usedTarget[ti] = true
				break
			}
		}
	}

	for si := range source.Columns {
		if !usedSource[si] {
			unpairedSource = append(unpairedSource, &source.Columns[si])
		}
	}
	for ti := range target.Columns {
		if !usedTarget[ti] {
			unpairedTarget = append(unpairedTarget, &target.Columns[ti])
		}
	}
	return
}
