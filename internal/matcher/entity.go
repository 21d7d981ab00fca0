package matcher

import "github.com/dbschema/schemadiff/internal/model"

// matchTables pairs tables between source and target: simple (exact-name) matches
// first, then fuzzy matches among the remainder, per spec.md §4.1.
func matchTables(source, target *model.DatabaseModel, r *Result) {
	usedSource := make([]bool, len(source.Tables))
	usedTarget := make([]bool, len(target.Tables))

	// Simple match: names equal byte-for-byte (ordinal). Table identity for "name" in
	// this tier is the qualified name, since schema-qualified tables are the unit the
	// differ operates over.
	for si := range source.Tables {
		for ti := range target.Tables {
			if usedTarget[ti] {
				continue
			}
			if source.Tables[si].Name.Equal(target.Tables[ti].Name) {
				r.Tables = append(r.Tables, TablePair{Source: &source.Tables[si], Target: &target.Tables[ti]})
				usedSource[si] = true
				usedTarget[ti] = true
				break
			}
		}
	}

	// Fuzzy match among the unmatched remainder: enumerate the cross-product in
	// source-then-target order; first acceptable pair wins and excludes both sides
	// from further fuzzy consideration (spec.md §9, ambiguity handling).
	for si := range source.Tables {
		if usedSource[si] {
			continue
		}
		for ti := range target.Tables {
			if usedTarget[ti] {
				continue
			}
			if fuzzyEntityMatch(&source.Tables[si], &target.Tables[ti]) {
				r.Tables = append(r.Tables, TablePair{Source: &source.Tables[si], Target: &target.Tables[ti]})
				usedSource[si] = true
				usedTarget[ti] = true
				break
			}
		}
	}

	for si := range source.Tables {
		if !usedSource[si] {
			r.UnpairedSourceTables = append(r.UnpairedSourceTables, &source.Tables[si])
		}
	}
	for ti := range target.Tables {
		if !usedTarget[ti] {
			r.UnpairedTargetTables = append(r.UnpairedTargetTables, &target.Tables[ti])
		}
	}
}

// fuzzyEntityMatch implements the 80% structural-overlap rule: pair (e1, e2) iff at
// least 80% of the (p1, p2) cross-product pairs satisfy MatchProperties, where ratio
// is 2*|matches| / (|e1.props| + |e2.props|).
func fuzzyEntityMatch(a, b *model.Table) bool {
	if len(a.Columns) == 0 && len(b.Columns) == 0 {
		return false
	}
	matches := 0
	usedB := make([]bool, len(b.Columns))
	for i := range a.Columns {
		for j := range b.Columns {
			if usedB[j] {
				continue
			}
			if matchProperties(&a.Columns[i], &b.Columns[j]) {
				matches++
				usedB[j] = true
				break
			}
		}
	}
	ratio := 2 * float64(matches) / float64(len(a.Columns)+len(b.Columns))
	return ratio >= 0.8
}
