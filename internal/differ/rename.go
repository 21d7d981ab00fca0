package differ

import (
	"fmt"

	"github.com/dbschema/schemadiff/internal/model"
	"github.com/dbschema/schemadiff/internal/ops"
)

// TempNamePrefix is the fixed prefix used to break rename chains and swaps
// (spec.md §4.4, §6). It must not collide with any user identifier; validating that
// is the caller's responsibility (spec.md §6, §9).
const TempNamePrefix = "__mig_tmp__"

// resolveTransitiveRenames applies the algorithm of spec.md §4.4 independently to the
// table, column and index rename buckets, sharing one counter across all three so
// generated temp names are globally unique.
func resolveTransitiveRenames(col *ops.Collection) {
	counter := 0

	tableRenames := renamesOf(col.ByKind(ops.KindRenameTable))
	resolvedTables, deferredTables, counter := resolveRenameBucket(tableRenames, tableScope, counter)
	col.Replace(ops.KindRenameTable, toOperations(append(resolvedTables, deferredTables...)))

	columnRenames := renamesOf(col.ByKind(ops.KindRenameColumn))
	resolvedColumns, deferredColumns, counter := resolveRenameBucket(columnRenames, columnScope, counter)
	col.Replace(ops.KindRenameColumn, toOperations(append(resolvedColumns, deferredColumns...)))

	indexRenames := renamesOf(col.ByKind(ops.KindRenameIndex))
	resolvedIndexes, deferredIndexes, _ := resolveRenameBucket(indexRenames, indexScope, counter)
	col.Replace(ops.KindRenameIndex, toOperations(append(resolvedIndexes, deferredIndexes...)))
}

// rename is a minimal uniform view over RenameTable/RenameColumn/RenameIndex used by
// the generic chain-breaking algorithm below.
type rename struct {
	scope   string // table name for column/index renames; empty for table renames
	old     string
	new     string
	rebuild func(old, new string) ops.Operation
}

func renamesOf(raw []ops.Operation) []rename {
	out := make([]rename, 0, len(raw))
	for _, o := range raw {
		switch v := any(o).(type) {
		case ops.RenameTable:
			out = append(out, rename{
				scope: "",
				old:   v.Name.Name,
				new:   v.NewName,
				rebuild: func(old, new string) ops.Operation {
					return ops.RenameTable{Name: model.SchemaQualifiedName{Schema: v.Name.Schema, Name: old}, NewName: new}
				},
			})
		case ops.RenameColumn:
			out = append(out, rename{
				scope: v.Table.String(),
				old:   v.OldName,
				new:   v.NewName,
				rebuild: func(old, new string) ops.Operation {
					return ops.RenameColumn{Table: v.Table, OldName: old, NewName: new}
				},
			})
		case ops.RenameIndex:
			out = append(out, rename{
				scope: v.Table.String(),
				old:   v.OldName,
				new:   v.NewName,
				rebuild: func(old, new string) ops.Operation {
					return ops.RenameIndex{Table: v.Table, OldName: old, NewName: new}
				},
			})
		}
	}
	return out
}

func tableScope(r rename) string  { return r.scope }
func columnScope(r rename) string { return r.scope }
func indexScope(r rename) string  { return r.scope }

// resolveRenameBucket implements spec.md §4.4: for each rename r at index i, scan
// later renames i+1..end for a *unique* r' whose old name equals r.new within the
// same scope. If found, replace r with (old=r.old, new=temp) and append
// (old=temp, new=r.new) to the deferred list, emitted after all direct renames. If
// more than one later rename qualifies, r is retained unchanged (ambiguous intent).
func resolveRenameBucket(renames []rename, scopeOf func(rename) string, counter int) (direct, deferred []rename, nextCounter int) {
	direct = make([]rename, len(renames))
	copy(direct, renames)

	for i := range direct {
		var match = -1
		ambiguous := false
		for j := i + 1; j < len(direct); j++ {
			if scopeOf(direct[j]) != scopeOf(direct[i]) {
				continue
			}
			if direct[j].old == direct[i].new {
				if match != -1 {
					ambiguous = true
					break
				}
				match = j
			}
		}
		if match == -1 || ambiguous {
			continue
		}

		temp := fmt.Sprintf("%s%d", TempNamePrefix, counter)
		counter++

		original := direct[i]
		direct[i] = rename{scope: original.scope, old: original.old, new: temp, rebuild: original.rebuild}
		deferred = append(deferred, rename{scope: original.scope, old: temp, new: original.new, rebuild: original.rebuild})
	}

	return direct, deferred, counter
}

func toOperations(renames []rename) []ops.Operation {
	out := make([]ops.Operation, 0, len(renames))
	for _, r := range renames {
		out = append(out, r.rebuild(r.old, r.new))
	}
	return out
}
