package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbschema/schemadiff/internal/model"
	"github.com/dbschema/schemadiff/internal/ops"
)

func qn(name string) model.SchemaQualifiedName {
	return model.SchemaQualifiedName{Schema: "dbo", Name: name}
}

func countKind(operations []ops.Operation, kind ops.Kind) int {
	n := 0
	for _, op := range operations {
		if op.Kind() == kind {
			n++
		}
	}
	return n
}

func TestDiff_NilModelsError(t *testing.T) {
	m := &model.DatabaseModel{}
	_, err := Diff(nil, m)
	assert.Error(t, err, "expected error for nil source")
	_, err = Diff(m, nil)
	assert.Error(t, err, "expected error for nil target")
}

func TestDiff_IdenticalModelsProduceNoOperations(t *testing.T) {
	m := &model.DatabaseModel{Tables: []model.Table{{
		Name:    qn("users"),
		Columns: []model.Column{{Name: "id", ColumnNameAnnotation: "id", SourceType: "int", DataType: "int"}},
	}}}
	operations, err := Diff(m, m)
	require.NoError(t, err)
	assert.Empty(t, operations, "identical models should produce no operations")
}

func TestDiff_CreateAndDropTable(t *testing.T) {
	source := &model.DatabaseModel{Tables: []model.Table{{Name: qn("old_table")}}}
	target := &model.DatabaseModel{Tables: []model.Table{{Name: qn("new_table")}}}

	operations, err := Diff(source, target)
	require.NoError(t, err)
	assert.Equal(t, 1, countKind(operations, ops.KindCreateTable), "expected one CreateTable")
	assert.Equal(t, 1, countKind(operations, ops.KindDropTable), "expected one DropTable")

	// DropTable (destructive) must precede CreateTable per canonical order.
	var dropIdx, createIdx = -1, -1
	for i, op := range operations {
		if op.Kind() == ops.KindDropTable {
			dropIdx = i
		}
		if op.Kind() == ops.KindCreateTable {
			createIdx = i
		}
	}
	assert.Less(t, dropIdx, createIdx, "expected DropTable to precede CreateTable in canonical order")
}

func TestDiff_RenameTable(t *testing.T) {
	source := &model.DatabaseModel{Tables: []model.Table{{Name: qn("users_old")}}}
	target := &model.DatabaseModel{Tables: []model.Table{{Name: qn("users_new")}}}
	// Force a fuzzy table match by giving them matching column structure.
	source.Tables[0].Columns = []model.Column{{Name: "id", ColumnNameAnnotation: "id", SourceType: "int"}}
	target.Tables[0].Columns = []model.Column{{Name: "id", ColumnNameAnnotation: "id", SourceType: "int"}}

	operations, err := Diff(source, target)
	require.NoError(t, err)
	assert.Equal(t, 1, countKind(operations, ops.KindRenameTable), "fuzzy pairing should have paired them")
	assert.Equal(t, 0, countKind(operations, ops.KindCreateTable), "a fuzzily-paired table rename should not also emit create/drop")
	assert.Equal(t, 0, countKind(operations, ops.KindDropTable), "a fuzzily-paired table rename should not also emit create/drop")
}

func TestDiff_AddAndDropColumn(t *testing.T) {
	source := &model.DatabaseModel{Tables: []model.Table{{
		Name: qn("users"),
		Columns: []model.Column{
			{Name: "id", ColumnNameAnnotation: "id", SourceType: "int", DataType: "int"},
			{Name: "legacy_flag", ColumnNameAnnotation: "legacy_flag", SourceType: "bool", DataType: "bool"},
		},
	}}}
	target := &model.DatabaseModel{Tables: []model.Table{{
		Name: qn("users"),
		Columns: []model.Column{
			{Name: "id", ColumnNameAnnotation: "id", SourceType: "int", DataType: "int"},
			{Name: "email", ColumnNameAnnotation: "email", SourceType: "string", DataType: "varchar"},
		},
	}}}

	operations, err := Diff(source, target)
	require.NoError(t, err)
	assert.Equal(t, 1, countKind(operations, ops.KindAddColumn), "expected one AddColumn for email")
	assert.Equal(t, 1, countKind(operations, ops.KindDropColumn), "expected one DropColumn for legacy_flag")
	assert.Equal(t, 0, countKind(operations, ops.KindRenameColumn), "columns with disjoint names/annotations must not be treated as a rename")
}

func TestDiff_AlterColumnOnPropertyChange(t *testing.T) {
	source := &model.DatabaseModel{Tables: []model.Table{{
		Name:    qn("users"),
		Columns: []model.Column{{Name: "age", ColumnNameAnnotation: "age", SourceType: "int", DataType: "smallint"}},
	}}}
	target := &model.DatabaseModel{Tables: []model.Table{{
		Name:    qn("users"),
		Columns: []model.Column{{Name: "age", ColumnNameAnnotation: "age", SourceType: "int", DataType: "int"}},
	}}}

	operations, err := Diff(source, target)
	require.NoError(t, err)
	assert.Equal(t, 1, countKind(operations, ops.KindAlterColumn))
}

func TestDiff_DefaultConstraintAddAndDrop(t *testing.T) {
	source := &model.DatabaseModel{Tables: []model.Table{{
		Name: qn("users"),
		Columns: []model.Column{{
			Name: "status", ColumnNameAnnotation: "status", SourceType: "string", DataType: "varchar",
			HasDefault: true, DefaultSQL: "'old'",
		}},
	}}}
	target := &model.DatabaseModel{Tables: []model.Table{{
		Name: qn("users"),
		Columns: []model.Column{{
			Name: "status", ColumnNameAnnotation: "status", SourceType: "string", DataType: "varchar",
			HasDefault: true, DefaultSQL: "'new'",
		}},
	}}}

	operations, err := Diff(source, target)
	require.NoError(t, err)
	assert.Equal(t, 1, countKind(operations, ops.KindAddDefaultConstraint), "expected an AddDefaultConstraint for the new default")
	assert.Equal(t, 1, countKind(operations, ops.KindDropDefaultConstraint), "expected a DropDefaultConstraint for the old default")
}

func TestDiff_PrimaryKeyReplacedWhenColumnsDiffer(t *testing.T) {
	source := &model.DatabaseModel{Tables: []model.Table{{
		Name:       qn("users"),
		Columns:    []model.Column{{Name: "user_id", ColumnNameAnnotation: "user_id", SourceType: "int", DataType: "int"}},
		PrimaryKey: &model.PrimaryKey{Name: "pk_users", Columns: []string{"user_id"}},
	}}}
	target := &model.DatabaseModel{Tables: []model.Table{{
		Name:       qn("users"),
		Columns:    []model.Column{{Name: "id", ColumnNameAnnotation: "id", SourceType: "int", DataType: "int"}},
		PrimaryKey: &model.PrimaryKey{Name: "pk_users", Columns: []string{"id"}},
	}}}

	operations, err := Diff(source, target)
	require.NoError(t, err)
	assert.Equal(t, 1, countKind(operations, ops.KindAddPrimaryKey), "expected AddPrimaryKey for the target's primary key")
	assert.Equal(t, 1, countKind(operations, ops.KindDropPrimaryKey), "expected DropPrimaryKey for the source's primary key")

	var dropIdx, addIdx = -1, -1
	for i, op := range operations {
		if op.Kind() == ops.KindDropPrimaryKey {
			dropIdx = i
		}
		if op.Kind() == ops.KindAddPrimaryKey {
			addIdx = i
		}
	}
	assert.Less(t, dropIdx, addIdx, "expected DropPrimaryKey to precede AddPrimaryKey in canonical order")
}

func TestDiff_ForeignKeyAddAndDrop(t *testing.T) {
	usersTable := model.Table{Name: qn("users"), Columns: []model.Column{{Name: "id", ColumnNameAnnotation: "id", SourceType: "int"}}}
	source := &model.DatabaseModel{Tables: []model.Table{usersTable, {
		Name:        qn("posts"),
		Columns:     []model.Column{{Name: "user_id", ColumnNameAnnotation: "user_id", SourceType: "int"}},
		ForeignKeys: []model.ForeignKey{{Name: "fk_old", Columns: []string{"user_id"}, RefColumns: []string{"id"}}},
	}}}
	target := &model.DatabaseModel{Tables: []model.Table{usersTable, {
		Name:        qn("posts"),
		Columns:     []model.Column{{Name: "user_id", ColumnNameAnnotation: "user_id", SourceType: "int"}},
		ForeignKeys: []model.ForeignKey{{Name: "fk_new", Columns: []string{"user_id"}, RefColumns: []string{"id"}, CascadeDelete: true}},
	}}}

	operations, err := Diff(source, target)
	require.NoError(t, err)
	assert.Equal(t, 1, countKind(operations, ops.KindAddForeignKey), "a CascadeDelete-flag change should replace the fk via drop+add, not pair it")
	assert.Equal(t, 1, countKind(operations, ops.KindDropForeignKey), "a CascadeDelete-flag change should replace the fk via drop+add, not pair it")
}

func TestResolveRenameBucket_SimpleChainDefersSecondHop(t *testing.T) {
	renames := []rename{
		{scope: "", old: "a", new: "b", rebuild: func(old, new string) ops.Operation {
			return ops.RenameTable{Name: qn(old), NewName: new}
		}},
		{scope: "", old: "b", new: "c", rebuild: func(old, new string) ops.Operation {
			return ops.RenameTable{Name: qn(old), NewName: new}
		}},
	}
	direct, deferred, next := resolveRenameBucket(renames, tableScope, 0)
	assert.Equal(t, 1, next, "expected exactly one temp name allocated")
	assert.NotEqual(t, "b", direct[0].new, "expected the first rename's target to be rewritten to a temp name to break the chain")
	require.Len(t, deferred, 1)
	assert.Equal(t, direct[0].new, deferred[0].old, "expected a single deferred hop from the temp name")
	assert.Equal(t, "c", deferred[0].new)
}

func TestResolveRenameBucket_AmbiguousMatchLeavesRenameUnchanged(t *testing.T) {
	renames := []rename{
		{scope: "", old: "a", new: "shared", rebuild: func(old, new string) ops.Operation {
			return ops.RenameTable{Name: qn(old), NewName: new}
		}},
		{scope: "", old: "shared", new: "x", rebuild: func(old, new string) ops.Operation {
			return ops.RenameTable{Name: qn(old), NewName: new}
		}},
		{scope: "", old: "shared", new: "y", rebuild: func(old, new string) ops.Operation {
			return ops.RenameTable{Name: qn(old), NewName: new}
		}},
	}
	direct, deferred, _ := resolveRenameBucket(renames, tableScope, 0)
	assert.Equal(t, "shared", direct[0].new, "expected the ambiguous rename to be left unchanged")
	assert.Empty(t, deferred, "expected no deferred hop to be generated for an ambiguous match")
}

func TestResolveRenameBucket_DifferentScopeDoesNotChain(t *testing.T) {
	renames := []rename{
		{scope: "table_a", old: "x", new: "y", rebuild: func(old, new string) ops.Operation {
			return ops.RenameColumn{Table: qn("table_a"), OldName: old, NewName: new}
		}},
		{scope: "table_b", old: "y", new: "z", rebuild: func(old, new string) ops.Operation {
			return ops.RenameColumn{Table: qn("table_b"), OldName: old, NewName: new}
		}},
	}
	direct, deferred, _ := resolveRenameBucket(renames, columnScope, 0)
	assert.Equal(t, "y", direct[0].new, "renames in different scopes must not chain")
	assert.Empty(t, deferred, "expected no deferred hop across scopes")
}

func TestDefaultsMatch_NumericEquivalenceIgnoresFormatting(t *testing.T) {
	a := &model.Column{HasDefault: true, DefaultValue: "10.00"}
	b := &model.Column{HasDefault: true, DefaultValue: "10.0"}
	match, err := defaultsMatch(a, b)
	require.NoError(t, err)
	assert.True(t, match, "expected numerically-equivalent defaults to match despite different formatting")
}

func TestDefaultsMatch_DifferentSQLNeverMatches(t *testing.T) {
	a := &model.Column{HasDefault: true, DefaultSQL: "CURRENT_TIMESTAMP"}
	b := &model.Column{HasDefault: true, DefaultSQL: "NOW()"}
	match, err := defaultsMatch(a, b)
	require.NoError(t, err)
	assert.False(t, match, "expected different default SQL expressions to not match")
}
