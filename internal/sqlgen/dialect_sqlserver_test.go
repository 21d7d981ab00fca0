package sqlgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbschema/schemadiff/internal/model"
	"github.com/dbschema/schemadiff/internal/ops"
)

func TestSQLServerRenameTable_UsesSpRename(t *testing.T) {
	d := NewSQLServer()
	statements, err := GenerateSql([]ops.Operation{ops.RenameTable{Name: qn("old_users"), NewName: "users"}}, d)
	require.NoError(t, err)
	assert.Contains(t, statements[0].Text, "sp_rename")
}

func TestSQLServerQuoteIdent_UsesBrackets(t *testing.T) {
	d := NewSQLServer()
	assert.Equal(t, "[users]", d.QuoteIdent("users"))
}

func TestSQLServerClusteredSuffix(t *testing.T) {
	d := NewSQLServer()
	assert.Equal(t, "", d.ClusteredSuffix(true), "clustered PK should not need a suffix")
	assert.Contains(t, d.ClusteredSuffix(false), "NONCLUSTERED", "non-clustered PK should say so explicitly")
}

// TestSQLServerPreProcess_AlterColumnOnPrimaryKeySynthesizesDropAndAdd verifies the
// pre-AlterColumn synthesis pass: altering a column that belongs to the primary key
// must drop the key beforehand and re-add it afterward, since SQL Server won't let an
// in-place ALTER COLUMN touch a key column directly.
func TestSQLServerPreProcess_AlterColumnOnPrimaryKeySynthesizesDropAndAdd(t *testing.T) {
	sourceModel := &model.DatabaseModel{Tables: []model.Table{{
		Name:       qn("users"),
		Columns:    []model.Column{{Name: "id", DataType: "int"}},
		PrimaryKey: &model.PrimaryKey{Name: "pk_users", Columns: []string{"id"}, Clustered: true},
	}}}
	targetModel := &model.DatabaseModel{Tables: []model.Table{{
		Name:       qn("users"),
		Columns:    []model.Column{{Name: "id", DataType: "bigint"}},
		PrimaryKey: &model.PrimaryKey{Name: "pk_users", Columns: []string{"id"}, Clustered: true},
	}}}

	d, err := Create("sqlserver", sourceModel, targetModel)
	require.NoError(t, err)

	alter := ops.AlterColumn{Table: qn("users"), NewColumn: model.Column{Name: "id", DataType: "bigint"}}
	statements, err := GenerateSql([]ops.Operation{alter}, d)
	require.NoError(t, err)

	var sawDropPK, sawAddPK, sawAlter bool
	dropIdx, alterIdx, addIdx := -1, -1, -1
	for i, s := range statements {
		switch {
		case strings.Contains(s.Text, "DROP CONSTRAINT"):
			sawDropPK = true
			dropIdx = i
		case strings.Contains(s.Text, "ADD CONSTRAINT") && strings.Contains(s.Text, "PRIMARY KEY"):
			sawAddPK = true
			addIdx = i
		case strings.Contains(s.Text, "ALTER COLUMN"):
			sawAlter = true
			alterIdx = i
		}
	}
	assert.True(t, sawDropPK, "expected a synthesized DropPrimaryKey before the column alteration")
	assert.True(t, sawAddPK, "expected a synthesized AddPrimaryKey after the column alteration")
	require.True(t, sawAlter, "expected the original AlterColumn to still be rendered")
	assert.Less(t, dropIdx, alterIdx, "expected DropPrimaryKey to precede the AlterColumn in canonical order")
	assert.Less(t, alterIdx, addIdx, "expected AlterColumn to precede the re-added AddPrimaryKey in canonical order")
}

// TestSQLServerPreProcess_SequenceOperationsSurviveSynthesisMerge guards against
// ops.Collection.Flatten silently dropping KindCreateSequence/KindDropSequence, which
// ops.CanonicalOrder has no entry for, when PreProcess re-merges a synthesized
// drop/add pair back into the stream.
func TestSQLServerPreProcess_SequenceOperationsSurviveSynthesisMerge(t *testing.T) {
	sourceModel := &model.DatabaseModel{Tables: []model.Table{{
		Name:       qn("users"),
		Columns:    []model.Column{{Name: "id", DataType: "int"}},
		PrimaryKey: &model.PrimaryKey{Name: "pk_users", Columns: []string{"id"}, Clustered: true},
	}}}
	targetModel := &model.DatabaseModel{Tables: []model.Table{{
		Name:       qn("users"),
		Columns:    []model.Column{{Name: "id", DataType: "bigint"}},
		PrimaryKey: &model.PrimaryKey{Name: "pk_users", Columns: []string{"id"}, Clustered: true},
	}}}

	d, err := Create("sqlserver", sourceModel, targetModel)
	require.NoError(t, err)

	alter := ops.AlterColumn{Table: qn("users"), NewColumn: model.Column{Name: "id", DataType: "bigint"}}
	seq := ops.CreateSequence{Sequence: model.Sequence{Name: qn("users_seq")}}
	statements, err := GenerateSql([]ops.Operation{alter, seq}, d)
	require.NoError(t, err)

	var sawSequence bool
	for _, s := range statements {
		if strings.Contains(s.Text, "users_seq") {
			sawSequence = true
		}
	}
	assert.True(t, sawSequence, "expected the CreateSequence operation to survive the primary-key synthesis merge")
}

func TestSQLServerPreProcess_NoKeyInvolvementLeavesStreamUnchanged(t *testing.T) {
	sourceModel := &model.DatabaseModel{Tables: []model.Table{{
		Name:    qn("users"),
		Columns: []model.Column{{Name: "nickname", DataType: "varchar"}},
	}}}
	targetModel := &model.DatabaseModel{Tables: []model.Table{{
		Name:    qn("users"),
		Columns: []model.Column{{Name: "nickname", DataType: "nvarchar"}},
	}}}
	d, err := Create("sqlserver", sourceModel, targetModel)
	require.NoError(t, err)

	alter := ops.AlterColumn{Table: qn("users"), NewColumn: model.Column{Name: "nickname", DataType: "nvarchar"}}
	statements, err := GenerateSql([]ops.Operation{alter}, d)
	require.NoError(t, err)
	assert.Len(t, statements, 1, "no key/default synthesis expected")
}

func TestResolveSourceTableName_WalksRenameThenMove(t *testing.T) {
	renames := []ops.RenameTable{{Name: qn("old_users"), NewName: "users"}}
	moves := []ops.MoveTable{{OldName: model.SchemaQualifiedName{Schema: "staging", Name: "old_users"}, NewSchema: "dbo"}}
	got := resolveSourceTableName(qn("users"), renames, moves)
	assert.Equal(t, model.SchemaQualifiedName{Schema: "staging", Name: "old_users"}, got)
}

func TestResolveSourceColumnName_IdentityWhenNoRename(t *testing.T) {
	got := resolveSourceColumnName(qn("users"), "email", nil)
	assert.Equal(t, "email", got, "expected identity fallback")
}
