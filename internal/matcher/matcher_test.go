package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbschema/schemadiff/internal/model"
)

func qn(name string) model.SchemaQualifiedName {
	return model.SchemaQualifiedName{Schema: "dbo", Name: name}
}

func col(name string) model.Column {
	return model.Column{Name: name, ColumnNameAnnotation: name, SourceType: "int"}
}

func TestMatchTables_ExactName(t *testing.T) {
	source := &model.DatabaseModel{Tables: []model.Table{{Name: qn("users")}}}
	target := &model.DatabaseModel{Tables: []model.Table{{Name: qn("users")}}}

	r := Match(source, target)
	assert.Len(t, r.Tables, 1)
	assert.Empty(t, r.UnpairedSourceTables, "expected no unpaired tables")
	assert.Empty(t, r.UnpairedTargetTables, "expected no unpaired tables")
}

func TestMatchTables_NoMatchLeavesBothUnpaired(t *testing.T) {
	source := &model.DatabaseModel{Tables: []model.Table{{Name: qn("orders")}}}
	target := &model.DatabaseModel{Tables: []model.Table{{Name: qn("invoices")}}}

	r := Match(source, target)
	assert.Empty(t, r.Tables, "expected no table pairs")
	assert.Len(t, r.UnpairedSourceTables, 1, "expected both tables unpaired")
	assert.Len(t, r.UnpairedTargetTables, 1, "expected both tables unpaired")
}

func TestFuzzyEntityMatch_AboveThreshold(t *testing.T) {
	// 4 of 5 columns on each side overlap: ratio = 2*4/(5+5) = 0.8, exactly at threshold.
	a := &model.Table{Columns: []model.Column{col("a"), col("b"), col("c"), col("d"), col("e1")}}
	b := &model.Table{Columns: []model.Column{col("a"), col("b"), col("c"), col("d"), col("e2")}}
	assert.True(t, fuzzyEntityMatch(a, b), "expected fuzzy match at exactly 80% overlap")
}

func TestFuzzyEntityMatch_BelowThreshold(t *testing.T) {
	// 3 of 5 columns overlap: ratio = 2*3/10 = 0.6, below threshold.
	a := &model.Table{Columns: []model.Column{col("a"), col("b"), col("c"), col("d1"), col("e1")}}
	b := &model.Table{Columns: []model.Column{col("a"), col("b"), col("c"), col("d2"), col("e2")}}
	assert.False(t, fuzzyEntityMatch(a, b), "expected no fuzzy match below 80% overlap")
}

func TestFuzzyEntityMatch_BothEmpty(t *testing.T) {
	a := &model.Table{}
	b := &model.Table{}
	assert.False(t, fuzzyEntityMatch(a, b), "two tables with zero columns should never fuzzy-match")
}

func TestMatchColumns_ExactThenFuzzy(t *testing.T) {
	source := &model.Table{Columns: []model.Column{
		{Name: "id", ColumnNameAnnotation: "id", SourceType: "int"},
		{Name: "old_email", ColumnNameAnnotation: "email", SourceType: "string"},
	}}
	target := &model.Table{Columns: []model.Column{
		{Name: "id", ColumnNameAnnotation: "id", SourceType: "int"},
		{Name: "new_email", ColumnNameAnnotation: "email", SourceType: "string"},
	}}

	pairs, unSrc, unTgt := matchColumns(source, target)
	assert.Len(t, pairs, 2, "want one exact, one fuzzy via annotation")
	assert.Empty(t, unSrc, "expected no unpaired columns")
	assert.Empty(t, unTgt, "expected no unpaired columns")
}

func TestMatchColumns_LiveIntrospectedColumnsNeverFuzzyAcrossRename(t *testing.T) {
	// For live-DB-introspected columns ColumnNameAnnotation always equals Name, so a
	// genuine rename can never satisfy matchProperties.
	source := &model.Table{Columns: []model.Column{
		{Name: "user_id", ColumnNameAnnotation: "user_id", SourceType: "int"},
	}}
	target := &model.Table{Columns: []model.Column{
		{Name: "id", ColumnNameAnnotation: "id", SourceType: "int"},
	}}

	pairs, unSrc, unTgt := matchColumns(source, target)
	assert.Empty(t, pairs, "rename should not bridge")
	assert.Len(t, unSrc, 1, "expected both sides unpaired")
	assert.Len(t, unTgt, 1, "expected both sides unpaired")
}

func TestMatchPrimaryKey_Pairs(t *testing.T) {
	source := &model.Table{
		Columns:    []model.Column{col("id")},
		PrimaryKey: &model.PrimaryKey{Name: "pk_users", Columns: []string{"id"}, Clustered: true},
	}
	target := &model.Table{
		Columns:    []model.Column{col("id")},
		PrimaryKey: &model.PrimaryKey{Name: "pk_users", Columns: []string{"id"}, Clustered: true},
	}
	assert.NotNil(t, matchPrimaryKey(source, target, nil), "expected matching primary keys to pair")
}

func TestMatchPrimaryKey_DifferentColumnFailsToPair(t *testing.T) {
	source := &model.Table{
		Columns:    []model.Column{col("user_id")},
		PrimaryKey: &model.PrimaryKey{Name: "pk_users", Columns: []string{"user_id"}},
	}
	target := &model.Table{
		Columns:    []model.Column{col("id")},
		PrimaryKey: &model.PrimaryKey{Name: "pk_users", Columns: []string{"id"}},
	}
	assert.Nil(t, matchPrimaryKey(source, target, nil), "expected primary keys on differently-named columns to not pair")
}

func TestMatchPrimaryKey_NilWhenEitherSideAbsent(t *testing.T) {
	withPK := &model.Table{Columns: []model.Column{col("id")}, PrimaryKey: &model.PrimaryKey{Name: "pk", Columns: []string{"id"}}}
	withoutPK := &model.Table{Columns: []model.Column{col("id")}}
	assert.Nil(t, matchPrimaryKey(withPK, withoutPK, nil), "expected nil pair when target has no primary key")
	assert.Nil(t, matchPrimaryKey(withoutPK, withPK, nil), "expected nil pair when source has no primary key")
}

func TestMatchForeignKeys_PairsOnStructuralAgreement(t *testing.T) {
	source := &model.Table{
		Columns: []model.Column{col("user_id")},
		ForeignKeys: []model.ForeignKey{
			{Name: "fk_a", Columns: []string{"user_id"}, RefColumns: []string{"id"}, Required: true},
		},
	}
	target := &model.Table{
		Columns: []model.Column{col("user_id")},
		ForeignKeys: []model.ForeignKey{
			{Name: "fk_b", Columns: []string{"user_id"}, RefColumns: []string{"id"}, Required: true},
		},
	}
	pairs, unSrc, unTgt := matchForeignKeys(source, target, nil)
	assert.Len(t, pairs, 1, "name is not part of the predicate")
	assert.Empty(t, unSrc, "expected no unpaired foreign keys")
	assert.Empty(t, unTgt, "expected no unpaired foreign keys")
}

func TestMatchForeignKeys_RequiredFlagMismatchBlocksPairing(t *testing.T) {
	source := &model.Table{
		Columns:     []model.Column{col("user_id")},
		ForeignKeys: []model.ForeignKey{{Name: "fk_a", Columns: []string{"user_id"}, RefColumns: []string{"id"}, Required: true}},
	}
	target := &model.Table{
		Columns:     []model.Column{col("user_id")},
		ForeignKeys: []model.ForeignKey{{Name: "fk_a", Columns: []string{"user_id"}, RefColumns: []string{"id"}, Required: false}},
	}
	pairs, _, _ := matchForeignKeys(source, target, nil)
	assert.Empty(t, pairs, "expected required-flag mismatch to block pairing")
}

func TestMatchIndexes_PairsOnUniqueAndColumns(t *testing.T) {
	source := &model.Table{
		Columns: []model.Column{col("email")},
		Indexes: []model.Index{{Name: "ix_a", Columns: []string{"email"}, Unique: true}},
	}
	target := &model.Table{
		Columns: []model.Column{col("email")},
		Indexes: []model.Index{{Name: "ix_b", Columns: []string{"email"}, Unique: true}},
	}
	pairs, unSrc, unTgt := matchIndexes(source, target, nil)
	assert.Len(t, pairs, 1)
	assert.Empty(t, unSrc, "expected no unpaired indexes")
	assert.Empty(t, unTgt, "expected no unpaired indexes")
}

func TestMatchIndexes_UniqueMismatchBlocksPairing(t *testing.T) {
	source := &model.Table{
		Columns: []model.Column{col("email")},
		Indexes: []model.Index{{Name: "ix_a", Columns: []string{"email"}, Unique: true}},
	}
	target := &model.Table{
		Columns: []model.Column{col("email")},
		Indexes: []model.Index{{Name: "ix_a", Columns: []string{"email"}, Unique: false}},
	}
	pairs, unSrc, unTgt := matchIndexes(source, target, nil)
	assert.Empty(t, pairs, "expected unique-flag mismatch to block pairing")
	assert.Len(t, unSrc, 1, "expected both indexes unpaired")
	assert.Len(t, unTgt, 1, "expected both indexes unpaired")
}
