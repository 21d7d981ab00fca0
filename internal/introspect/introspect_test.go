package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbschema/schemadiff/internal/config"
	"github.com/dbschema/schemadiff/internal/model"
)

func TestIntrospect_UnsupportedDialectErrors(t *testing.T) {
	_, err := Introspect(nil, "oracle", "dsn", nil)
	assert.Error(t, err, "expected an error for an unsupported dialect")
}

func TestNormalizeTypes_RewritesEveryColumnInPlace(t *testing.T) {
	m := &model.DatabaseModel{Tables: []model.Table{{
		Name: model.SchemaQualifiedName{Schema: "public", Name: "users"},
		Columns: []model.Column{
			{Name: "id", DataType: "INT4"},
			{Name: "email", DataType: "character varying(255)"},
		},
	}}}

	profile, err := config.LoadProfile("")
	require.NoError(t, err)
	normalizeTypes(m, "postgres", profile)

	assert.Equal(t, "int4", m.Tables[0].Columns[0].DataType, "want lowercased passthrough with no override profile")
	assert.Equal(t, "character varying(255)", m.Tables[0].Columns[1].DataType, "want lowercased passthrough with no override profile")
}

func TestNormalizeTypes_NilProfileStillLowercases(t *testing.T) {
	m := &model.DatabaseModel{Tables: []model.Table{{
		Name:    model.SchemaQualifiedName{Schema: "public", Name: "users"},
		Columns: []model.Column{{Name: "id", DataType: "INT4"}},
	}}}
	normalizeTypes(m, "postgres", nil)
	assert.Equal(t, "int4", m.Tables[0].Columns[0].DataType)
}
