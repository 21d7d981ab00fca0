package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_NilProfilePassesThrough(t *testing.T) {
	var p *TypeMappingProfile
	assert.Equal(t, "character varying(255)", p.Normalize("postgres", "CHARACTER VARYING(255)"), "want lowercased passthrough")
}

func TestNormalize_EmptyProfilePassesThrough(t *testing.T) {
	p, err := LoadProfile("")
	require.NoError(t, err)
	assert.Equal(t, "int", p.Normalize("mysql", "INT"))
}

func TestNormalize_ExactKeywordMapping(t *testing.T) {
	p := &TypeMappingProfile{dialects: map[string]*DialectTypeMapping{
		"postgres": {Mappings: map[string]string{"character varying": "varchar"}},
	}}
	assert.Equal(t, "varchar", p.Normalize("postgres", "character varying(255)"))
}

func TestNormalize_SpecialMappingTakesPriorityOverKeyword(t *testing.T) {
	p := &TypeMappingProfile{dialects: map[string]*DialectTypeMapping{
		"mysql": {
			Mappings: map[string]string{"int": "int4"},
			SpecialMappings: []SpecialMapping{
				{SourceTypePattern: `^int\(11\)`, TargetType: "integer"},
			},
		},
	}}
	assert.Equal(t, "integer", p.Normalize("mysql", "int(11)"), "want integer from the special mapping")
}

func TestNormalize_UnknownDialectPassesThrough(t *testing.T) {
	p := &TypeMappingProfile{dialects: map[string]*DialectTypeMapping{
		"postgres": {Mappings: map[string]string{"int4": "int"}},
	}}
	assert.Equal(t, "integer", p.Normalize("sqlite", "INTEGER"), "want lowercased passthrough for a dialect with no entry")
}

func TestNormalizeTypeKey_StripsPrecisionModifiers(t *testing.T) {
	cases := map[string]string{
		"decimal(10,2)": "decimal",
		"varchar(255)":  "varchar",
		"int":           "int",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeTypeKey(in), "normalizeTypeKey(%q)", in)
	}
}
