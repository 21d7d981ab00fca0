package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQualifiedName(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    SchemaQualifiedName
		wantErr bool
	}{
		{"simple", "dbo.users", SchemaQualifiedName{Schema: "dbo", Name: "users"}, false},
		{"name with dot", "dbo.user.profile", SchemaQualifiedName{Schema: "dbo", Name: "user.profile"}, false},
		{"no dot", "users", SchemaQualifiedName{}, true},
		{"empty schema", ".users", SchemaQualifiedName{}, true},
		{"empty name", "dbo.", SchemaQualifiedName{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseQualifiedName(tc.in)
			if tc.wantErr {
				assert.Error(t, err, "expected error for %q", tc.in)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSchemaQualifiedNameEqualAndString(t *testing.T) {
	a := SchemaQualifiedName{Schema: "dbo", Name: "users"}
	b := SchemaQualifiedName{Schema: "dbo", Name: "users"}
	c := SchemaQualifiedName{Schema: "dbo", Name: "Users"}

	assert.True(t, a.Equal(b), "expected equal qualified names to compare equal")
	assert.False(t, a.Equal(c), "expected case-sensitive comparison to differ")
	assert.Equal(t, "dbo.users", a.String())
}

func TestTableColumnLookup(t *testing.T) {
	table := Table{
		Name: SchemaQualifiedName{Schema: "dbo", Name: "users"},
		Columns: []Column{
			{Name: "id"},
			{Name: "email"},
		},
	}
	c := table.Column("email")
	require.NotNil(t, c)
	assert.Equal(t, "email", c.Name)
	assert.Nil(t, table.Column("missing"), "expected nil for missing column")
}

func TestDatabaseModelTableLookup(t *testing.T) {
	m := DatabaseModel{
		Tables: []Table{
			{Name: SchemaQualifiedName{Schema: "dbo", Name: "users"}},
			{Name: SchemaQualifiedName{Schema: "dbo", Name: "posts"}},
		},
	}
	assert.NotNil(t, m.Table(SchemaQualifiedName{Schema: "dbo", Name: "posts"}), "expected to find posts table")
	assert.Nil(t, m.Table(SchemaQualifiedName{Schema: "dbo", Name: "missing"}), "expected nil for missing table")
	assert.Equal(t, 2, m.Len())
}

func validUsersTable() Table {
	return Table{
		Name: SchemaQualifiedName{Schema: "dbo", Name: "users"},
		Columns: []Column{
			{Name: "id", HasDefault: false},
			{Name: "name", HasDefault: true, DefaultSQL: "''"},
		},
		PrimaryKey: &PrimaryKey{Name: "pk_users", Columns: []string{"id"}},
	}
}

func TestDatabaseModelValidate_Valid(t *testing.T) {
	m := DatabaseModel{Tables: []Table{validUsersTable()}}
	assert.NoError(t, m.Validate())
}

func TestDatabaseModelValidate_DuplicateTable(t *testing.T) {
	t1 := validUsersTable()
	t2 := validUsersTable()
	m := DatabaseModel{Tables: []Table{t1, t2}}
	assert.Error(t, m.Validate(), "expected error for duplicate table")
}

func TestDatabaseModelValidate_DuplicateColumn(t *testing.T) {
	tbl := validUsersTable()
	tbl.Columns = append(tbl.Columns, Column{Name: "id"})
	m := DatabaseModel{Tables: []Table{tbl}}
	assert.Error(t, m.Validate(), "expected error for duplicate column")
}

func TestDatabaseModelValidate_HasDefaultMismatch(t *testing.T) {
	tbl := validUsersTable()
	tbl.Columns[1].HasDefault = false
	m := DatabaseModel{Tables: []Table{tbl}}
	assert.Error(t, m.Validate(), "expected error for has_default mismatch")
}

func TestDatabaseModelValidate_PrimaryKeyUnknownColumn(t *testing.T) {
	tbl := validUsersTable()
	tbl.PrimaryKey = &PrimaryKey{Name: "pk_users", Columns: []string{"missing"}}
	m := DatabaseModel{Tables: []Table{tbl}}
	assert.Error(t, m.Validate(), "expected error for primary key referencing unknown column")
}

func TestDatabaseModelValidate_ForeignKeyColumnCountMismatch(t *testing.T) {
	tbl := validUsersTable()
	tbl.ForeignKeys = []ForeignKey{{
		Name:       "fk_users_org",
		Columns:    []string{"id"},
		RefColumns: []string{"id", "extra"},
	}}
	m := DatabaseModel{Tables: []Table{tbl}}
	assert.Error(t, m.Validate(), "expected error for foreign key column count mismatch")
}

func TestDatabaseModelValidate_IndexUnknownColumn(t *testing.T) {
	tbl := validUsersTable()
	tbl.Indexes = []Index{{Name: "ix_users_name", Columns: []string{"missing"}}}
	m := DatabaseModel{Tables: []Table{tbl}}
	assert.Error(t, m.Validate(), "expected error for index referencing unknown column")
}
