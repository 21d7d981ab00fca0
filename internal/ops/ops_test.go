package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbschema/schemadiff/internal/model"
)

func tbl(name string) model.SchemaQualifiedName {
	return model.SchemaQualifiedName{Schema: "dbo", Name: name}
}

func TestKindStringCoversEveryVariant(t *testing.T) {
	for k := KindCreateTable; k <= KindDropSequence; k++ {
		assert.NotEqual(t, "Unknown", k.String(), "Kind(%d) stringified to Unknown, expected a named variant", int(k))
	}
	assert.Equal(t, "Unknown", Kind(-1).String(), "invalid Kind should stringify to Unknown")
}

func TestCollectionAddAndByKind(t *testing.T) {
	c := New()
	c.Add(AddColumn{Table: tbl("users"), Column: model.Column{Name: "email"}})
	c.Add(AddColumn{Table: tbl("users"), Column: model.Column{Name: "name"}})
	c.Add(DropColumn{Table: tbl("users"), ColumnName: "legacy"})

	added := c.ByKind(KindAddColumn)
	require.Len(t, added, 2)
	assert.Equal(t, "email", added[0].(AddColumn).Column.Name, "expected insertion order preserved within a kind bucket")
	assert.Equal(t, "name", added[1].(AddColumn).Column.Name, "expected insertion order preserved within a kind bucket")
	assert.Len(t, c.ByKind(KindDropColumn), 1, "expected one DropColumn op")
	assert.Equal(t, 3, c.Len())
}

func TestCollectionAddAllAndReplace(t *testing.T) {
	c := New()
	c.AddAll([]Operation{
		CreateTable{Table: model.Table{Name: tbl("a")}},
		CreateTable{Table: model.Table{Name: tbl("b")}},
	})
	assert.Len(t, c.ByKind(KindCreateTable), 2, "expected AddAll to populate the CreateTable bucket")

	c.Replace(KindCreateTable, []Operation{CreateTable{Table: model.Table{Name: tbl("c")}}})
	got := c.ByKind(KindCreateTable)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].(CreateTable).Table.Name.Name, "expected Replace to overwrite the bucket")
}

func TestCollectionFlattenFollowsCanonicalOrder(t *testing.T) {
	c := New()
	c.Add(CreateTable{Table: model.Table{Name: tbl("users")}})
	c.Add(DropColumn{Table: tbl("users"), ColumnName: "legacy"})
	c.Add(AddColumn{Table: tbl("users"), Column: model.Column{Name: "email"}})
	c.Add(DropTable{Name: tbl("old")})

	flat := c.Flatten()
	require.Len(t, flat, 4)

	positions := map[Kind]int{}
	for i, op := range flat {
		positions[op.Kind()] = i
	}
	assert.Less(t, positions[KindDropColumn], positions[KindDropTable], "DropColumn should precede DropTable in canonical order")
	assert.Less(t, positions[KindDropTable], positions[KindCreateTable], "DropTable should precede CreateTable in canonical order")
	assert.Less(t, positions[KindCreateTable], positions[KindAddColumn], "CreateTable should precede AddColumn in canonical order")
}

func TestCollectionFlattenEmpty(t *testing.T) {
	c := New()
	assert.Empty(t, c.Flatten(), "expected empty flatten on empty collection")
}
