package modelbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testUser struct {
	ID    uint   `gorm:"primaryKey"`
	Email string `gorm:"size:255;not null"`
	Bio   string `gorm:"default:''"`
}

type testPost struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint
	User   testUser `gorm:"foreignKey:UserID;references:ID"`
	Title  string   `gorm:"size:200;not null"`
}

func TestBuild_SingleTableColumnsAndPrimaryKey(t *testing.T) {
	m, err := Build("dbo", &testUser{})
	require.NoError(t, err)
	require.Len(t, m.Tables, 1)
	tbl := m.Tables[0]
	assert.Equal(t, "dbo", tbl.Name.Schema)
	require.NotNil(t, tbl.PrimaryKey)
	require.Len(t, tbl.PrimaryKey.Columns, 1)
	assert.Equal(t, "id", tbl.PrimaryKey.Columns[0])

	email := tbl.Column("email")
	require.NotNil(t, email, "expected an email column")
	assert.False(t, email.Nullable, "expected email to be NOT NULL per the gorm tag")
	require.NotNil(t, email.MaxLength)
	assert.Equal(t, 255, *email.MaxLength)
}

func TestBuild_ForeignKeyFromBelongsTo(t *testing.T) {
	m, err := Build("dbo", &testPost{}, &testUser{})
	require.NoError(t, err)
	posts := m.Table(m.Tables[0].Name)
	require.NotNil(t, posts, "expected to find the posts table")
	var found bool
	for _, t2 := range m.Tables {
		if t2.Name.Name != "test_posts" {
			continue
		}
		for _, fk := range t2.ForeignKeys {
			if len(fk.Columns) == 1 && fk.Columns[0] == "user_id" {
				found = true
			}
		}
	}
	assert.True(t, found, "expected a foreign key on user_id derived from the BelongsTo relationship")
}

func TestBuild_AutoIncrementMarksValueGeneration(t *testing.T) {
	m, err := Build("dbo", &testUser{})
	require.NoError(t, err)
	id := m.Tables[0].Column("id")
	require.NotNil(t, id, "expected an id column")
	assert.NotZero(t, id.ValueGeneration, "expected the auto-increment primary key to carry ValueGenerationOnInsert")
}

func TestBuild_InvalidStructErrors(t *testing.T) {
	_, err := Build("dbo", 42)
	assert.Error(t, err, "expected an error parsing a non-struct value")
}
