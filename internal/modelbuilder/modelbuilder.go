// Package modelbuilder turns a set of Go structs annotated with GORM field tags into a
// model.DatabaseModel, the object-relational model builder spec.md §1 treats as an
// external collaborator. It is grounded on gorm.io/gorm's own schema.Parse, the same
// reflection machinery the teacher's internal/db.Connector drives indirectly when GORM
// opens a connection and builds its statement cache.
package modelbuilder

import (
	"fmt"
	"sync"

	"gorm.io/gorm/schema"

	"github.com/dbschema/schemadiff/internal/model"
)

// Build parses each value in structs (pointers to struct types, as gorm.io/gorm/schema
// expects) into a model.Table and assembles them into a DatabaseModel. schemaName is
// applied to every table, since a single Go binary's model generally targets one
// schema at a time.
func Build(schemaName string, structs ...any) (*model.DatabaseModel, error) {
	cache := &sync.Map{}
	m := &model.DatabaseModel{}

	for _, s := range structs {
		parsed, err := schema.Parse(s, cache, schema.NamingStrategy{})
		if err != nil {
			return nil, fmt.Errorf("modelbuilder: parse %T: %w", s, err)
		}
		t, err := tableFromSchema(schemaName, parsed)
		if err != nil {
			return nil, fmt.Errorf("modelbuilder: build table for %T: %w", s, err)
		}
		m.Tables = append(m.Tables, t)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("modelbuilder: %w", err)
	}
	return m, nil
}

func tableFromSchema(schemaName string, s *schema.Schema) (model.Table, error) {
	t := model.Table{Name: model.SchemaQualifiedName{Schema: schemaName, Name: s.Table}}

	var pkCols []string
	for _, f := range s.Fields {
		if f.IgnoreMigration || f.DBName == "" {
			continue
		}
		col := columnFromField(f)
		t.Columns = append(t.Columns, col)
		if f.PrimaryKey {
			pkCols = append(pkCols, f.DBName)
		}
	}
	if len(pkCols) > 0 {
		t.PrimaryKey = &model.PrimaryKey{
			Name:      s.Table + "_pkey",
			Table:     t.Name,
			Columns:   pkCols,
			Clustered: true,
		}
	}

	for _, rel := range s.Relationships.BelongsTo {
		fk, ok := foreignKeyFromRelationship(schemaName, s.Table, rel)
		if ok {
			t.ForeignKeys = append(t.ForeignKeys, fk)
		}
	}

	return t, nil
}

func columnFromField(f *schema.Field) model.Column {
	c := model.Column{
		Name:                 f.DBName,
		SourceType:           string(f.FieldType.Name()),
		DataType:             string(f.DataType),
		Nullable:             !f.NotNull,
		ColumnNameAnnotation: f.DBName,
		IsUnicode:            true,
	}
	if f.Size > 0 {
		size := f.Size
		c.MaxLength = &size
	}
	if f.Precision > 0 {
		p := f.Precision
		c.Precision = &p
	}
	if f.Scale > 0 {
		sc := f.Scale
		c.Scale = &sc
	}
	if f.AutoIncrement {
		c.ValueGeneration = model.ValueGenerationOnInsert
	}
	if f.HasDefaultValue && (f.DefaultValue != "" || f.DefaultValueInterface != nil) {
		c.HasDefault = true
		c.DefaultSQL = f.DefaultValue
		if f.DefaultValue == "" {
			c.DefaultValue = f.DefaultValueInterface
		}
	}
	return c
}

func foreignKeyFromRelationship(schemaName, table string, rel *schema.Relationship) (model.ForeignKey, bool) {
	if rel.FieldSchema == nil || len(rel.References) == 0 {
		return model.ForeignKey{}, false
	}
	fk := model.ForeignKey{
		Name:     fmt.Sprintf("fk_%s_%s", table, rel.FieldSchema.Table),
		Table:    model.SchemaQualifiedName{Schema: schemaName, Name: table},
		RefTable: model.SchemaQualifiedName{Schema: schemaName, Name: rel.FieldSchema.Table},
		Required: true,
	}
	for _, ref := range rel.References {
		if ref.ForeignKey == nil || ref.PrimaryKey == nil {
			continue
		}
		fk.Columns = append(fk.Columns, ref.ForeignKey.DBName)
		fk.RefColumns = append(fk.RefColumns, ref.PrimaryKey.DBName)
	}
	if len(fk.Columns) == 0 {
		return model.ForeignKey{}, false
	}
	return fk, true
}
