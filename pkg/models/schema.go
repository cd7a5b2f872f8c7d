// Package models holds the shared data types of the engine.
package models

// ColumnDefinition describes one column of a table as known to the schema store.
type ColumnDefinition struct {
	Name             string  `json:"name"`
	DataType         string  `json:"data_type"`
	MaxLength        *int    `json:"max_length,omitempty"`
	NumericPrecision *int    `json:"numeric_precision,omitempty"`
	NumericScale     *int    `json:"numeric_scale,omitempty"`
	IsNullable       bool    `json:"is_nullable"`
	IsPrimaryKey     bool    `json:"is_primary_key"`
	IsForeignKey     bool    `json:"is_foreign_key"`
	DefaultValue     *string `json:"default_value,omitempty"`
	ForeignKeyTable  string  `json:"foreign_key_table,omitempty"`
	ForeignKeyColumn string  `json:"foreign_key_column,omitempty"`
}

// IndexDefinition describes an index on a table.
type IndexDefinition struct {
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
	IsUnique bool     `json:"is_unique"`
}

// TableDefinition is the authoritative description of one table.
type TableDefinition struct {
	Namespace string             `json:"namespace"`
	Name      string             `json:"name"`
	Columns   []ColumnDefinition `json:"columns"`
	Indexes   []IndexDefinition  `json:"indexes,omitempty"`
	RowCount  *int64             `json:"row_count,omitempty"`
}

// QualifiedName returns the table reference used in rendered DDL.
// The default namespace is left implicit, matching how the SQL will
// usually be written.
func (t *TableDefinition) QualifiedName() string {
	if t.Namespace == "" || t.Namespace == "public" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// SchemaFragment is one retrieved piece of schema metadata pointing at a table.
type SchemaFragment struct {
	Namespace string `json:"namespace"`
	Table     string `json:"table"`
	GroupID   string `json:"group_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// KnowledgePassage is one retrieved free-text passage from the knowledge base.
type KnowledgePassage struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}
