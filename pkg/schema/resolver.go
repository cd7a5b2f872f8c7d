package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/apperrors"
	"github.com/datachat-io/datachat-engine/pkg/models"
)

// ContextResolver turns retrieved schema fragments into canonical DDL text
// for prompting. Fragments are deduplicated by (namespace, table) in
// first-seen order; pairs the store cannot resolve are skipped, not fatal.
type ContextResolver struct {
	store  Store
	logger *zap.Logger
}

// NewContextResolver creates a resolver over the given schema store.
func NewContextResolver(store Store, logger *zap.Logger) *ContextResolver {
	return &ContextResolver{
		store:  store,
		logger: logger.Named("schema"),
	}
}

// ResolveContext renders the tables referenced by fragments as CREATE TABLE
// blocks separated by blank lines. Empty input or total resolution failure
// yields an empty string; downstream stages treat that as insufficient
// context rather than an error.
func (r *ContextResolver) ResolveContext(ctx context.Context, fragments []models.SchemaFragment) string {
	if len(fragments) == 0 {
		return ""
	}

	type tableKey struct {
		namespace string
		table     string
	}

	seen := make(map[tableKey]bool)
	var blocks []string

	for _, frag := range fragments {
		if frag.Table == "" {
			continue
		}
		namespace := frag.Namespace
		if namespace == "" {
			namespace = "public"
		}

		key := tableKey{namespace, frag.Table}
		if seen[key] {
			continue
		}
		seen[key] = true

		def, err := r.store.Resolve(ctx, namespace, frag.Table)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				r.logger.Warn("Table not found in schema store",
					zap.String("namespace", namespace),
					zap.String("table", frag.Table))
			} else {
				r.logger.Error("Schema store lookup failed",
					zap.String("namespace", namespace),
					zap.String("table", frag.Table),
					zap.Error(err))
			}
			continue
		}

		blocks = append(blocks, RenderCreateTable(def))
	}

	return strings.Join(blocks, "\n\n")
}

// RenderCreateTable renders a table definition as a CREATE TABLE statement
// with foreign keys, indexes, and row counts as trailing comments.
func RenderCreateTable(def *models.TableDefinition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CREATE TABLE %s (\n", def.QualifiedName())

	colDefs := make([]string, 0, len(def.Columns))
	for _, col := range def.Columns {
		parts := []string{fmt.Sprintf("%q", col.Name), renderDataType(col)}
		if col.IsPrimaryKey {
			parts = append(parts, "PRIMARY KEY")
		}
		if !col.IsNullable {
			parts = append(parts, "NOT NULL")
		}
		if col.DefaultValue != nil && *col.DefaultValue != "" {
			parts = append(parts, "DEFAULT "+*col.DefaultValue)
		}
		colDefs = append(colDefs, "  "+strings.Join(parts, " "))
	}
	b.WriteString(strings.Join(colDefs, ",\n"))
	b.WriteString("\n);")

	var fkLines []string
	for _, col := range def.Columns {
		if col.IsForeignKey && col.ForeignKeyTable != "" {
			target := col.ForeignKeyColumn
			if target == "" {
				target = "?"
			}
			fkLines = append(fkLines, fmt.Sprintf("-- %s.%s -> %s.%s",
				def.QualifiedName(), col.Name, col.ForeignKeyTable, target))
		}
	}
	if len(fkLines) > 0 {
		b.WriteString("\n-- Foreign Keys:\n")
		b.WriteString(strings.Join(fkLines, "\n"))
	}

	if len(def.Indexes) > 0 {
		b.WriteString("\n-- Indexes:")
		for _, idx := range def.Indexes {
			unique := ""
			if idx.IsUnique {
				unique = "UNIQUE "
			}
			fmt.Fprintf(&b, "\n-- %s%s on (%s)", unique, idx.Name, strings.Join(idx.Columns, ", "))
		}
	}

	if def.RowCount != nil {
		fmt.Fprintf(&b, "\n-- Row Count: %d", *def.RowCount)
	}

	return b.String()
}

func renderDataType(col models.ColumnDefinition) string {
	switch {
	case col.MaxLength != nil:
		return fmt.Sprintf("%s(%d)", col.DataType, *col.MaxLength)
	case col.NumericPrecision != nil && col.NumericScale != nil && *col.NumericScale > 0:
		return fmt.Sprintf("%s(%d,%d)", col.DataType, *col.NumericPrecision, *col.NumericScale)
	default:
		return col.DataType
	}
}
