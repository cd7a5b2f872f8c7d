// Package schema resolves retrieved schema fragments into canonical DDL text.
package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datachat-io/datachat-engine/pkg/apperrors"
	"github.com/datachat-io/datachat-engine/pkg/models"
)

// Store looks up the authoritative definition of a table.
// Implementations must be safe for concurrent use.
type Store interface {
	// Resolve returns the definition of namespace.table, or
	// apperrors.ErrNotFound if the table is unknown.
	Resolve(ctx context.Context, namespace, table string) (*models.TableDefinition, error)
}

// PostgresStore reads table definitions from the target database's catalogs.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a schema store over the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ Store = (*PostgresStore)(nil)

// Resolve builds a TableDefinition from information_schema and pg_catalog.
func (s *PostgresStore) Resolve(ctx context.Context, namespace, table string) (*models.TableDefinition, error) {
	if namespace == "" {
		namespace = "public"
	}

	columns, err := s.resolveColumns(ctx, namespace, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%s.%s: %w", namespace, table, apperrors.ErrNotFound)
	}

	def := &models.TableDefinition{
		Namespace: namespace,
		Name:      table,
		Columns:   columns,
	}

	if indexes, err := s.resolveIndexes(ctx, namespace, table); err == nil {
		def.Indexes = indexes
	}
	if rowCount, err := s.resolveRowCount(ctx, namespace, table); err == nil && rowCount >= 0 {
		def.RowCount = &rowCount
	}

	return def, nil
}

func (s *PostgresStore) resolveColumns(ctx context.Context, namespace, table string) ([]models.ColumnDefinition, error) {
	// pg_index is used for PK detection since some ORMs create primary keys
	// as unique indexes that information_schema misses.
	const query = `
		SELECT
			c.column_name,
			c.data_type,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.is_nullable = 'YES' AS is_nullable,
			c.column_default,
			COALESCE(pk.is_pk, false) AS is_primary_key,
			COALESCE(fk.target_table, '') AS fk_table,
			COALESCE(fk.target_column, '') AS fk_column
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT a.attname AS column_name, true AS is_pk
			FROM pg_index ix
			JOIN pg_class t ON t.oid = ix.indrelid
			JOIN pg_namespace n ON n.oid = t.relnamespace
			JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
			WHERE ix.indisprimary AND n.nspname = $1 AND t.relname = $2
		) pk ON c.column_name = pk.column_name
		LEFT JOIN (
			SELECT
				kcu.column_name,
				ccu.table_schema || '.' || ccu.table_name AS target_table,
				ccu.column_name AS target_column
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
			JOIN information_schema.constraint_column_usage ccu
				ON tc.constraint_name = ccu.constraint_name
				AND tc.table_schema = ccu.table_schema
			WHERE tc.constraint_type = 'FOREIGN KEY'
			  AND tc.table_schema = $1 AND tc.table_name = $2
		) fk ON c.column_name = fk.column_name
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := s.pool.Query(ctx, query, namespace, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []models.ColumnDefinition
	for rows.Next() {
		var (
			col      models.ColumnDefinition
			fkTable  string
			fkColumn string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &col.MaxLength, &col.NumericPrecision,
			&col.NumericScale, &col.IsNullable, &col.DefaultValue, &col.IsPrimaryKey,
			&fkTable, &fkColumn); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		if fkTable != "" {
			col.IsForeignKey = true
			col.ForeignKeyTable = fkTable
			col.ForeignKeyColumn = fkColumn
		}
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	return columns, nil
}

func (s *PostgresStore) resolveIndexes(ctx context.Context, namespace, table string) ([]models.IndexDefinition, error) {
	const query = `
		SELECT
			i.relname AS index_name,
			ix.indisunique,
			array_agg(a.attname ORDER BY array_position(ix.indkey, a.attnum)) AS columns
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = $1 AND t.relname = $2 AND NOT ix.indisprimary
		GROUP BY i.relname, ix.indisunique
		ORDER BY i.relname
	`

	rows, err := s.pool.Query(ctx, query, namespace, table)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	var indexes []models.IndexDefinition
	for rows.Next() {
		var idx models.IndexDefinition
		if err := rows.Scan(&idx.Name, &idx.IsUnique, &idx.Columns); err != nil {
			return nil, fmt.Errorf("scan index: %w", err)
		}
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}

func (s *PostgresStore) resolveRowCount(ctx context.Context, namespace, table string) (int64, error) {
	const query = `
		SELECT COALESCE(c.reltuples::bigint, -1)
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2
	`

	var count int64
	if err := s.pool.QueryRow(ctx, query, namespace, table).Scan(&count); err != nil {
		return -1, fmt.Errorf("query row count: %w", err)
	}
	return count, nil
}
