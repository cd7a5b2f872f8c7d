package datasource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresExecutor provides PostgreSQL query execution over a pgx pool.
type PostgresExecutor struct {
	pool      *pgxpool.Pool
	ownedPool bool // true if the executor created the pool itself
}

// NewPostgresExecutor connects to the given URL and returns an executor that
// owns its pool.
func NewPostgresExecutor(ctx context.Context, url string, maxConns int32) (*PostgresExecutor, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse datasource url: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresExecutor{pool: pool, ownedPool: true}, nil
}

// NewPostgresExecutorFromPool wraps an existing pool. The caller keeps
// ownership of the pool's lifecycle.
func NewPostgresExecutorFromPool(pool *pgxpool.Pool) *PostgresExecutor {
	return &PostgresExecutor{pool: pool}
}

var _ QueryExecutor = (*PostgresExecutor)(nil)

// Pool exposes the underlying pool so the schema store can share the
// datasource connection.
func (e *PostgresExecutor) Pool() *pgxpool.Pool {
	return e.pool
}

// Query runs a SELECT statement wrapped with a LIMIT and collects the rows.
func (e *PostgresExecutor) Query(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error) {
	rows, err := e.pool.Query(ctx, BoundedQuery(sqlQuery, limit))
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]ColumnInfo, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = ColumnInfo{
			Name: string(fd.Name),
			Type: pgTypeNameFromOID(fd.DataTypeOID),
		}
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col.Name] = values[i]
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &QueryExecutionResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// Close releases the pool if the executor owns it.
func (e *PostgresExecutor) Close() error {
	if e.ownedPool && e.pool != nil {
		e.pool.Close()
	}
	return nil
}

// BoundedQuery wraps a SELECT statement so its result set is capped.
// limit <= 0 or limit > MaxQueryLimit falls back to MaxQueryLimit.
func BoundedQuery(sqlQuery string, limit int) string {
	if limit <= 0 || limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}
	return fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", sqlQuery, limit)
}

// pgTypeNameFromOID maps common PostgreSQL type OIDs to readable names.
func pgTypeNameFromOID(oid uint32) string {
	switch oid {
	case 16:
		return "BOOL"
	case 17:
		return "BYTEA"
	case 20:
		return "INT8"
	case 21:
		return "INT2"
	case 23:
		return "INT4"
	case 25:
		return "TEXT"
	case 114:
		return "JSON"
	case 700:
		return "FLOAT4"
	case 701:
		return "FLOAT8"
	case 1042:
		return "BPCHAR"
	case 1043:
		return "VARCHAR"
	case 1082:
		return "DATE"
	case 1083:
		return "TIME"
	case 1114:
		return "TIMESTAMP"
	case 1184:
		return "TIMESTAMPTZ"
	case 1700:
		return "NUMERIC"
	case 2950:
		return "UUID"
	case 3802:
		return "JSONB"
	default:
		return fmt.Sprintf("OID(%d)", oid)
	}
}
