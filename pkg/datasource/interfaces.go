// Package datasource provides SQL execution against the target database.
package datasource

import "context"

// MaxQueryLimit is the hard cap on rows returned by Query.
// This protects against unbounded queries that could exhaust the server.
const MaxQueryLimit = 1000

// ColumnInfo describes one column of a query result.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryExecutionResult contains the result of a SQL query execution.
type QueryExecutionResult struct {
	Columns  []ColumnInfo     `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// QueryExecutor executes SELECT statements against a datasource.
// Queries are always wrapped with a dialect-specific limit:
//
//	SELECT * FROM (query) AS _limited LIMIT n
//
// Limit behavior: limit <= 0 or limit > MaxQueryLimit uses MaxQueryLimit.
// Implementations own their connection and must be closed when done.
type QueryExecutor interface {
	// Query runs a SELECT statement and returns bounded results.
	Query(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error)

	// Close releases the database connection.
	Close() error
}
