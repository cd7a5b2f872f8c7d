package datasource

import "context"

// MockQueryExecutor is a test double for QueryExecutor.
type MockQueryExecutor struct {
	QueryFunc  func(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error)
	QueryCalls int
	Queries    []string
}

var _ QueryExecutor = (*MockQueryExecutor)(nil)

func (m *MockQueryExecutor) Query(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error) {
	m.QueryCalls++
	m.Queries = append(m.Queries, sqlQuery)
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sqlQuery, limit)
	}
	return &QueryExecutionResult{Columns: []ColumnInfo{}, Rows: []map[string]any{}}, nil
}

func (m *MockQueryExecutor) Close() error { return nil }
