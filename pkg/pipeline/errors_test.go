package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySQLError(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected ErrorCategory
	}{
		{
			name:     "postgres missing column",
			message:  `ERROR: column "foo" does not exist (SQLSTATE 42703)`,
			expected: CategoryTableOrColumnNotFound,
		},
		{
			name:     "missing table",
			message:  `relation "students" does not exist`,
			expected: CategoryTableOrColumnNotFound,
		},
		{
			name:     "mysql style unknown column",
			message:  "Unknown column 'foo' in 'field list'",
			expected: CategoryTableOrColumnNotFound,
		},
		{
			name:     "uppercase is matched",
			message:  "UNDEFINED TABLE",
			expected: CategoryTableOrColumnNotFound,
		},
		{
			name:     "syntax error",
			message:  `syntax error at or near "FORM" (SQLSTATE 42601)`,
			expected: CategorySyntaxError,
		},
		{
			name:     "sqlstate only",
			message:  "failed with 42601",
			expected: CategorySyntaxError,
		},
		{
			name:     "type mismatch",
			message:  "cannot cast type text to integer",
			expected: CategoryTypeMismatch,
		},
		{
			name:     "invalid input syntax",
			message:  `invalid input syntax for type integer: "abc"`,
			expected: CategoryTypeMismatch,
		},
		{
			name:     "permission denied",
			message:  "permission denied for table accounts",
			expected: CategoryPermissionOrConnection,
		},
		{
			name:     "connection refused",
			message:  "dial tcp 127.0.0.1:5432: connection refused",
			expected: CategoryPermissionOrConnection,
		},
		{
			name:     "unclassified",
			message:  "something unexpected happened",
			expected: CategoryOther,
		},
		{
			name:     "empty message",
			message:  "",
			expected: CategoryOther,
		},
		{
			// First-match-wins: not-found is checked before syntax.
			name:     "not found beats syntax cue",
			message:  `syntax error: relation "x" does not exist`,
			expected: CategoryTableOrColumnNotFound,
		},
		{
			// Syntax is checked before permission.
			name:     "syntax beats permission cue",
			message:  "syntax error near GRANT; permission denied",
			expected: CategorySyntaxError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySQLError(tt.message))
		})
	}
}

func TestClassifySQLErrorIsIdempotent(t *testing.T) {
	message := `column "foo" does not exist`
	first := ClassifySQLError(message)
	second := ClassifySQLError(message)
	assert.Equal(t, first, second)
}

func TestErrorCategoryRetriable(t *testing.T) {
	assert.True(t, CategoryTableOrColumnNotFound.Retriable())
	assert.True(t, CategorySyntaxError.Retriable())
	assert.True(t, CategoryTypeMismatch.Retriable())
	assert.False(t, CategoryPermissionOrConnection.Retriable())
	assert.False(t, CategoryOther.Retriable())
	assert.False(t, CategoryNone.Retriable())
}
