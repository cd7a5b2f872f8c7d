package pipeline

import "strings"

// ErrorCategory classifies a SQL execution failure for routing decisions.
type ErrorCategory string

const (
	CategoryTableOrColumnNotFound  ErrorCategory = "table_or_column_not_found"
	CategorySyntaxError            ErrorCategory = "syntax_error"
	CategoryTypeMismatch           ErrorCategory = "type_mismatch"
	CategoryPermissionOrConnection ErrorCategory = "permission_or_connection"
	CategoryOther                  ErrorCategory = "other"

	// CategoryNone is the zero value, used when no execution error occurred.
	CategoryNone ErrorCategory = ""
)

// Retriable reports whether a single automated correction attempt is
// permitted for this failure class.
func (c ErrorCategory) Retriable() bool {
	switch c {
	case CategoryTableOrColumnNotFound, CategorySyntaxError, CategoryTypeMismatch:
		return true
	}
	return false
}

// categoryPatterns is checked in order; the first category with a matching
// substring wins. Categories are not mutually exclusive in raw error text,
// so ordering is the disambiguation rule.
var categoryPatterns = []struct {
	category ErrorCategory
	patterns []string
}{
	{CategoryTableOrColumnNotFound, []string{
		"does not exist",
		"unknown table",
		"unknown column",
		"no such table",
		"no such column",
		"undefined table",
		"undefined column",
	}},
	{CategorySyntaxError, []string{
		"syntax error",
		"parse error",
		"at or near",
		"42601",
	}},
	{CategoryTypeMismatch, []string{
		"type mismatch",
		"cannot cast",
		"invalid input syntax",
		"42804",
	}},
	{CategoryPermissionOrConnection, []string{
		"permission denied",
		"access denied",
		"not authorized",
		"connection refused",
		"timeout",
		"42501",
	}},
}

// ClassifySQLError maps a raw SQL error message to an ErrorCategory by
// case-insensitive substring matching.
func ClassifySQLError(message string) ErrorCategory {
	lower := strings.ToLower(message)
	for _, entry := range categoryPatterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(lower, pattern) {
				return entry.category
			}
		}
	}
	return CategoryOther
}
