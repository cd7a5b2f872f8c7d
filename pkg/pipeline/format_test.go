package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datachat-io/datachat-engine/pkg/datasource"
)

func TestRenderFinalResponseError(t *testing.T) {
	st := &RunState{
		SQLQuery: `SELECT "foo" FROM "students"`,
		SQLError: `column "foo" does not exist`,
	}

	response := renderFinalResponse(st)
	assert.Contains(t, response, "I'm sorry")
	assert.Contains(t, response, `column "foo" does not exist`)
	assert.Contains(t, response, `SELECT "foo" FROM "students"`)
}

func TestRenderFinalResponseErrorShowsCorrectedSQL(t *testing.T) {
	st := &RunState{
		SQLQuery:     "SELECT bad",
		CorrectedSQL: "SELECT worse",
		SQLError:     "still broken",
	}

	response := renderFinalResponse(st)
	assert.Contains(t, response, "SELECT worse")
	assert.NotContains(t, response, "SELECT bad")
}

func TestRenderFinalResponseDraftAnswer(t *testing.T) {
	st := &RunState{
		Intent:      IntentOutOfScope,
		DraftAnswer: "The office is open 9 to 5.",
	}
	assert.Equal(t, "The office is open 9 to 5.", renderFinalResponse(st))
}

func TestRenderFinalResponseNoResult(t *testing.T) {
	response := renderFinalResponse(&RunState{Intent: IntentText2SQL})
	assert.Contains(t, response, "no result")
}

func TestRenderResultTable(t *testing.T) {
	result := &datasource.QueryExecutionResult{
		Columns: []datasource.ColumnInfo{
			{Name: "name", Type: "TEXT"},
			{Name: "count", Type: "INT8"},
		},
		Rows: []map[string]any{
			{"name": "Algebra", "count": int64(12)},
			{"name": "Biology", "count": nil},
		},
		RowCount: 2,
	}

	rendered := renderResultTable(result)
	assert.Contains(t, rendered, "name | count")
	assert.Contains(t, rendered, "Algebra | 12")
	assert.Contains(t, rendered, "Biology | NULL")
	assert.NotContains(t, rendered, "omitted")
}

func TestRenderResultTableTruncatesAtFifty(t *testing.T) {
	rows := make([]map[string]any, 120)
	for i := range rows {
		rows[i] = map[string]any{"n": i}
	}
	result := &datasource.QueryExecutionResult{
		Columns:  []datasource.ColumnInfo{{Name: "n", Type: "INT4"}},
		Rows:     rows,
		RowCount: 120,
	}

	rendered := renderResultTable(result)
	assert.Contains(t, rendered, "... 70 more rows omitted.")
	assert.Contains(t, rendered, "\n49\n")
	assert.NotContains(t, rendered, "\n50\n")
}

func TestRenderResultTableEmpty(t *testing.T) {
	result := &datasource.QueryExecutionResult{
		Columns:  []datasource.ColumnInfo{{Name: "id", Type: "INT4"}},
		Rows:     nil,
		RowCount: 0,
	}
	assert.Contains(t, renderResultTable(result), "no rows")
}

// A state holding a result and no error must always format as a table,
// never as an error response, no matter what else the run recorded.
func TestResultAlwaysFormatsAsTable(t *testing.T) {
	for i := 0; i < 5; i++ {
		st := &RunState{
			Intent:     IntentText2SQL,
			SQLQuery:   fmt.Sprintf("SELECT %d", i),
			HasRetried: i%2 == 0,
			SQLResult: &datasource.QueryExecutionResult{
				Columns:  []datasource.ColumnInfo{{Name: "v", Type: "INT4"}},
				Rows:     []map[string]any{{"v": i}},
				RowCount: 1,
			},
		}
		response := renderFinalResponse(st)
		assert.False(t, strings.Contains(response, "I'm sorry"), "run %d formatted as error: %s", i, response)
		assert.Contains(t, response, "v")
	}
}
