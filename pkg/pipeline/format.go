package pipeline

import (
	"fmt"
	"strings"

	"github.com/datachat-io/datachat-engine/pkg/datasource"
)

// maxResponseRows caps how many result rows appear in the final answer.
const maxResponseRows = 50

// formatResponse turns the terminal state into user-facing text. It never
// calls the model and always produces a response, even for formatting
// failures.
func (p *Pipeline) formatResponse(st *RunState) update {
	return update{finalResponse: set(renderFinalResponse(st))}
}

func renderFinalResponse(st *RunState) string {
	if st.SQLError != "" {
		var b strings.Builder
		b.WriteString("I'm sorry, I ran into a problem answering your question.\n\n")
		b.WriteString("Error: " + st.SQLError)
		if attempted := st.statementToExecute(); attempted != "" {
			b.WriteString("\n\nAttempted SQL:\n" + attempted)
		}
		return b.String()
	}

	if st.DraftAnswer != "" {
		return st.DraftAnswer
	}

	if st.SQLResult == nil {
		return "The query completed but returned no result."
	}

	return renderResultTable(st.SQLResult)
}

// renderResultTable renders up to maxResponseRows rows as a plain text
// table with a pipe-separated header.
func renderResultTable(result *datasource.QueryExecutionResult) string {
	if len(result.Columns) == 0 || result.RowCount == 0 {
		return "The query completed successfully but returned no rows."
	}

	names := make([]string, len(result.Columns))
	for i, col := range result.Columns {
		names[i] = col.Name
	}

	var b strings.Builder
	b.WriteString(strings.Join(names, " | "))
	b.WriteString("\n")

	separators := make([]string, len(names))
	for i, name := range names {
		separators[i] = strings.Repeat("-", len(name))
	}
	b.WriteString(strings.Join(separators, " | "))
	b.WriteString("\n")

	shown := len(result.Rows)
	if shown > maxResponseRows {
		shown = maxResponseRows
	}
	for _, row := range result.Rows[:shown] {
		cells := make([]string, len(names))
		for i, name := range names {
			cells[i] = formatCell(row[name])
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString("\n")
	}

	if omitted := result.RowCount - shown; omitted > 0 {
		b.WriteString(fmt.Sprintf("\n... %d more rows omitted.", omitted))
	}

	return b.String()
}

func formatCell(value any) string {
	if value == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", value)
}
