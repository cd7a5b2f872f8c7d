package pipeline

import (
	"github.com/datachat-io/datachat-engine/pkg/datasource"
	"github.com/datachat-io/datachat-engine/pkg/models"
)

// Intent is the classified purpose of a user question.
type Intent string

const (
	IntentText2SQL   Intent = "text2sql"
	IntentOutOfScope Intent = "out_of_scope"
)

// RunState is the record threaded through one pipeline run. Nodes receive a
// read-only snapshot and return a partial update; only the pipeline loop
// merges updates back in.
type RunState struct {
	// Query is the original user question, immutable once set.
	Query string

	// Intent is set exactly once by the intent classifier.
	Intent Intent

	// RetrievedContext holds the schema fragments returned by retrieval.
	RetrievedContext []models.SchemaFragment

	// SchemaContext is the rendered CREATE TABLE text for the retrieved
	// tables. Empty means insufficient context.
	SchemaContext string

	// SQLPlan is the planner's free-text reasoning. Empty is a valid
	// "no plan" sentinel.
	SQLPlan string

	// SQLQuery and SQLReason are written only by the SQL generator.
	SQLQuery  string
	SQLReason string

	// CorrectedSQL and CorrectionReason are written only by the corrector.
	CorrectedSQL     string
	CorrectionReason string

	// HasRetried flips to true when the corrector runs. It is reset only
	// when a new statement is generated from scratch.
	HasRetried bool

	// Exactly one of SQLResult and SQLError is meaningful after execution.
	SQLResult        *datasource.QueryExecutionResult
	SQLError         string
	SQLErrorCategory ErrorCategory

	// DraftAnswer holds the out-of-scope responder's answer until the
	// formatter produces the final text.
	DraftAnswer string

	// FinalResponse is set exactly once, by the response formatter.
	FinalResponse string
}

// field is a partial-update slot: apply only writes through when the node
// explicitly set a value, so untouched state fields survive a merge.
type field[T any] struct {
	isSet bool
	value T
}

func set[T any](v T) field[T] { return field[T]{isSet: true, value: v} }

func (f field[T]) apply(dst *T) {
	if f.isSet {
		*dst = f.value
	}
}

// update is the partial state written by a single node. Merging an update is
// atomic with respect to the run: the loop applies it in full before routing.
type update struct {
	intent           field[Intent]
	retrievedContext field[[]models.SchemaFragment]
	schemaContext    field[string]
	sqlPlan          field[string]
	sqlQuery         field[string]
	sqlReason        field[string]
	correctedSQL     field[string]
	correctionReason field[string]
	hasRetried       field[bool]
	sqlResult        field[*datasource.QueryExecutionResult]
	sqlError         field[string]
	sqlErrorCategory field[ErrorCategory]
	draftAnswer      field[string]
	finalResponse    field[string]
}

func (u update) apply(st *RunState) {
	u.intent.apply(&st.Intent)
	u.retrievedContext.apply(&st.RetrievedContext)
	u.schemaContext.apply(&st.SchemaContext)
	u.sqlPlan.apply(&st.SQLPlan)
	u.sqlQuery.apply(&st.SQLQuery)
	u.sqlReason.apply(&st.SQLReason)
	u.correctedSQL.apply(&st.CorrectedSQL)
	u.correctionReason.apply(&st.CorrectionReason)
	u.hasRetried.apply(&st.HasRetried)
	u.sqlResult.apply(&st.SQLResult)
	u.sqlError.apply(&st.SQLError)
	u.sqlErrorCategory.apply(&st.SQLErrorCategory)
	u.draftAnswer.apply(&st.DraftAnswer)
	u.finalResponse.apply(&st.FinalResponse)
}

// statementToExecute returns the corrected statement in preference to the
// original when a correction is present.
func (st *RunState) statementToExecute() string {
	if st.CorrectedSQL != "" {
		return st.CorrectedSQL
	}
	return st.SQLQuery
}
