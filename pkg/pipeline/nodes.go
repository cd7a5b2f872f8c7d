package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/datasource"
	"github.com/datachat-io/datachat-engine/pkg/llm"
	"github.com/datachat-io/datachat-engine/pkg/logging"
	"github.com/datachat-io/datachat-engine/pkg/models"
	"github.com/datachat-io/datachat-engine/pkg/prompts"
	"github.com/datachat-io/datachat-engine/pkg/sqlguard"
)

const (
	// insufficientContextPlan is the sentinel plan used when no schema
	// context could be resolved. The generator treats an empty schema
	// context, not this text, as its short-circuit trigger.
	insufficientContextPlan = "Insufficient schema context: no relevant tables were found for this question."

	msgNoSQLToExecute = "no SQL query to execute"
	msgNoDatasource   = "database connection is not available"

	// noKnowledgeAnswer is used when the knowledge base has nothing
	// relevant or the responder call fails.
	noKnowledgeAnswer = "I'm sorry, I don't have any information about that. I can answer questions about the data in the connected database."

	classifyTemperature   = 0.0
	planTemperature       = 0.2
	generateTemperature   = 0.0
	correctTemperature    = 0.0
	outOfScopeTemperature = 0.7
)

type intentResult struct {
	Intent string `json:"intent"`
	Reason string `json:"reason"`
}

type sqlResult struct {
	SQL    string `json:"sql"`
	Reason string `json:"reason"`
}

// classifyIntent labels the question. Any failure, from the call itself to
// an unparseable or unrecognized label, fails closed to out_of_scope.
func (p *Pipeline) classifyIntent(ctx context.Context, st *RunState) update {
	system, user := prompts.IntentClassification(st.Query)
	raw, err := p.chat.GenerateResponse(ctx, user, system, classifyTemperature)
	if err != nil {
		p.logger.Warn("intent classification call failed, defaulting to out_of_scope", zap.Error(err))
		return update{intent: set(IntentOutOfScope)}
	}

	parsed, err := llm.ParseJSONResponse[intentResult](raw)
	if err != nil {
		p.logger.Warn("intent classification returned unparseable output, defaulting to out_of_scope",
			zap.Error(err))
		return update{intent: set(IntentOutOfScope)}
	}

	intent := IntentOutOfScope
	if parsed.Intent == prompts.IntentLabelText2SQL {
		intent = IntentText2SQL
	}
	p.logger.Debug("classified intent",
		zap.String("intent", string(intent)),
		zap.String("reason", parsed.Reason))
	return update{intent: set(intent)}
}

// createQuery retrieves schema fragments for the question and resolves them
// into CREATE TABLE text. Retrieval failure degrades to empty context.
func (p *Pipeline) createQuery(ctx context.Context, st *RunState) update {
	if p.schemaRetriever == nil {
		p.logger.Warn("no schema retriever configured")
		return update{
			retrievedContext: set([]models.SchemaFragment(nil)),
			schemaContext:    set(""),
		}
	}

	fragments, err := p.schemaRetriever.RetrieveSchema(ctx, st.Query, p.schemaTopK)
	if err != nil {
		p.logger.Warn("schema retrieval failed", zap.Error(err))
		fragments = nil
	}

	schemaContext := ""
	if p.resolver != nil {
		schemaContext = p.resolver.ResolveContext(ctx, fragments)
	}
	p.logger.Debug("resolved schema context",
		zap.Int("fragments", len(fragments)),
		zap.Int("contextLength", len(schemaContext)))
	return update{
		retrievedContext: set(fragments),
		schemaContext:    set(schemaContext),
	}
}

// planSQL produces the free-text reasoning plan. With no schema context it
// short-circuits to a fixed placeholder without calling the model.
func (p *Pipeline) planSQL(ctx context.Context, st *RunState) update {
	if st.SchemaContext == "" {
		return update{sqlPlan: set(insufficientContextPlan)}
	}

	system, user := prompts.SQLPlanning(st.Query, st.SchemaContext)
	plan, err := p.chat.GenerateResponse(ctx, user, system, planTemperature)
	if err != nil {
		p.logger.Warn("sql planning call failed", zap.Error(err))
		return update{sqlPlan: set("")}
	}
	return update{sqlPlan: set(plan)}
}

// generateSQL produces the statement and rationale. A fresh generation
// always resets the correction bookkeeping so the corrector may run once
// for this statement.
func (p *Pipeline) generateSQL(ctx context.Context, st *RunState) update {
	upd := update{
		correctedSQL:     set(""),
		correctionReason: set(""),
		hasRetried:       set(false),
	}

	if st.SQLPlan == "" || st.SchemaContext == "" {
		upd.sqlQuery = set("")
		upd.sqlReason = set("")
		return upd
	}

	system, user := prompts.SQLGeneration(st.Query, st.SQLPlan, st.SchemaContext)
	raw, err := p.chat.GenerateResponse(ctx, user, system, generateTemperature)
	if err != nil {
		p.logger.Warn("sql generation call failed", zap.Error(err))
		upd.sqlQuery = set("")
		upd.sqlReason = set("")
		return upd
	}

	parsed, err := llm.ParseJSONResponse[sqlResult](raw)
	if err != nil {
		p.logger.Warn("sql generation returned unparseable output", zap.Error(err))
		upd.sqlQuery = set("")
		upd.sqlReason = set("")
		return upd
	}

	p.logger.Debug("generated sql", zap.String("sql", logging.TruncateQuery(parsed.SQL)))
	upd.sqlQuery = set(parsed.SQL)
	upd.sqlReason = set(parsed.Reason)
	return upd
}

// executeSQL runs the current statement (corrected preferred) and records
// either a result or a classified error.
func (p *Pipeline) executeSQL(ctx context.Context, st *RunState) update {
	statement := st.statementToExecute()
	if statement == "" {
		return update{
			sqlResult:        set[*datasource.QueryExecutionResult](nil),
			sqlError:         set(msgNoSQLToExecute),
			sqlErrorCategory: set(CategoryOther),
		}
	}
	if p.executor == nil {
		return update{
			sqlResult:        set[*datasource.QueryExecutionResult](nil),
			sqlError:         set(msgNoDatasource),
			sqlErrorCategory: set(CategoryOther),
		}
	}

	normalized, err := sqlguard.ValidateReadOnly(statement)
	if err != nil {
		p.logger.Warn("rejected generated statement",
			zap.String("sql", logging.TruncateQuery(statement)),
			zap.Error(err))
		return update{
			sqlResult:        set[*datasource.QueryExecutionResult](nil),
			sqlError:         set(err.Error()),
			sqlErrorCategory: set(CategoryOther),
		}
	}

	result, err := p.executor.Query(ctx, normalized, p.queryLimit)
	if err != nil {
		category := ClassifySQLError(err.Error())
		p.logger.Info("sql execution failed",
			zap.String("category", string(category)),
			zap.Error(err))
		return update{
			sqlResult:        set[*datasource.QueryExecutionResult](nil),
			sqlError:         set(err.Error()),
			sqlErrorCategory: set(category),
		}
	}

	p.logger.Debug("sql execution succeeded", zap.Int("rows", result.RowCount))
	return update{
		sqlResult:        set(result),
		sqlError:         set(""),
		sqlErrorCategory: set(CategoryNone),
	}
}

// correctSQL asks the model to fix the failing statement. It runs at most
// once per generated statement; HasRetried is set even when the call fails
// so a broken corrector cannot loop the run.
func (p *Pipeline) correctSQL(ctx context.Context, st *RunState) update {
	if st.HasRetried || st.SQLQuery == "" || st.SQLError == "" || st.SchemaContext == "" {
		return update{}
	}

	system, user := prompts.SQLCorrection(st.SchemaContext, st.statementToExecute(), st.SQLError)
	raw, err := p.chat.GenerateResponse(ctx, user, system, correctTemperature)
	if err != nil {
		p.logger.Warn("sql correction call failed", zap.Error(err))
		return update{hasRetried: set(true)}
	}

	parsed, err := llm.ParseJSONResponse[sqlResult](raw)
	if err != nil || parsed.SQL == "" {
		p.logger.Warn("sql correction returned no usable statement", zap.Error(err))
		return update{hasRetried: set(true)}
	}

	p.logger.Info("applying corrected sql",
		zap.String("sql", logging.TruncateQuery(parsed.SQL)))
	return update{
		correctedSQL:     set(parsed.SQL),
		correctionReason: set(parsed.Reason),
		hasRetried:       set(true),
	}
}

// handleOutOfScope answers from the knowledge base. No relevant passages or
// a failed call both fall back to a fixed polite answer.
func (p *Pipeline) handleOutOfScope(ctx context.Context, st *RunState) update {
	var passages []string
	if p.knowledgeRetriever != nil {
		retrieved, err := p.knowledgeRetriever.RetrieveKnowledge(ctx, st.Query, p.knowledgeTopK)
		if err != nil {
			p.logger.Warn("knowledge retrieval failed", zap.Error(err))
		}
		for _, passage := range retrieved {
			passages = append(passages, passage.Content)
		}
	}

	if len(passages) == 0 {
		return update{draftAnswer: set(noKnowledgeAnswer)}
	}

	system, user := prompts.OutOfScope(st.Query, joinPassages(passages))
	answer, err := p.chat.GenerateResponse(ctx, user, system, outOfScopeTemperature)
	if err != nil {
		p.logger.Warn("out-of-scope responder call failed", zap.Error(err))
		return update{draftAnswer: set(noKnowledgeAnswer)}
	}
	return update{draftAnswer: set(answer)}
}

func joinPassages(passages []string) string {
	joined := ""
	for i, passage := range passages {
		if i > 0 {
			joined += "\n\n"
		}
		joined += passage
	}
	return joined
}
